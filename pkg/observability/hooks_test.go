package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLayoutStart(ctx, 3)
	p.OnLayoutComplete(ctx, time.Millisecond, nil)
	p.OnRenderStart(ctx, []string{"pdf"})
	p.OnRenderComplete(ctx, []string{"pdf"}, time.Second, nil)

	e := NoopExportHooks{}
	e.OnExportStart(ctx, "BL-2025-001")
	e.OnExportBusy(ctx, "BL-2025-001")
	e.OnExportComplete(ctx, "Bon_Livraison_BL-2025-001.pdf", 1024, time.Second, errors.New("boom"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "logo")
	c.OnCacheMiss(ctx, "logo")
	c.OnCacheSet(ctx, "logo", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "picsum.photos", "/seed/bakery/200/200")
	h.OnResponse(ctx, "GET", "picsum.photos", "/seed/bakery/200/200", 200, time.Second)
	h.OnError(ctx, "GET", "picsum.photos", "/seed/bakery/200/200", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Export() should return NoopExportHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customExport := &testExportHooks{}
	SetExportHooks(customExport)
	if Export() != customExport {
		t.Error("SetExportHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Reset() should restore NoopExportHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testExportHooks{}
	SetExportHooks(custom)
	SetExportHooks(nil)

	if Export() != custom {
		t.Error("SetExportHooks(nil) should be ignored")
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testExportHooks struct{ NoopExportHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
