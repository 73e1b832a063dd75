package logo

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/deliverynote/pkg/buildinfo"
	"github.com/matzehuels/deliverynote/pkg/cache"
	derrors "github.com/matzehuels/deliverynote/pkg/errors"
	"github.com/matzehuels/deliverynote/pkg/observability"
)

const (
	// DefaultTimeout bounds a single logo download.
	DefaultTimeout = 10 * time.Second

	// DefaultTTL is how long downloaded logos stay cached.
	DefaultTTL = 24 * time.Hour

	// MaxBytes is the largest logo accepted, encoded.
	MaxBytes = 5 << 20

	// MaxSize is the largest logo edge in pixels kept after decoding.
	// Larger images are scaled down.
	MaxSize = 512
)

const cacheKeyType = "logo"

// Fetcher resolves logo references over HTTP and from disk. It is safe for
// concurrent use.
type Fetcher struct {
	http      *http.Client
	cache     cache.Cache
	ttl       time.Duration
	userAgent string
	logger    *log.Logger

	mu      sync.Mutex
	results map[string]*result
}

type result struct {
	mu   sync.Mutex
	done bool
	img  image.Image
	ok   bool
}

// FetcherOption configures a [Fetcher].
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the HTTP client. The client should not carry a
// cookie jar.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.http = c
		}
	}
}

// WithCache stores downloaded logos in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.cache = c
		}
		if ttl > 0 {
			f.ttl = ttl
		}
	}
}

// WithLogger sets the logger. Failures are logged at debug level.
func WithLogger(l *log.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher returns a fetcher with a 10 second timeout and no cache.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		http:      &http.Client{Timeout: DefaultTimeout},
		cache:     cache.NewNullCache(),
		ttl:       DefaultTTL,
		userAgent: buildinfo.UserAgent(),
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		results:   make(map[string]*result),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Resolve returns the image for ref. The first call for a reference does the
// work; later calls, concurrent or not, share its outcome.
func (f *Fetcher) Resolve(ctx context.Context, ref string) (image.Image, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}

	f.mu.Lock()
	r, ok := f.results[ref]
	if !ok {
		r = &result{}
		f.results[ref] = r
	}
	f.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return r.img, r.ok
	}
	img, err := f.load(ctx, ref)
	if err != nil {
		f.logger.Debug("logo unavailable", "ref", shorten(ref), "err", err)
		// A canceled caller leaves the reference unresolved for the next one.
		if ctx.Err() != nil {
			return nil, false
		}
		r.done = true
		return nil, false
	}
	r.img, r.ok, r.done = img, true, true
	return r.img, r.ok
}

func (f *Fetcher) load(ctx context.Context, ref string) (image.Image, error) {
	data, err := f.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "decode logo")
	}
	b := img.Bounds()
	if b.Dx() > MaxSize || b.Dy() > MaxSize {
		img = imaging.Fit(img, MaxSize, MaxSize, imaging.Lanczos)
	}
	f.logger.Debug("logo loaded", "ref", shorten(ref), "format", format,
		"width", b.Dx(), "height", b.Dy())
	return img, nil
}

// read returns the encoded bytes behind ref.
func (f *Fetcher) read(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURI(ref)
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || isDriveLetter(u.Scheme) {
		return readFile(ref)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.cached(ctx, u)
	case "file":
		return readFile(u.Path)
	default:
		return nil, derrors.New(derrors.ErrCodeUnsupported, "unsupported logo scheme %q", u.Scheme)
	}
}

type cachedLogo struct {
	Data []byte `json:"data"`
}

func (f *Fetcher) cached(ctx context.Context, u *url.URL) ([]byte, error) {
	hooks := observability.Cache()
	key := cache.Key("logo", u.String())

	var entry cachedLogo
	if err := cache.GetJSON(ctx, f.cache, key, &entry); err == nil && len(entry.Data) > 0 {
		hooks.OnCacheHit(ctx, cacheKeyType)
		return entry.Data, nil
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	data, err := f.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, f.cache, key, cachedLogo{Data: data}, f.ttl); err != nil {
		f.logger.Debug("logo cache write failed", "err", err)
	} else {
		hooks.OnCacheSet(ctx, cacheKeyType, len(data))
	}
	return data, nil
}

// fetch downloads u. Only a User-Agent header is sent.
func (f *Fetcher) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	hooks := observability.HTTP()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "build logo request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*")

	start := time.Now()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	resp, err := f.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		return nil, derrors.Wrap(derrors.ErrCodeNetwork, err, "fetch logo")
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, derrors.New(derrors.ErrCodeNetwork, "fetch logo: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBytes+1))
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeNetwork, err, "read logo")
	}
	if len(data) > MaxBytes {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "logo larger than %d bytes", MaxBytes)
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "logo file")
		}
		return nil, err
	}
	if fi.Size() > MaxBytes {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "logo larger than %d bytes", MaxBytes)
	}
	return os.ReadFile(path)
}

// decodeDataURI handles base64 "data:" URIs.
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, derrors.New(derrors.ErrCodeInvalidFormat, "logo data URI must be base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "decode logo data URI")
	}
	if len(data) > MaxBytes {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "logo larger than %d bytes", MaxBytes)
	}
	return data, nil
}

// isDriveLetter reports whether a parsed scheme is really a Windows drive.
func isDriveLetter(scheme string) bool {
	return len(scheme) == 1
}

// shorten keeps data URIs out of log lines.
func shorten(ref string) string {
	if len(ref) > 80 {
		return fmt.Sprintf("%s… (%d bytes)", ref[:60], len(ref))
	}
	return ref
}
