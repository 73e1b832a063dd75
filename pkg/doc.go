// Package pkg provides the libraries behind deliverynote.
//
// # Overview
//
// Deliverynote edits a delivery note (Bon de Livraison), previews it and
// exports it as a single-page PDF. The pkg directory is organized into:
//
//  1. [note] - The document model, totals and file codec
//  2. [editor] - Pure edit operations on the document
//  3. [render] - Page layout and output sinks (raster, text, JSON, XLSX)
//  4. [export] - The one-at-a-time PDF exporter
//  5. [logo] - Company logo resolution (HTTP, files, data URIs)
//  6. [shell] - The coordinating owner of the single document
//  7. [pipeline] - Orchestration (layout → render) for batch outputs
//  8. [cache], [errors], [observability], [buildinfo] - Infrastructure
//
// # Architecture
//
// The data flow through deliverynote:
//
//	user edit
//	    ↓
//	[editor] (new document, never mutated in place)
//	    ↓
//	[shell] (stores it, bumps the revision)
//	    ↓
//	[render/layout] (page tree, totals, logo state)
//	    ↓
//	[render/sink] or [export] (preview, PDF, XLSX, ...)
//
// # Quick Start
//
// Export the default note:
//
//	import (
//	    "context"
//	    "time"
//
//	    "github.com/matzehuels/deliverynote/pkg/export"
//	    "github.com/matzehuels/deliverynote/pkg/logo"
//	    "github.com/matzehuels/deliverynote/pkg/note"
//	    "github.com/matzehuels/deliverynote/pkg/shell"
//	)
//
//	sh := shell.New(note.Default(time.Now()),
//	    shell.WithLogoSource(logo.NewFetcher()))
//	_ = sh.Set("client.name", "Centre médical Mettewie")
//	res, err := sh.Export(context.Background(), export.FileSaver{Dir: "."})
//	// res.Filename == "Bon_Livraison_BL-2025-001.pdf"
//
// # Command Line
//
// The deliverynote binary (cmd/deliverynote) wraps these packages in init,
// render, export, edit and serve commands.
package pkg
