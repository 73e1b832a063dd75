// Package logo resolves the company logo reference of a delivery note into
// an image.
//
// A reference is an http(s) URL, a file:// URL, a data: URI or a local path.
// Resolution never fails loudly: an unreachable or undecodable logo is
// reported as unavailable and the page is laid out with an empty logo slot.
//
// [Fetcher] downloads remote logos without credentials, caches the bytes in a
// [cache.Cache] and remembers every outcome, so each reference is attempted
// at most once per Fetcher. A resolve aborted by its caller's context is not
// remembered. [None] and [Static] serve offline runs and tests.
//
//	f := logo.NewFetcher(logo.WithCache(c, 24*time.Hour))
//	page := logo.Layout(ctx, f, n)
package logo
