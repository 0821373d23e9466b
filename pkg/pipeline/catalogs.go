package pipeline

import (
	"github.com/adaudit/compliance/pkg/audit"
	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/extract/document"
	"github.com/adaudit/compliance/pkg/extract/media"
	"github.com/adaudit/compliance/pkg/extract/web"
	"github.com/adaudit/compliance/pkg/extract/youtube"
	"github.com/adaudit/compliance/pkg/fetchx"
)

// CatalogDeps bundles every strategy-family dependency CatalogsFrom closes
// over, so Services.Catalogs stays a plain function value at call sites.
type CatalogDeps struct {
	Fetcher             *fetchx.Fetcher
	BrowserPool         *web.BrowserPool
	EnableHeadless      bool
	CaptureScreenshot   bool
	Transcriber         youtube.Transcriber
	EnableAudioDownload bool
	OCR                 document.OCR
	PageRasterizer      func(pdfBytes []byte, page int) ([]byte, error)
	MinPDFChars         int
	MaxPDFPages         int
	OCRLanguages        string
}

// CatalogsFrom builds a CatalogResolver that dispatches to the four
// strategy families per spec §4.10's Kind→Strategy table.
func CatalogsFrom(deps CatalogDeps) CatalogResolver {
	return func(kind audit.Kind, mimeType string) []extract.Strategy {
		switch kind {
		case audit.KindWebPage:
			return web.Catalog(deps.Fetcher, deps.BrowserPool, deps.EnableHeadless, deps.CaptureScreenshot)
		case audit.KindYouTube:
			return youtube.Catalog(deps.Fetcher, deps.Transcriber, deps.EnableAudioDownload)
		case audit.KindMediaURL:
			// If the URL resolves to HTML instead of audio/video, FetchThenTranscribe
			// fails fast and the loop falls through to the WebPage plan (spec §4.10).
			strategies := []extract.Strategy{media.New(deps.Fetcher, deps.Transcriber)}
			strategies = append(strategies, web.Catalog(deps.Fetcher, deps.BrowserPool, deps.EnableHeadless, deps.CaptureScreenshot)...)
			return strategies
		case audit.KindImage, audit.KindDocument:
			return document.CatalogFor(mimeType, deps.OCR, deps.PageRasterizer, deps.MinPDFChars, deps.MaxPDFPages, deps.OCRLanguages)
		default:
			return nil
		}
	}
}
