package web

import (
	"time"

	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/fetchx"
)

// Catalog builds the WebPage strategy list: ReaderProxy → ReadabilityLocal
// → HeadlessBrowser (if enabled) → MetadataOnly, per SPEC_FULL §4.10.
func Catalog(fetcher *fetchx.Fetcher, browserPool *BrowserPool, enableHeadless, captureScreenshot bool) []extract.Strategy {
	strategies := []extract.Strategy{
		NewReaderProxy(fetcher),
		NewReadabilityLocal(fetcher),
	}
	if enableHeadless && browserPool != nil {
		strategies = append(strategies, NewHeadlessBrowser(browserPool, captureScreenshot))
	}
	strategies = append(strategies, NewMetadataOnly(fetcher))
	return strategies
}

// DefaultBrowserPool builds the process-wide browser pool used by
// HeadlessBrowser, sized the way the teacher's collector sizes its pool.
func DefaultBrowserPool() *BrowserPool {
	return NewBrowserPool(4, 30*time.Minute)
}
