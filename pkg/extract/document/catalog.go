package document

import (
	"strings"

	"github.com/adaudit/compliance/pkg/extract"
)

// CatalogFor picks the Document/Image strategy by MIME, per spec §4.10's
// "DocxText | DocText | PdfTextThenOCR | ImageOCR by MIME" rule.
// minPDFChars, maxPDFPages and ocrLanguages carry the configured overrides
// for the PDF/image OCR fallback; pass zero values to use the defaults.
func CatalogFor(mimeType string, ocr OCR, rasterizer func([]byte, int) ([]byte, error), minPDFChars, maxPDFPages int, ocrLanguages string) []extract.Strategy {
	switch {
	case mimeType == "application/pdf":
		return []extract.Strategy{NewPdfTextThenOCR(ocr, rasterizer, minPDFChars, maxPDFPages, ocrLanguages)}
	case mimeType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return []extract.Strategy{NewDocxText()}
	case mimeType == "application/msword":
		return []extract.Strategy{NewDocText()}
	case strings.HasPrefix(mimeType, "image/"):
		return []extract.Strategy{NewImageOCR(ocr, ocrLanguages)}
	default:
		return nil
	}
}
