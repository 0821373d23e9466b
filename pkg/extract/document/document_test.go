package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaudit/compliance/pkg/extract"
)

type fakeOCR struct {
	text string
	err  error
}

func (f fakeOCR) RecognizeText(ctx context.Context, image []byte, languages string) (string, error) {
	return f.text, f.err
}

func TestImageOCR_Success(t *testing.T) {
	strategy := NewImageOCR(fakeOCR{text: "sale ends today"}, "")
	outcome, err := strategy.Extract(context.Background(), extract.Source{Bytes: []byte("fake-image-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "sale ends today", outcome.Text)
	assert.Equal(t, "ImageOCR", outcome.Method)
}

func TestImageOCR_EmptyResultIsError(t *testing.T) {
	strategy := NewImageOCR(fakeOCR{text: ""}, "")
	_, err := strategy.Extract(context.Background(), extract.Source{Bytes: []byte("fake-image-bytes")})
	assert.Error(t, err)
}

func TestPdfTextThenOCR_MalformedPDFErrors(t *testing.T) {
	strategy := NewPdfTextThenOCR(fakeOCR{text: "recognized"}, func(b []byte, page int) ([]byte, error) {
		return []byte("page-image"), nil
	}, 0, 0, "")
	_, err := strategy.Extract(context.Background(), extract.Source{Bytes: []byte("not a pdf")})
	assert.Error(t, err)
}

func TestPdfTextThenOCR_ExtractEmbeddedTextRejectsMalformedPDF(t *testing.T) {
	strategy := &PdfTextThenOCR{MinPDFChars: minPDFChars, MaxPDFPages: maxPDFPages}
	_, _, err := strategy.extractEmbeddedText([]byte("not a pdf"))
	assert.Error(t, err)
}

func TestCatalogFor_DispatchesByMIME(t *testing.T) {
	ocr := fakeOCR{text: "x"}

	pdfCatalog := CatalogFor("application/pdf", ocr, func(b []byte, p int) ([]byte, error) { return nil, nil }, 0, 0, "")
	require.Len(t, pdfCatalog, 1)
	assert.Equal(t, "PdfTextThenOCR", pdfCatalog[0].Name())

	docxCatalog := CatalogFor("application/vnd.openxmlformats-officedocument.wordprocessingml.document", ocr, nil, 0, 0, "")
	require.Len(t, docxCatalog, 1)
	assert.Equal(t, "DocxText", docxCatalog[0].Name())

	docCatalog := CatalogFor("application/msword", ocr, nil, 0, 0, "")
	require.Len(t, docCatalog, 1)
	assert.Equal(t, "DocText", docCatalog[0].Name())

	imageCatalog := CatalogFor("image/png", ocr, nil, 0, 0, "")
	require.Len(t, imageCatalog, 1)
	assert.Equal(t, "ImageOCR", imageCatalog[0].Name())

	assert.Nil(t, CatalogFor("application/zip", ocr, nil, 0, 0, ""))
}
