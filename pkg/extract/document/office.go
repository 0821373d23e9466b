package document

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/adaudit/compliance/pkg/extract"
)

// DocxText reads the modern .docx (OOXML) format.
type DocxText struct{}

func NewDocxText() *DocxText { return &DocxText{} }

func (d *DocxText) Name() string { return "DocxText" }

func (d *DocxText) Extract(ctx context.Context, src extract.Source) (extract.Outcome, error) {
	doc, err := docx.Parse(bytes.NewReader(src.Bytes), int64(len(src.Bytes)))
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("parse docx: %w", err)
	}

	var b strings.Builder
	for _, item := range doc.Document.Body.Items {
		if para, ok := item.(*docx.Paragraph); ok {
			b.WriteString(para.String())
			b.WriteString("\n")
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return extract.Outcome{}, fmt.Errorf("docx contained no extractable text")
	}
	return extract.Outcome{Text: text, Method: d.Name()}, nil
}

// DocText handles the legacy binary .doc format by scanning for runs of
// printable text, since the pack carries no legacy-OLE parser and a full
// CFB/Word97 parser is out of scope for this strategy's role as a fallback.
type DocText struct{}

func NewDocText() *DocText { return &DocText{} }

func (d *DocText) Name() string { return "DocText" }

func (d *DocText) Extract(ctx context.Context, src extract.Source) (extract.Outcome, error) {
	text := extractPrintableRuns(src.Bytes)
	if len(strings.TrimSpace(text)) < minPDFChars/5 {
		return extract.Outcome{}, fmt.Errorf("legacy doc yielded too little text")
	}
	return extract.Outcome{Text: text, Method: d.Name()}, nil
}

func extractPrintableRuns(data []byte) string {
	var b strings.Builder
	var run strings.Builder
	flush := func() {
		if run.Len() >= 4 {
			b.WriteString(run.String())
			b.WriteString(" ")
		}
		run.Reset()
	}
	for _, c := range data {
		if c >= 0x20 && c < 0x7f {
			run.WriteByte(c)
		} else {
			flush()
		}
	}
	flush()
	return strings.TrimSpace(b.String())
}
