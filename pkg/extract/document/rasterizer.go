package document

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/adaudit/compliance/internal/tempfile"
)

// PopplerRasterizer renders one PDF page to a PNG by shelling out to
// pdftoppm (poppler-utils), the same tool xg2g's own image pipeline relies
// on for anything it can't do in pure Go. The source PDF and output prefix
// live inside a tempfile.Scope and the page PNG pdftoppm writes is removed
// once read, so a failed render never leaks disk state (spec §8's
// no-leaked-temp-files property).
func PopplerRasterizer(scopeDir string) func(pdfBytes []byte, page int) ([]byte, error) {
	return func(pdfBytes []byte, page int) ([]byte, error) {
		scope, err := tempfile.NewScope(scopeDir)
		if err != nil {
			return nil, fmt.Errorf("create rasterizer scope: %w", err)
		}
		defer scope.Close()

		ctx := context.Background()
		pdfPath, err := scope.Create(ctx, "page-src", pdfBytes)
		if err != nil {
			return nil, fmt.Errorf("write source pdf: %w", err)
		}

		outPrefix, err := scope.Create(ctx, "page-out", nil)
		if err != nil {
			return nil, fmt.Errorf("allocate output prefix: %w", err)
		}

		cmd := exec.CommandContext(ctx, "pdftoppm",
			"-png", "-f", fmt.Sprint(page), "-l", fmt.Sprint(page), "-r", "150",
			pdfPath, outPrefix)
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("pdftoppm page %d: %w", page, err)
		}

		rendered, err := findRenderedPage(outPrefix)
		if err != nil {
			return nil, err
		}
		defer os.Remove(rendered)
		return os.ReadFile(rendered)
	}
}

// findRenderedPage locates pdftoppm's output file: it appends its own
// "-N.png" page-number suffix to the prefix we gave it rather than
// honoring an exact filename.
func findRenderedPage(outPrefix string) (string, error) {
	dir := filepath.Dir(outPrefix)
	base := filepath.Base(outPrefix)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list rasterizer output dir: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if len(name) > len(base) && name[:len(base)] == base {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("pdftoppm produced no output for prefix %s", base)
}
