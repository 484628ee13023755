package storage

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var pdfMagic = []byte("%PDF-")

// ValidatePDF checks that a candidate upload really is a PDF: the
// extension and magic header are checked first (cheap), then the
// document is opened with mupdf to confirm it parses and has at least
// one page. Runs before any storage or database write.
func ValidatePDF(filename string, content []byte) error {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".pdf" {
		return fmt.Errorf("unsupported file type %q: only PDF uploads are accepted", ext)
	}

	if !bytes.HasPrefix(content, pdfMagic) {
		return fmt.Errorf("file %s does not look like a PDF", filename)
	}

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return fmt.Errorf("failed to parse PDF %s: %w", filename, err)
	}
	defer doc.Close()

	if doc.NumPage() < 1 {
		return fmt.Errorf("PDF %s has no pages", filename)
	}
	return nil
}
