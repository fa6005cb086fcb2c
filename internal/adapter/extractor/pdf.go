package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"clinrag/internal/domain"
	"clinrag/internal/logger"
	"clinrag/internal/port"
)

// PDFExtractor pulls page-level text from guideline PDFs. A page that
// fails to parse is skipped and logged; an unreadable file aborts the
// document with an ExtractionError.
type PDFExtractor struct {
	log *logger.Logger
}

func NewPDFExtractor(log *logger.Logger) *PDFExtractor {
	return &PDFExtractor{log: log.With("adapter", "pdf_extractor")}
}

func (e *PDFExtractor) Extract(path string) ([]port.Page, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return extractPlainText(path)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &domain.ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	total := r.NumPage()
	if total == 0 {
		return nil, &domain.ExtractionError{Path: path, Err: fmt.Errorf("no pages")}
	}

	pages := make([]port.Page, 0, total)
	for num := 1; num <= total; num++ {
		text, err := e.pageText(r, num)
		if err != nil {
			e.log.Warn("skipping unparseable page", "path", path, "page", num, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, port.Page{Number: num, Text: text})
	}

	if len(pages) == 0 {
		return nil, &domain.ExtractionError{Path: path, Err: fmt.Errorf("no extractable pages out of %d", total)}
	}

	return pages, nil
}

// pageText extracts one page, converting parser panics into errors so a
// single malformed page cannot take down the whole document.
func (e *PDFExtractor) pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page parser panic: %v", rec)
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return "", fmt.Errorf("null page object")
	}
	return p.GetPlainText(nil)
}

// extractPlainText treats .txt and .md sources as a single page.
func extractPlainText(path string) ([]port.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ExtractionError{Path: path, Err: err}
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, &domain.ExtractionError{Path: path, Err: fmt.Errorf("empty file")}
	}
	return []port.Page{{Number: 1, Text: string(data)}}, nil
}
