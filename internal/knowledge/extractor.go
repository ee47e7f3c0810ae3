package knowledge

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/suedenergie/knowledge-backend/internal/apperrors"
)

// PageText is one extraction granule: the plain text of a single PDF page.
// Blank pages are still emitted; filtering is the orchestrator's job.
type PageText struct {
	Number int // 1-based page ordinal
	Text   string
}

// Extractor turns raw document bytes into per-page text.
type Extractor interface {
	Extract(data []byte) ([]PageText, error)
}

// PDFExtractor extracts text page by page using unipdf. Malformed input is a
// client fault (DocumentFormat), not a server fault.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) Extract(data []byte) ([]PageText, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.DocumentFormat("not a parseable PDF", err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, apperrors.DocumentFormat("unable to read PDF page count", err)
	}

	pages := make([]PageText, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return nil, apperrors.DocumentFormat(fmt.Sprintf("unable to read page %d", i), err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			// A page we cannot build an extractor for behaves like a blank page.
			pages = append(pages, PageText{Number: i})
			continue
		}

		text, err := ex.ExtractText()
		if err != nil {
			pages = append(pages, PageText{Number: i})
			continue
		}

		pages = append(pages, PageText{Number: i, Text: text})
	}

	return pages, nil
}
