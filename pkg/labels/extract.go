package labels

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageBreak separates per-page text in an Extraction.
const PageBreak = "\f"

// Extraction is the flattened embedded text of a document.
// Pages is the page count reported by the extractor, used as a segmentation hint.
type Extraction struct {
	Text  string
	Pages int
}

// Extractor pulls embedded text from document bytes.
type Extractor interface {
	Extract(data []byte) (Extraction, error)
}

// TextExtractor reads embedded page text with ledongthuc/pdf and joins pages
// with PageBreak. Malformed content streams that make the reader panic are
// reported as errors.
type TextExtractor struct{}

func (TextExtractor) Extract(data []byte) (ext Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			ext = Extraction{}
			err = fmt.Errorf("text extraction panic: %v", r)
		}
	}()

	if len(data) == 0 {
		return Extraction{}, fmt.Errorf("empty document")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Extraction{}, fmt.Errorf("open pdf: %w", err)
	}

	count := reader.NumPage()
	pages := make([]string, 0, count)

	for i := 1; i <= count; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// one unreadable page leaves an empty chunk; the rest still classify
			text = ""
		}
		pages = append(pages, text)
	}

	return Extraction{
		Text:  strings.Join(pages, PageBreak),
		Pages: count,
	}, nil
}
