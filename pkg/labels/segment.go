package labels

import (
	"strings"
	"unicode/utf8"
)

// PageText is the text attributed to one source page.
type PageText struct {
	Index int
	Text  string
}

// Segment splits extracted text into per-page chunks. Text containing
// PageBreak is split on it and each chunk keeps its position as its page
// index; otherwise the text is sliced into pageCount equal runs of runes.
// Chunks whose trimmed length does not exceed minChunk are dropped.
func Segment(text string, pageCount, minChunk int) []PageText {
	var pages []PageText

	if strings.Contains(text, PageBreak) {
		for i, chunk := range strings.Split(text, PageBreak) {
			if keepChunk(chunk, minChunk) {
				pages = append(pages, PageText{Index: i, Text: chunk})
			}
		}
		return pages
	}

	runes := []rune(text)
	avg := len(runes) / max(pageCount, 1)

	for i := range pageCount {
		chunk := string(runes[i*avg : (i+1)*avg])
		if keepChunk(chunk, minChunk) {
			pages = append(pages, PageText{Index: i, Text: chunk})
		}
	}

	return pages
}

func keepChunk(chunk string, minChunk int) bool {
	return runeLen(strings.TrimSpace(chunk)) > minChunk
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
