// Package labelstest builds small PDFs for exercising the label pipeline.
package labelstest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// A4 page dimensions in points.
const (
	A4Width  = 595.0
	A4Height = 842.0
)

// Page describes one generated page. Lines are drawn top-down in Helvetica;
// a page without lines gets a filled rectangle and no text.
type Page struct {
	Width  float64
	Height float64
	Rotate int
	Lines  []string
}

// TextPage returns an A4 page with the given lines.
func TextPage(lines ...string) Page {
	return Page{Lines: lines}
}

// BlankPage returns an A4 page with graphics but no text.
func BlankPage() Page {
	return Page{}
}

// LabelPage returns an A4 page laid out like a marketplace label: address,
// courier, product code, and invoice lines.
func LabelPage(sku, courier string) Page {
	return TextPage(
		"Customer Address Ravi Kumar Flat 12 Pune 411001",
		"Courier: "+courier+" Surface",
		"SKU: "+sku,
		"Qty 1 Tax Invoice Bill of Supply",
	)
}

// Document renders pages into a complete PDF.
func Document(pages ...Page) []byte {
	var buf bytes.Buffer
	count := 3 + 2*len(pages)
	offsets := make([]int, count+1)

	obj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, p := range pages {
		w, h := p.size()
		rotate := ""
		if p.Rotate != 0 {
			rotate = fmt.Sprintf(" /Rotate %d", p.Rotate)
		}

		obj(4+2*i, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s]%s /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			num(w), num(h), rotate, 5+2*i,
		))

		content := p.content(h)
		obj(5+2*i, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", count+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= count; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", count+1, xref)

	return buf.Bytes()
}

// Labels renders one LabelPage per sku, all shipped by courier.
func Labels(courier string, skus ...string) []byte {
	pages := make([]Page, len(skus))
	for i, sku := range skus {
		pages[i] = LabelPage(sku, courier)
	}
	return Document(pages...)
}

// Blank renders n pages without text.
func Blank(n int) []byte {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = BlankPage()
	}
	return Document(pages...)
}

func (p Page) size() (float64, float64) {
	w, h := p.Width, p.Height
	if w <= 0 {
		w = A4Width
	}
	if h <= 0 {
		h = A4Height
	}
	return w, h
}

func (p Page) content(height float64) string {
	if len(p.Lines) == 0 {
		return "0.5 g 50 50 200 120 re f"
	}

	var sb strings.Builder
	for i, line := range p.Lines {
		y := height - 60 - float64(20*i)
		fmt.Fprintf(&sb, "BT /F1 12 Tf 50 %s Td (%s ) Tj ET\n", num(y), escape(line))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
