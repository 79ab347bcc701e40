package extract

import (
	"bytes"
	"fmt"
	"strings"

	"rsc.io/pdf"
)

func pdfText(data []byte) (text string, err error) {
	// rsc.io/pdf panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	n := r.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText(p.Content().Text))
	}
	return strings.Join(pages, "\n"), nil
}

// pageText rebuilds lines from positioned glyphs: a change of baseline starts a new line.
func pageText(glyphs []pdf.Text) string {
	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 && g.Y != glyphs[i-1].Y {
			b.WriteByte('\n')
		}
		b.WriteString(g.S)
	}
	return b.String()
}
