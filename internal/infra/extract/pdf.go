package extract

import (
	"context"
	"os"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	rscpdf "rsc.io/pdf"
)

// ledongthucText joins GetPlainText of every page, one page per block.
func ledongthucText(ctx context.Context, path string) (string, error) {
	f, r, err := lpdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// rscText rebuilds lines from positioned glyph runs: a change of baseline starts a new line.
func rscText(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return "", err
	}
	r, err := rscpdf.NewReader(f, st.Size())
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		first := true
		var lastY float64
		for _, t := range p.Content().Text {
			if !first && t.Y != lastY {
				b.WriteString("\n")
			}
			b.WriteString(t.S)
			lastY, first = t.Y, false
		}
	}
	return b.String(), nil
}
