// Package extract pulls plain text out of uploaded PDF files.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

var (
	// ErrUnreadable means no method could open or parse the file.
	ErrUnreadable = errors.New("document unreadable")
	// ErrNoText means the file parsed but contains no extractable text (scanned images, empty pages).
	ErrNoText = errors.New("document contains no extractable text")
)

// Method extracts text from the file at path. It must not modify the file.
type Method struct {
	Name string
	Run  func(ctx context.Context, path string) (string, error)
}

// Extractor tries each method in order until one yields non-blank text.
type Extractor struct {
	Methods []Method
	Logger  *slog.Logger
}

// New returns an extractor with the default PDF methods: ledongthuc/pdf, then rsc.io/pdf.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{
		Methods: []Method{
			{Name: "ledongthuc", Run: ledongthucText},
			{Name: "rsc", Run: rscText},
		},
		Logger: logger,
	}
}

// Extract returns the document text. A method error or panic moves on to the next method;
// a method that parses the file but finds only whitespace does too.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var errs []error
	parsed := false
	for _, m := range e.Methods {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := run(ctx, m, path)
		if err != nil {
			e.log().Warn("text extraction method failed", "method", m.Name, "path", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", m.Name, err))
			continue
		}
		parsed = true
		if strings.TrimSpace(text) == "" {
			e.log().Debug("text extraction method found no text", "method", m.Name, "path", path)
			continue
		}
		return text, nil
	}

	if parsed {
		return "", ErrNoText
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("%w: no extraction method configured", ErrUnreadable)
	}
	return "", fmt.Errorf("%w: %w", ErrUnreadable, errors.Join(errs...))
}

// run shields the caller from panics inside the PDF parsers.
func run(ctx context.Context, m Method, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("panic: %v", r)
		}
	}()
	return m.Run(ctx, path)
}

func (e *Extractor) log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
