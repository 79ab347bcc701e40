// Package extract turns uploaded documents into plain text.
//
// The format is chosen from the file extension only. Fragments (pages, shapes,
// paragraphs) are joined with "\n" in source order, so the same bytes always
// produce the same text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format is the closed set of document kinds the extractor understands.
type Format int

const (
	FormatUnsupported Format = iota
	FormatPDF
	FormatSlides
	FormatDocx
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatSlides:
		return "slides"
	case FormatDocx:
		return "docx"
	case FormatText:
		return "text"
	default:
		return "unsupported"
	}
}

var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseError reports content that could not be read as its declared format.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Detect maps a file name to its format, case-insensitively.
func Detect(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF
	case ".ppt", ".pptx":
		return FormatSlides
	case ".docx":
		return FormatDocx
	case ".txt":
		return FormatText
	default:
		return FormatUnsupported
	}
}

// Text extracts the text of data, using name to pick the format.
func Text(name string, data []byte) (string, error) {
	format := Detect(name)

	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = pdfText(data)
	case FormatSlides:
		text, err = slidesText(data)
	case FormatDocx:
		text, err = docxText(data)
	case FormatText:
		text, err = plainText(data)
	case FormatUnsupported:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
	if err != nil {
		return "", &ParseError{Format: format, Err: err}
	}
	return text, nil
}

func plainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("content is not valid UTF-8")
	}
	return string(data), nil
}
