package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emsi-platform/studyhub/internal/extract/extracttest"
)

func TestDetect(t *testing.T) {
	tests := map[string]Format{
		"report.pdf":     FormatPDF,
		"REPORT.PDF":     FormatPDF,
		"deck.ppt":       FormatSlides,
		"deck.PPTX":      FormatSlides,
		"essay.docx":     FormatDocx,
		"notes.txt":      FormatText,
		"notes.xlsx":     FormatUnsupported,
		"archive.tar.gz": FormatUnsupported,
		"noext":          FormatUnsupported,
	}
	for name, want := range tests {
		assert.Equal(t, want, Detect(name), name)
	}
}

func TestTextPlainRoundTrip(t *testing.T) {
	in := []byte("first line\nsecond line — ünïcödé\n\n")
	got, err := Text("notes.txt", in)
	require.NoError(t, err)
	assert.Equal(t, string(in), got)
}

func TestTextPlainInvalidUTF8(t *testing.T) {
	_, err := Text("notes.txt", []byte{0xff, 0xfe, 0x00})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, FormatText, perr.Format)
}

func TestTextUnsupported(t *testing.T) {
	_, err := Text("notes.xlsx", []byte("PK"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestTextPDFPages(t *testing.T) {
	data := extracttest.PDF("Page one text", "Page two (with parens)", "Third page")

	got, err := Text("lecture.pdf", data)
	require.NoError(t, err)
	assert.Equal(t, "Page one text\nPage two (with parens)\nThird page", got)
}

func TestTextPDFMultiLinePage(t *testing.T) {
	data := extracttest.PDF("Heading\nBody line")

	got, err := Text("lecture.pdf", data)
	require.NoError(t, err)
	assert.Equal(t, "Heading\nBody line", got)
}

func TestTextPDFMalformed(t *testing.T) {
	_, err := Text("broken.pdf", []byte("this is not a pdf document at all"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, FormatPDF, perr.Format)
}

func TestTextDocxParagraphs(t *testing.T) {
	data := extracttest.Docx("Introduction", "", "Chapter 1 & more <tags>")

	got, err := Text("essay.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "Introduction\n\nChapter 1 & more <tags>", got)
}

func TestTextDocxRunsAndTables(t *testing.T) {
	body := `<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:tab/><w:t xml:space="preserve"> world</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p><w:r><w:t>line</w:t><w:br/><w:t>break</w:t></w:r></w:p>`
	data := extracttest.Zip(extracttest.Part{Name: "word/document.xml", Body: extracttest.DocumentXML(body)})

	got, err := Text("essay.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "Hello\t world\nline\nbreak", got)
}

func TestTextDocxMissingPart(t *testing.T) {
	data := extracttest.Zip(extracttest.Part{Name: "other.xml", Body: "<x/>"})
	_, err := Text("essay.docx", data)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestTextDocxNotAZip(t *testing.T) {
	_, err := Text("essay.docx", []byte("plain bytes"))
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestTextSlidesShapeOrder(t *testing.T) {
	data := extracttest.Pptx(
		[]string{"Title slide", "Subtitle\nsecond paragraph"},
		[]string{"  ", "Agenda"},
	)

	got, err := Text("deck.pptx", data)
	require.NoError(t, err)
	assert.Equal(t, "Title slide\nSubtitle\nsecond paragraph\nAgenda", got)
}

func TestTextSlidesFollowsPresentationOrder(t *testing.T) {
	ids := `<p:sldId id="256" r:id="rId3"/><p:sldId id="257" r:id="rId2"/>`
	rels := `<Relationship Id="rId2" Target="slides/slide1.xml"/><Relationship Id="rId3" Target="/ppt/slides/slide2.xml"/>`
	data := extracttest.Zip(
		extracttest.Part{Name: "ppt/slides/slide1.xml", Body: extracttest.SlideXML("second")},
		extracttest.Part{Name: "ppt/slides/slide2.xml", Body: extracttest.SlideXML("first")},
		extracttest.Part{Name: "ppt/presentation.xml", Body: extracttest.PresentationXML(ids)},
		extracttest.Part{Name: "ppt/_rels/presentation.xml.rels", Body: extracttest.RelsXML(rels)},
	)

	got, err := Text("deck.ppt", data)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got)
}

func TestTextSlidesNumericFallback(t *testing.T) {
	data := extracttest.Zip(
		extracttest.Part{Name: "ppt/slides/slide10.xml", Body: extracttest.SlideXML("ten")},
		extracttest.Part{Name: "ppt/slides/slide2.xml", Body: extracttest.SlideXML("two")},
		extracttest.Part{Name: "ppt/slides/slide1.xml", Body: extracttest.SlideXML("one")},
	)

	got, err := Text("deck.pptx", data)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nten", got)
}

func TestTextSlidesNotADeck(t *testing.T) {
	data := extracttest.Docx("not slides")
	_, err := Text("deck.pptx", data)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, FormatSlides, perr.Format)
}

func TestTextDeterministic(t *testing.T) {
	inputs := map[string][]byte{
		"a.pdf":  extracttest.PDF("alpha", "beta"),
		"a.docx": extracttest.Docx("one", "two"),
		"a.pptx": extracttest.Pptx([]string{"x", "y"}, []string{"z"}),
		"a.txt":  []byte("same bytes"),
	}
	for name, data := range inputs {
		first, err := Text(name, data)
		require.NoError(t, err, name)
		second, err := Text(name, data)
		require.NoError(t, err, name)
		assert.Equal(t, first, second, name)
	}
}
