package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// docxText returns the body-level paragraphs of a WordprocessingML package.
// Paragraphs nested in tables or text boxes are not part of the body list.
func docxText(data []byte) (string, error) {
	zr, err := openZip(data)
	if err != nil {
		return "", err
	}
	f := zipEntry(zr, "word/document.xml")
	if f == nil {
		return "", errors.New("word/document.xml missing")
	}
	b, err := readEntry(f)
	if err != nil {
		return "", err
	}

	paras, err := bodyParagraphs(b)
	if err != nil {
		return "", err
	}
	return strings.Join(paras, "\n"), nil
}

func bodyParagraphs(b []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(b))

	var (
		paras []string
		para  strings.Builder
		stack []string
		inP   bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if inP {
				switch name {
				case "t":
					var s string
					if err := dec.DecodeElement(&s, &t); err != nil {
						return nil, err
					}
					para.WriteString(s)
					continue
				case "tab":
					para.WriteByte('\t')
				case "br", "cr":
					para.WriteByte('\n')
				case "txbxContent", "drawing", "pict", "AlternateContent":
					if err := dec.Skip(); err != nil {
						return nil, err
					}
					continue
				}
			} else if name == "p" && len(stack) > 0 && stack[len(stack)-1] == "body" {
				inP = true
				para.Reset()
			}
			stack = append(stack, name)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New("unbalanced document.xml")
			}
			stack = stack[:len(stack)-1]
			if inP && t.Name.Local == "p" && len(stack) > 0 && stack[len(stack)-1] == "body" {
				paras = append(paras, para.String())
				inP = false
			}
		}
	}
	if len(stack) != 0 {
		return nil, errors.New("truncated document.xml")
	}
	return paras, nil
}
