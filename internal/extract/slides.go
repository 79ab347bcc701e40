package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// slidesText reads a PresentationML package. Text of each shape is its
// paragraphs joined by "\n"; shapes are emitted in tree order within slide order.
func slidesText(data []byte) (string, error) {
	zr, err := openZip(data)
	if err != nil {
		return "", err
	}

	slides, err := slideOrder(zr)
	if err != nil {
		return "", err
	}

	var fragments []string
	for _, f := range slides {
		b, err := readEntry(f)
		if err != nil {
			return "", err
		}
		shapes, err := slideShapes(b)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, shapes...)
	}
	return strings.Join(fragments, "\n"), nil
}

type presentation struct {
	Slides []struct {
		RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type relationships struct {
	Items []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// slideOrder follows the deck's slide list; packages without one fall back to slide part numbering.
func slideOrder(zr *zip.Reader) ([]*zip.File, error) {
	presFile := zipEntry(zr, "ppt/presentation.xml")
	relsFile := zipEntry(zr, "ppt/_rels/presentation.xml.rels")
	if presFile == nil {
		slides := numberedSlides(zr)
		if len(slides) == 0 {
			return nil, errors.New("not a presentation package")
		}
		return slides, nil
	}
	if relsFile == nil {
		return numberedSlides(zr), nil
	}

	presXML, err := readEntry(presFile)
	if err != nil {
		return nil, err
	}
	var pres presentation
	if err := xml.Unmarshal(presXML, &pres); err != nil {
		return nil, err
	}
	if len(pres.Slides) == 0 {
		return numberedSlides(zr), nil
	}

	relsXML, err := readEntry(relsFile)
	if err != nil {
		return nil, err
	}
	var rels relationships
	if err := xml.Unmarshal(relsXML, &rels); err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels.Items))
	for _, r := range rels.Items {
		targets[r.ID] = r.Target
	}

	out := make([]*zip.File, 0, len(pres.Slides))
	for _, s := range pres.Slides {
		target, ok := targets[s.RelID]
		if !ok {
			return nil, errors.New("slide relationship " + s.RelID + " not found")
		}
		name := path.Join("ppt", target)
		if strings.HasPrefix(target, "/") {
			name = strings.TrimPrefix(target, "/")
		}
		f := zipEntry(zr, name)
		if f == nil {
			return nil, errors.New("slide part " + name + " missing")
		}
		out = append(out, f)
	}
	return out, nil
}

func numberedSlides(zr *zip.Reader) []*zip.File {
	type numbered struct {
		n int
		f *zip.File
	}
	var found []numbered
	for _, f := range zr.File {
		m := slidePart.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		found = append(found, numbered{n: n, f: f})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	out := make([]*zip.File, len(found))
	for i, s := range found {
		out[i] = s.f
	}
	return out
}

// slideShapes returns the text of every text-bearing shape (p:sp with a p:txBody) in one slide.
func slideShapes(b []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(b))

	var (
		shapes  []string
		paras   []string
		para    strings.Builder
		inShape bool
		inBody  bool
		inPara  bool
		hasBody bool
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
			switch t.Name.Local {
			case "sp":
				inShape, hasBody, paras = true, false, nil
			case "txBody":
				if inShape {
					inBody, hasBody = true, true
				}
			case "p":
				if inBody {
					inPara = true
					para.Reset()
				}
			case "t":
				if inPara {
					var s string
					if err := dec.DecodeElement(&s, &t); err != nil {
						return nil, err
					}
					para.WriteString(s)
				}
			case "br":
				if inPara {
					para.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inPara {
					paras = append(paras, para.String())
					inPara = false
				}
			case "txBody":
				inBody = false
			case "sp":
				if hasBody {
					text := strings.Join(paras, "\n")
					if strings.TrimSpace(text) != "" {
						shapes = append(shapes, text)
					}
				}
				inShape = false
			}
		}
	}
	return shapes, nil
}
