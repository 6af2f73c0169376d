package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxMainPart = "word/document.xml"

var errNoMainPart = errors.New("docx: " + docxMainPart + " not found")

// ExtractDocx returns the body paragraphs of a .docx file joined by newlines.
// Paragraphs nested in tables, text boxes or other containers are skipped.
func ExtractDocx(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("docx: open archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != docxMainPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("docx: open %s: %w", docxMainPart, err)
		}
		defer rc.Close()
		paragraphs, err := bodyParagraphs(rc)
		if err != nil {
			return "", fmt.Errorf("docx: parse %s: %w", docxMainPart, err)
		}
		return strings.Join(paragraphs, "\n"), nil
	}
	return "", errNoMainPart
}

// bodyParagraphs walks WordprocessingML and collects the text of every w:p
// whose parent is w:body.
func bodyParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		inBodyPara bool
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return paragraphs, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case name == "p" && isBodyLevel(stack):
				inBodyPara = true
				current.Reset()
			case !inBodyPara || inTextBox(stack):
				// outside body text
			case name == "t":
				inText = true
			case name == "tab":
				current.WriteByte('\t')
			case name == "br" || name == "cr":
				current.WriteByte('\n')
			}
			stack = append(stack, name)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch {
			case t.Name.Local == "t":
				inText = false
			case t.Name.Local == "p" && inBodyPara && isBodyLevel(stack):
				paragraphs = append(paragraphs, current.String())
				inBodyPara = false
			}
		case xml.CharData:
			if inBodyPara && inText {
				current.Write(t)
			}
		}
	}
}

// inTextBox reports whether the open elements include a text box body, whose
// paragraphs are drawing objects rather than body text.
func inTextBox(stack []string) bool {
	for _, name := range stack {
		if name == "txbxContent" {
			return true
		}
	}
	return false
}

// isBodyLevel reports whether the open elements are exactly document > body.
func isBodyLevel(stack []string) bool {
	return len(stack) == 2 && stack[0] == "document" && stack[1] == "body"
}
