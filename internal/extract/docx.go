package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DOCXFormat implements Format for Word documents. A .docx file is a zip
// archive; the body lives in word/document.xml.
type DOCXFormat struct{}

func init() {
	Register(&DOCXFormat{})
}

func (f *DOCXFormat) Name() string         { return "DOCX" }
func (f *DOCXFormat) Extensions() []string { return []string{".docx"} }

func (f *DOCXFormat) Extract(filename string) (string, error) {
	rc, err := zip.OpenReader(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer rc.Close()

	for _, file := range rc.File {
		if file.Name == "word/document.xml" {
			r, err := file.Open()
			if err != nil {
				return "", fmt.Errorf("failed to open document.xml: %w", err)
			}
			defer r.Close()
			return textFromDocumentXML(r)
		}
	}

	return "", fmt.Errorf("no word/document.xml in %s", filename)
}

// textFromDocumentXML streams through WordprocessingML tokens, collecting
// text runs (<w:t>) and turning paragraph ends (</w:p>) into blank lines.
func textFromDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var out strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteString(" ")
			case "br":
				out.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}

	return out.String(), nil
}
