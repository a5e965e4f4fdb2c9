package decode

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

const wordMLNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// IsZip reports whether the payload starts with a zip local-file header.
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK"))
}

// IsDocxArchive reports whether zip bytes contain a WordprocessingML
// document. Crawlers regularly mislabel .docx attachments as .doc.
func IsDocxArchive(data []byte) bool {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, file := range reader.File {
		if file.Name == "word/document.xml" {
			return true
		}
	}
	return false
}

// Docx extracts paragraph text from a DOCX payload: one output line per
// w:p element, runs concatenated in document order. Returns the text, an
// error code, and the page count from docProps/app.xml when present.
func Docx(data []byte) (string, string, int) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", CodeDocxReadError, 0
	}

	var documentXML []byte
	pageCount := 0
	for _, file := range reader.File {
		switch file.Name {
		case "word/document.xml":
			documentXML, err = readZipFile(file)
			if err != nil {
				return "", CodeDocxReadError, 0
			}
		case "docProps/app.xml":
			if appXML, err := readZipFile(file); err == nil {
				pageCount = docxPageCount(appXML)
			}
		}
	}
	if documentXML == nil {
		return "", CodeDocxDocumentMissing, 0
	}

	text, ok := docxParagraphs(documentXML)
	if !ok {
		return "", CodeDocxParseError, 0
	}
	if text == "" {
		return "", CodeDocxEmpty, pageCount
	}
	return text, "", pageCount
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// docxParagraphs walks the WordprocessingML token stream collecting w:t
// text grouped by enclosing w:p paragraphs.
func docxParagraphs(documentXML []byte) (string, bool) {
	decoder := xml.NewDecoder(bytes.NewReader(documentXML))

	var paragraphs []string
	var current strings.Builder
	inParagraph := false
	textDepth := 0

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", false
		}
		switch tok := token.(type) {
		case xml.StartElement:
			if tok.Name.Space != wordMLNamespace {
				continue
			}
			switch tok.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				if inParagraph {
					textDepth++
				}
			}
		case xml.EndElement:
			if tok.Name.Space != wordMLNamespace {
				continue
			}
			switch tok.Name.Local {
			case "p":
				if inParagraph && current.Len() > 0 {
					paragraphs = append(paragraphs, current.String())
				}
				inParagraph = false
			case "t":
				if textDepth > 0 {
					textDepth--
				}
			}
		case xml.CharData:
			if textDepth > 0 {
				current.Write(tok)
			}
		}
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n")), true
}

// docxPageCount pulls the Pages property out of docProps/app.xml.
func docxPageCount(appXML []byte) int {
	decoder := xml.NewDecoder(bytes.NewReader(appXML))
	inPages := false
	for {
		token, err := decoder.Token()
		if err != nil {
			return 0
		}
		switch tok := token.(type) {
		case xml.StartElement:
			inPages = tok.Name.Local == "Pages"
		case xml.EndElement:
			inPages = false
		case xml.CharData:
			if !inPages {
				continue
			}
			value, err := strconv.Atoi(strings.TrimSpace(string(tok)))
			if err != nil || value < 0 {
				return 0
			}
			return value
		}
	}
}
