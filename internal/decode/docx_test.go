package decode

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := writer.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const documentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>第一条</w:t></w:r><w:r><w:t> 为了规范活动。</w:t></w:r></w:p>
    <w:p><w:r><w:t>第二条</w:t></w:r></w:p>
  </w:body>
</w:document>`

const appXML = `<?xml version="1.0"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
  <Pages>3</Pages>
</Properties>`

func TestDocx(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": documentXML,
		"docProps/app.xml":  appXML,
	})
	text, code, pages := Docx(data)
	if code != "" {
		t.Fatalf("unexpected code %q", code)
	}
	want := "第一条 为了规范活动。\n第二条"
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}
}

func TestDocxDocumentMissing(t *testing.T) {
	data := buildDocx(t, map[string]string{"other.xml": "<x/>"})
	if _, code, _ := Docx(data); code != CodeDocxDocumentMissing {
		t.Errorf("code = %q, want %q", code, CodeDocxDocumentMissing)
	}
}

func TestDocxEmpty(t *testing.T) {
	empty := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p/></w:body></w:document>`
	data := buildDocx(t, map[string]string{"word/document.xml": empty})
	if _, code, _ := Docx(data); code != CodeDocxEmpty {
		t.Errorf("code = %q, want %q", code, CodeDocxEmpty)
	}
}

func TestDocxReadError(t *testing.T) {
	if _, code, _ := Docx([]byte("not a zip")); code != CodeDocxReadError {
		t.Errorf("code = %q, want %q", code, CodeDocxReadError)
	}
}

func TestIsDocxArchive(t *testing.T) {
	withDoc := buildDocx(t, map[string]string{"word/document.xml": documentXML})
	if !IsDocxArchive(withDoc) {
		t.Error("expected a docx archive")
	}
	without := buildDocx(t, map[string]string{"data.txt": "x"})
	if IsDocxArchive(without) {
		t.Error("plain zip should not count as docx")
	}
	if IsDocxArchive([]byte("junk")) {
		t.Error("non-zip should not count as docx")
	}
}

func TestIsZip(t *testing.T) {
	if !IsZip([]byte("PK\x03\x04rest")) {
		t.Error("zip header not recognized")
	}
	if IsZip([]byte{0xd0, 0xcf}) {
		t.Error("ole header misread as zip")
	}
}
