package decode

import (
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

func TestBytesUTF8(t *testing.T) {
	if got := Bytes([]byte("第一条 内容")); got != "第一条 内容" {
		t.Errorf("got %q", got)
	}
}

func TestBytesUTF16BOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("政策文件"))
	if err != nil {
		t.Fatal(err)
	}
	if got := Bytes(data); got != "政策文件" {
		t.Errorf("got %q", got)
	}
}

func TestBytesGB18030(t *testing.T) {
	enc := simplifiedchinese.GB18030.NewEncoder()
	// Odd byte length keeps the UTF-16 codecs from claiming the payload.
	data, err := enc.Bytes([]byte("中文A"))
	if err != nil {
		t.Fatal(err)
	}
	if got := Bytes(data); got != "中文A" {
		t.Errorf("got %q", got)
	}
}

func TestBytesEmpty(t *testing.T) {
	if got := Bytes(nil); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestText(t *testing.T) {
	if _, code := Text([]byte("   \n\t")); code != CodeTextEmpty {
		t.Errorf("code = %q, want %q", code, CodeTextEmpty)
	}
	text, code := Text([]byte("正文"))
	if code != "" || text != "正文" {
		t.Errorf("got (%q, %q)", text, code)
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		declared, ext, want string
	}{
		{"pdf", ".docx", "docx"},
		{"word", "", "doc"},
		{"doc", ".wps", "doc"},
		{"", ".htm", "html"},
		{"", ".md", "text"},
		{"html", ".bin", "html"},
		{"mystery", "", "mystery"},
	}
	for _, tt := range tests {
		if got := NormalizeType(tt.declared, tt.ext); got != tt.want {
			t.Errorf("NormalizeType(%q, %q) = %q, want %q", tt.declared, tt.ext, got, tt.want)
		}
	}
}
