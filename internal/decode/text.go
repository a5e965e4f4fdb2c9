package decode

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// textDecoders are tried in order; regulator attachments are usually UTF-8
// but older ones ship UTF-16 or GB-family bytes.
var textDecoders = []struct {
	name string
	enc  encoding.Encoding
}{
	{"utf-16", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{"utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
	{"utf-16be", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	{"gb18030", simplifiedchinese.GB18030},
	{"gbk", simplifiedchinese.GBK},
}

// Bytes decodes a text payload, trying UTF-8 first and then the UTF-16 and
// GB-family codecs. A codec is accepted only when it decodes without
// producing replacement runes; the final fallback strips invalid UTF-8.
func Bytes(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if utf8.Valid(data) {
		return string(data)
	}
	for _, candidate := range textDecoders {
		decoded, err := candidate.enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		if !strings.ContainsRune(string(decoded), utf8.RuneError) {
			return string(decoded)
		}
	}
	return strings.ToValidUTF8(string(data), "")
}

// Text decodes a plain-text document. Empty or whitespace-only content
// reports text_empty.
func Text(data []byte) (string, string) {
	text := Bytes(data)
	if strings.TrimSpace(text) == "" {
		return "", CodeTextEmpty
	}
	return text, ""
}
