package decode

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// oleMagic is the compound-document signature of legacy Word/WPS files.
var oleMagic = []byte{0xd0, 0xcf, 0x11, 0xe0}

// IsOLE reports whether the payload is an OLE compound document.
func IsOLE(data []byte) bool {
	return bytes.HasPrefix(data, oleMagic)
}

// legacyWordTextRe matches a run of characters plausible as CJK document
// body text. The longest such run inside a decoded compound document is
// usually the article text.
var legacyWordTextRe = regexp.MustCompile(
	`[\x{4e00}-\x{9fff}0-9A-Za-z（）()〔〕【】《》〈〉“”‘’、，。．,.；：？！—\-·…％%\s]{20,}`,
)

var legacyWordDecoders = []encoding.Encoding{
	unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

// LegacyWord recovers text from a legacy Word/WPS compound document by
// decoding the raw stream as UTF-16 and keeping the longest printable run.
// Field instruction lines (MERGEFORMAT) are dropped. Returns "" when
// nothing usable is found.
func LegacyWord(data []byte) string {
	for _, enc := range legacyWordDecoders {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		// Invalid sequences decode to replacement runes, which fall outside
		// the run character class and terminate runs naturally.
		matches := legacyWordTextRe.FindAllString(string(decoded), -1)
		if len(matches) == 0 {
			continue
		}
		longest := matches[0]
		for _, m := range matches[1:] {
			if len(m) > len(longest) {
				longest = m
			}
		}
		normalized := strings.ReplaceAll(longest, "\r\n", "\n")
		normalized = strings.ReplaceAll(normalized, "\r", "\n")
		var lines []string
		for _, line := range strings.Split(normalized, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.Contains(line, "MERGEFORMAT") {
				continue
			}
			lines = append(lines, line)
		}
		if result := strings.TrimSpace(strings.Join(lines, "\n")); result != "" {
			return result
		}
	}
	return ""
}
