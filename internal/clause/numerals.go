package clause

import (
	"regexp"
	"strconv"
	"strings"
)

// NumberClass matches a single character that may appear inside a clause
// number: Arabic digits, standard and financial Chinese numerals, and the
// colloquial forms for two.
const NumberClass = `[一二三四五六七八九十百千万零〇0-9两俩壹贰叁肆伍陆柒捌玖]`

var chineseDigits = map[rune]int{
	'零': 0, '〇': 0, '○': 0, 'Ｏ': 0,
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9,
	'壹': 1, '贰': 2, '叁': 3, '肆': 4, '伍': 5,
	'陆': 6, '柒': 7, '捌': 8, '玖': 9,
	'两': 2, '俩': 2,
}

var chineseUnits = map[rune]int{
	'十': 10, '拾': 10,
	'百': 100, '佰': 100,
	'千': 1000, '仟': 1000,
	'万': 10000,
}

// ParseNumber converts a clause number written in Arabic digits or Chinese
// numerals (including financial forms) into an integer. The zero-carry rules
// of spoken Chinese apply, so 三百零五 is 305 and 十二 is 12.
func ParseNumber(text string) (int, bool) {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return 0, false
	}
	if isASCIIDigits(stripped) {
		n, err := strconv.Atoi(stripped)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	total := 0
	current := 0
	sawDigit := false
	for _, r := range stripped {
		if v, ok := chineseDigits[r]; ok {
			current = v
			sawDigit = true
			continue
		}
		if unit, ok := chineseUnits[r]; ok {
			if current == 0 {
				current = 1
			}
			total += current * unit
			current = 0
			sawDigit = true
			continue
		}
		switch r {
		case '、', ' ', '\t':
			continue
		}
		return 0, false
	}
	total += current
	if !sawDigit {
		return 0, false
	}
	return total, true
}

// ParseLooseNumber is ParseNumber with a fallback that strips any
// non-digit characters, for numbering like "3." or "（3）".
func ParseLooseNumber(text string) (int, bool) {
	if n, ok := ParseNumber(text); ok {
		return n, true
	}
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

func isASCIIDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

var sectionDigits = []string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}
var sectionUnits = []string{"", "十", "百", "千"}
var bigUnits = []string{"", "万", "亿", "兆"}

var repeatedZeros = regexp.MustCompile(`零+`)

// ToChinese renders an integer as a standard Chinese numeral, the form used
// in article headings (第十二条, 第一百零三条).
func ToChinese(number int) string {
	if number == 0 {
		return "零"
	}

	convertSection := func(section int) string {
		if section == 0 {
			return "零"
		}
		var pieces []string
		zeroFlag := false
		unitIndex := 0
		value := section
		for value > 0 {
			remainder := value % 10
			value /= 10
			if remainder == 0 {
				zeroFlag = true
			} else {
				if zeroFlag && len(pieces) > 0 {
					pieces = append(pieces, "零")
				}
				pieces = append(pieces, sectionDigits[remainder]+sectionUnits[unitIndex])
				zeroFlag = false
			}
			unitIndex++
		}
		var sb strings.Builder
		for i := len(pieces) - 1; i >= 0; i-- {
			sb.WriteString(pieces[i])
		}
		result := repeatedZeros.ReplaceAllString(sb.String(), "零")
		result = strings.Trim(result, "零")
		if section < 20 && strings.HasPrefix(result, "一十") {
			result = strings.TrimPrefix(result, "一")
		}
		if result == "" {
			return "零"
		}
		return result
	}

	var parts []string
	unitIndex := 0
	remaining := number
	for remaining > 0 {
		section := remaining % 10000
		remaining /= 10000
		if section != 0 {
			sectionText := convertSection(section)
			if bigUnits[unitIndex] != "" {
				sectionText += bigUnits[unitIndex]
			}
			parts = append([]string{sectionText}, parts...)
		} else if len(parts) > 0 && !strings.HasPrefix(parts[0], "零") {
			parts = append([]string{"零"}, parts...)
		}
		unitIndex++
	}

	result := repeatedZeros.ReplaceAllString(strings.Join(parts, ""), "零")
	result = strings.Trim(result, "零")
	if number < 20 && strings.HasPrefix(result, "一十") {
		result = strings.TrimPrefix(result, "一")
	}
	if result == "" {
		return "零"
	}
	return result
}

// numberVariants lists the textual spellings a number may take in a heading.
func numberVariants(number int) []string {
	variants := []string{strconv.Itoa(number), ToChinese(number)}
	if number == 2 {
		variants = append(variants, "两", "俩")
	}
	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// numberPattern builds a regexp alternation matching any spelling of number,
// tolerating whitespace between the characters (PDF extraction often spaces
// out CJK headings).
func numberPattern(number int) string {
	variants := numberVariants(number)
	if len(variants) == 0 {
		return ""
	}
	pieces := make([]string, 0, len(variants))
	for _, variant := range variants {
		chars := []rune(variant)
		escaped := make([]string, len(chars))
		for i, ch := range chars {
			escaped[i] = regexp.QuoteMeta(string(ch))
		}
		pieces = append(pieces, strings.Join(escaped, `\s*`))
	}
	return strings.Join(pieces, "|")
}
