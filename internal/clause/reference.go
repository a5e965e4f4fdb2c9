package clause

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// separatorChars separate clause segments inside a citation.
const separatorChars = "，,、;；。　 \n\r\t"

// Reference is a structured clause citation: article number plus optional
// paragraph and item levels. Produced by Parse; treat as immutable.
type Reference struct {
	Article       int    `json:"article"`
	Paragraph     *int   `json:"paragraph,omitempty"`
	ParagraphUnit string `json:"paragraph_unit,omitempty"`
	Item          *int   `json:"item,omitempty"`
	ItemUnit      string `json:"item_unit,omitempty"`
	Raw           string `json:"raw,omitempty"`
}

var (
	articleRe      = regexp.MustCompile(`第\s*(` + NumberClass + `+)\s*(条|点)`)
	paragraphRe    = regexp.MustCompile(`^第\s*(` + NumberClass + `+)\s*(款|段)`)
	bareNumberRe   = regexp.MustCompile(`^第\s*(` + NumberClass + `+)($|[，,、;；。\x{3000} \n\r\t])`)
	parenItemRe    = regexp.MustCompile(`[(（]\s*(` + NumberClass + `+)\s*[)）]\s*(项|目)?`)
	explicitItemRe = regexp.MustCompile(`第\s*(` + NumberClass + `+)\s*(项|目)`)
)

// Parse reads a citation like 第三条第一款（二）项 into a Reference. Full-width
// punctuation is folded to half-width first. Returns nil when no article
// number can be found.
func Parse(query string) *Reference {
	if query == "" {
		return nil
	}
	normalized := norm.NFKC.String(query)
	normalized = strings.NewReplacer("（", "(", "）", ")", "〔", "[", "〕", "]").Replace(normalized)
	normalized = strings.TrimSpace(normalized)
	normalized = strings.TrimLeft(normalized, separatorChars)

	articleMatch := articleRe.FindStringSubmatchIndex(normalized)
	if articleMatch == nil {
		return nil
	}
	articleText := normalized[articleMatch[2]:articleMatch[3]]
	article, ok := ParseNumber(articleText)
	if !ok {
		return nil
	}
	ref := &Reference{Article: article, Raw: strings.TrimSpace(query)}

	remainder := strings.TrimSpace(normalized[articleMatch[1]:])
	remainder = strings.TrimLeft(remainder, separatorChars)
	if remainder == "" {
		return ref
	}

	consumed := 0
	if m := paragraphRe.FindStringSubmatchIndex(remainder); m != nil {
		if value, ok := ParseNumber(remainder[m[2]:m[3]]); ok {
			ref.Paragraph = &value
			ref.ParagraphUnit = remainder[m[4]:m[5]]
		}
		consumed = m[1]
	} else if m := bareNumberRe.FindStringSubmatchIndex(remainder); m != nil {
		// A trailing 第N with no unit reads as an implicit paragraph.
		if value, ok := ParseNumber(remainder[m[2]:m[3]]); ok {
			ref.Paragraph = &value
		}
		consumed = m[1]
	}
	remainder = strings.TrimSpace(remainder[consumed:])
	remainder = strings.TrimLeft(remainder, separatorChars)

	if m := parenItemRe.FindStringSubmatchIndex(remainder); m != nil {
		if value, ok := ParseNumber(remainder[m[2]:m[3]]); ok {
			ref.Item = &value
			if m[4] >= 0 {
				ref.ItemUnit = remainder[m[4]:m[5]]
			} else {
				ref.ItemUnit = "项"
			}
		}
		remainder = strings.TrimSpace(remainder[m[1]:])
	}
	if ref.Item == nil {
		if m := explicitItemRe.FindStringSubmatch(remainder); m != nil {
			if value, ok := ParseNumber(m[1]); ok {
				ref.Item = &value
				ref.ItemUnit = m[2]
			}
		}
	}
	return ref
}

// String renders the reference back into canonical citation form.
func (r *Reference) String() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("第")
	sb.WriteString(ToChinese(r.Article))
	sb.WriteString("条")
	if r.Paragraph != nil {
		unit := r.ParagraphUnit
		if unit == "" {
			unit = "款"
		}
		sb.WriteString("第")
		sb.WriteString(ToChinese(*r.Paragraph))
		sb.WriteString(unit)
	}
	if r.Item != nil {
		unit := r.ItemUnit
		if unit == "" {
			unit = "项"
		}
		sb.WriteString("（")
		sb.WriteString(ToChinese(*r.Item))
		sb.WriteString("）")
		sb.WriteString(unit)
	}
	return sb.String()
}
