package clause

import (
	"regexp"
	"strings"
)

// OutlineNode is one heading in a document's article/paragraph/item tree.
type OutlineNode struct {
	Type     string         `json:"type"`
	Number   int            `json:"number,omitempty"`
	Label    string         `json:"label"`
	Children []*OutlineNode `json:"children,omitempty"`
}

var (
	outlineArticleRe   = regexp.MustCompile(`^第\s*(` + NumberClass + `+)\s*条`)
	outlineParagraphRe = regexp.MustCompile(`^第\s*(` + NumberClass + `+)\s*(款|段)`)
	outlineItemRe      = regexp.MustCompile(`^[(（]\s*(` + NumberClass + `+)\s*[)）]`)
	outlineBulletRe    = regexp.MustCompile(`^(` + NumberClass + `+)\s*(?:、|\.|．|﹒|:|：|·|•)`)
)

// Outline builds a hierarchical heading tree from normalized policy text.
// Paragraph headings nest under the current article; item and bullet
// headings nest under the current paragraph, or the article directly when
// no paragraph heading has appeared.
func Outline(text string) []*OutlineNode {
	if text == "" {
		return nil
	}
	lines, normLines := prepareLines(text)

	var outline []*OutlineNode
	var currentArticle *OutlineNode
	var currentParagraph *OutlineNode

	for i, rawLine := range lines {
		normLine := normLines[i]
		label := strings.TrimSpace(rawLine)
		if label == "" {
			label = normLine
		}
		if label == "" {
			continue
		}

		if m := outlineArticleRe.FindStringSubmatch(normLine); m != nil {
			number, _ := ParseNumber(m[1])
			currentArticle = &OutlineNode{Type: "article", Number: number, Label: label}
			outline = append(outline, currentArticle)
			currentParagraph = nil
			continue
		}
		if currentArticle == nil {
			continue
		}
		if m := outlineParagraphRe.FindStringSubmatch(normLine); m != nil {
			number, _ := ParseNumber(m[1])
			currentParagraph = &OutlineNode{Type: "paragraph", Number: number, Label: label}
			currentArticle.Children = append(currentArticle.Children, currentParagraph)
			continue
		}

		var itemNumber int
		matched := false
		if m := outlineItemRe.FindStringSubmatch(normLine); m != nil {
			itemNumber, _ = ParseNumber(m[1])
			matched = true
		} else if m := outlineBulletRe.FindStringSubmatch(normLine); m != nil {
			itemNumber, _ = ParseNumber(m[1])
			matched = true
		}
		if !matched {
			continue
		}
		item := &OutlineNode{Type: "item", Number: itemNumber, Label: label}
		if currentParagraph != nil {
			currentParagraph.Children = append(currentParagraph.Children, item)
		} else {
			currentArticle.Children = append(currentArticle.Children, item)
		}
	}
	return outline
}
