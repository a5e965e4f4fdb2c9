package decode

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/policyops/regtext/internal/normalize"
)

// Container ids and classes regulator CMSes use for the article body.
var htmlMainIDs = []string{
	"zoom", "Zoom", "zoomfont", "zoomFont", "ZoomFont",
	"article", "articleBody", "articleContent", "article_content",
	"articlecontent", "articleText", "articleDetails", "artibody",
}

var htmlMainClasses = []string{
	"zoom", "article", "article-body", "article_content", "article-content",
	"articleContent", "articleText", "TRS_Editor", "TRS_EditorView",
}

// HTML selects the main article block out of a regulator page and returns
// its normalized text. Candidates are known container ids/classes plus
// article/main/section tags, scored by text density; the winner is prefixed
// with its nearest preceding heading when the heading is not already in
// the text. Falls back to body text, then the whole document.
func HTML(data []byte) (string, string) {
	doc, err := html.Parse(strings.NewReader(Bytes(data)))
	if err != nil {
		return "", CodeHTMLEmpty
	}

	candidates := collectCandidates(doc)
	type scored struct {
		score  int
		length int
		depth  int
		node   *html.Node
	}
	var evaluated []scored
	for _, candidate := range candidates {
		text := normalize.HTML(nodeText(candidate))
		score := scoreHTMLText(text)
		if score <= 0 {
			// Short notices can be dense CJK with too many short lines for
			// the density heuristic. Accept them only when compact.
			lineCount := 0
			for _, line := range strings.Split(text, "\n") {
				if strings.TrimSpace(line) != "" {
					lineCount++
				}
			}
			if utf8.RuneCountInString(text) < 80 || normalize.CountCJK(text) < 30 || lineCount > 20 {
				continue
			}
			score = 1
		}
		evaluated = append(evaluated, scored{
			score:  score,
			length: utf8.RuneCountInString(text),
			depth:  nodeDepth(candidate),
			node:   candidate,
		})
	}

	if len(evaluated) > 0 {
		sort.SliceStable(evaluated, func(i, j int) bool {
			if evaluated[i].score != evaluated[j].score {
				return evaluated[i].score < evaluated[j].score
			}
			if evaluated[i].length != evaluated[j].length {
				return evaluated[i].length < evaluated[j].length
			}
			return evaluated[i].depth < evaluated[j].depth
		})
		best := evaluated[len(evaluated)-1]
		if best.score > 0 {
			text := normalize.HTML(nodeText(best.node))
			if heading := precedingHeading(doc, best.node); heading != "" && !strings.Contains(text, heading) {
				if text != "" {
					text = heading + "\n" + text
				} else {
					text = heading
				}
			}
			if strings.TrimSpace(text) != "" {
				return text, ""
			}
		}
	}

	if body := findElement(doc, atom.Body); body != nil {
		if text := normalize.HTML(nodeText(body)); strings.TrimSpace(text) != "" {
			return text, ""
		}
	}
	if text := normalize.HTML(nodeText(doc)); strings.TrimSpace(text) != "" {
		return text, ""
	}
	return "", CodeHTMLEmpty
}

// scoreHTMLText is the content-density heuristic: long lines accumulate
// their length, very short lines are penalized as navigation chrome.
func scoreHTMLText(text string) int {
	longChars := 0
	shortPenalty := 0
	sawLine := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		sawLine = true
		n := utf8.RuneCountInString(line)
		if n >= 20 {
			longChars += n
		}
		if n <= 10 {
			shortPenalty++
		}
	}
	if !sawLine {
		return 0
	}
	return longChars - shortPenalty*20
}

func collectCandidates(doc *html.Node) []*html.Node {
	var candidates []*html.Node
	seen := map[*html.Node]bool{}
	add := func(n *html.Node) {
		if n != nil && !seen[n] {
			seen[n] = true
			candidates = append(candidates, n)
		}
	}
	for _, id := range htmlMainIDs {
		add(findByAttr(doc, "id", id, false))
	}
	for _, class := range htmlMainClasses {
		add(findByAttr(doc, "class", class, true))
	}
	for _, a := range []atom.Atom{atom.Article, atom.Main, atom.Section} {
		add(findElement(doc, a))
	}
	return candidates
}

func findByAttr(n *html.Node, key, value string, classList bool) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key != key {
				continue
			}
			if classList {
				for _, field := range strings.Fields(attr.Val) {
					if field == value {
						return n
					}
				}
			} else if attr.Val == value {
				return n
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findByAttr(child, key, value, classList); found != nil {
			return found
		}
	}
	return nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, a); found != nil {
			return found
		}
	}
	return nil
}

// nodeText collects the text content of a subtree, one trimmed segment per
// line, skipping script and style.
func nodeText(n *html.Node) string {
	var segments []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.DataAtom == atom.Script || node.DataAtom == atom.Style) {
			return
		}
		if node.Type == html.TextNode {
			if text := strings.TrimSpace(node.Data); text != "" {
				segments = append(segments, text)
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(segments, "\n")
}

func nodeDepth(n *html.Node) int {
	depth := 0
	for parent := n.Parent; parent != nil; parent = parent.Parent {
		depth++
	}
	return depth
}

var headingAtoms = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// precedingHeading finds the nearest heading before target in document
// order, preferring higher heading levels.
func precedingHeading(doc *html.Node, target *html.Node) string {
	for _, level := range headingAtoms {
		var last *html.Node
		found := false
		var walk func(*html.Node)
		walk = func(node *html.Node) {
			if found {
				return
			}
			if node == target {
				found = true
				return
			}
			if node.Type == html.ElementNode && node.DataAtom == level {
				last = node
			}
			for child := node.FirstChild; child != nil; child = child.NextSibling {
				walk(child)
			}
		}
		walk(doc)
		if last != nil {
			if heading := normalize.HTML(nodeText(last)); heading != "" {
				return heading
			}
		}
	}
	return ""
}
