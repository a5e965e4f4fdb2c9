package normalize

import (
	"regexp"
	"strings"
)

// Site chrome that leaks into extracted body text on regulator portals.
var htmlRemoveLines = map[string]bool{
	"中国人民银行规章": true,
	"中国人民银行发布": true,
	"打印本页":     true,
	">":        true,
	"|":        true,
}

var htmlRemoveContains = []string{
	"所在位置",
	"政府信息公开",
	"政　　策",
	"行政规范性文件",
	"法律声明",
	"联系我们",
	"加入收藏",
	"网站地图",
	"最佳分辨率",
	"京公网安备",
	"京ICP备",
	"网站标识码",
	"网站主办单位",
}

var htmlConclusionRes = []*regexp.Regexp{
	regexp.MustCompile(`^(本通知|本办法|本规定|本细则|本规则|本意见|本通告)自.+(实施|施行|执行)`),
	regexp.MustCompile(`^特此通知`),
}

// HTML filters boilerplate out of text pulled from a regulator page and
// truncates at the concluding phrase: everything after 本办法自…施行 or
// 特此通知 is signature block, not article text.
func HTML(text string) string {
	if text == "" {
		return ""
	}

	var result []string
	blankPending := false

	appendBlank := func() {
		if len(result) > 0 && result[len(result)-1] != "" {
			result = append(result, "")
		}
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			blankPending = true
			continue
		}

		lower := strings.ToLower(line)
		if htmlRemoveLines[line] {
			continue
		}
		if strings.Contains(line, "下载") && (strings.Contains(lower, "word") || strings.Contains(lower, "pdf")) {
			continue
		}
		if containsAny(line, htmlRemoveContains) {
			continue
		}
		if strings.HasSuffix(line, ".pdf") {
			continue
		}

		if isConclusion(line) {
			if len(result) > 0 && result[len(result)-1] != "" {
				appendBlank()
			}
			result = append(result, line)
			break
		}

		if blankPending {
			appendBlank()
			blankPending = false
		}
		if len(result) > 0 && result[len(result)-1] == line {
			continue
		}
		result = append(result, line)
	}

	for len(result) > 0 && result[0] == "" {
		result = result[1:]
	}
	for len(result) > 0 && result[len(result)-1] == "" {
		result = result[:len(result)-1]
	}
	return strings.Join(result, "\n")
}

func isConclusion(line string) bool {
	for _, re := range htmlConclusionRes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func containsAny(line string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(line, token) {
			return true
		}
	}
	return false
}
