package decode

import (
	"strings"
	"testing"
)

const regulatorPage = `<html>
<head><title>站点标题</title></head>
<body>
  <div class="nav">首页 > 政务公开 > 政策文件</div>
  <h1>中国人民银行关于加强管理的通知</h1>
  <div id="zoom">
    <p>第一条 为了规范相关金融活动，维护市场秩序，制定本办法。</p>
    <p>第二条 本办法适用于在中华人民共和国境内设立的相关机构。</p>
    <p>第三条 相关机构应当按照本办法的规定开展业务活动。</p>
  </div>
  <div class="footer">法律声明 | 联系我们</div>
</body>
</html>`

func TestHTMLSelectsMainContainer(t *testing.T) {
	text, code := HTML([]byte(regulatorPage))
	if code != "" {
		t.Fatalf("unexpected code %q", code)
	}
	if !strings.Contains(text, "第一条") || !strings.Contains(text, "第三条") {
		t.Errorf("article body lost: %q", text)
	}
	if strings.Contains(text, "政务公开") || strings.Contains(text, "法律声明") {
		t.Errorf("navigation chrome leaked: %q", text)
	}
}

func TestHTMLPrefixesHeading(t *testing.T) {
	text, code := HTML([]byte(regulatorPage))
	if code != "" {
		t.Fatalf("unexpected code %q", code)
	}
	if !strings.HasPrefix(text, "中国人民银行关于加强管理的通知") {
		t.Errorf("preceding heading not prefixed: %q", text)
	}
}

func TestHTMLBodyFallback(t *testing.T) {
	page := `<html><body><p>第一条 为了规范相关金融活动，维护市场秩序，制定本办法。</p></body></html>`
	text, code := HTML([]byte(page))
	if code != "" {
		t.Fatalf("unexpected code %q", code)
	}
	if !strings.Contains(text, "制定本办法") {
		t.Errorf("body fallback failed: %q", text)
	}
}

func TestHTMLEmptyDocument(t *testing.T) {
	if _, code := HTML([]byte("")); code != CodeHTMLEmpty {
		t.Errorf("code = %q, want %q", code, CodeHTMLEmpty)
	}
	if _, code := HTML([]byte("<html><body><script>var x=1;</script></body></html>")); code != CodeHTMLEmpty {
		t.Errorf("script-only page: code = %q, want %q", code, CodeHTMLEmpty)
	}
}
