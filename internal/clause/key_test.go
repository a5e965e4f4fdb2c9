package clause

import "testing"

func TestParseKeyBracketedTitle(t *testing.T) {
	queries := ParseKey("《反洗钱管理办法》第三条第一款（二）项")
	if len(queries) != 1 {
		t.Fatalf("got %d queries, want 1: %+v", len(queries), queries)
	}
	if queries[0].Title != "反洗钱管理办法" {
		t.Errorf("title = %q", queries[0].Title)
	}
	if queries[0].Clause != "第三条第一款（二）项" {
		t.Errorf("clause = %q", queries[0].Clause)
	}
}

func TestParseKeyMultipleClauses(t *testing.T) {
	queries := ParseKey("《管理办法》第三条、第五条")
	if len(queries) != 2 {
		t.Fatalf("got %d queries, want 2: %+v", len(queries), queries)
	}
	if queries[0].Clause != "第三条" || queries[1].Clause != "第五条" {
		t.Errorf("clauses = %q, %q", queries[0].Clause, queries[1].Clause)
	}
	for _, q := range queries {
		if q.Title != "管理办法" {
			t.Errorf("title = %q", q.Title)
		}
	}
}

func TestParseKeyParagraphInheritsArticle(t *testing.T) {
	// A bare 第二款 segment folds into the preceding article citation.
	queries := ParseKey("《管理办法》第三条第一款、第二款")
	if len(queries) != 1 {
		t.Fatalf("got %d queries, want 1: %+v", len(queries), queries)
	}
	if queries[0].Clause != "第三条第一款 第二款" {
		t.Errorf("clause = %q", queries[0].Clause)
	}

	// A segment naming its own article stays separate.
	queries = ParseKey("《管理办法》第三条、第五条第一款")
	if len(queries) != 2 {
		t.Fatalf("got %d queries, want 2: %+v", len(queries), queries)
	}
	if queries[1].Clause != "第五条第一款" {
		t.Errorf("second clause = %q", queries[1].Clause)
	}
}

func TestParseKeyMultipleTitles(t *testing.T) {
	queries := ParseKey("《办法一》第二条及《办法二》第四条")
	if len(queries) != 2 {
		t.Fatalf("got %d queries, want 2: %+v", len(queries), queries)
	}
	if queries[0].Title != "办法一" || queries[1].Title != "办法二" {
		t.Errorf("titles = %q, %q", queries[0].Title, queries[1].Title)
	}
}

func TestParseKeyColonForm(t *testing.T) {
	queries := ParseKey("反洗钱管理办法：第三条")
	if len(queries) != 1 {
		t.Fatalf("got %d queries, want 1: %+v", len(queries), queries)
	}
	if queries[0].Title != "反洗钱管理办法" || queries[0].Clause != "第三条" {
		t.Errorf("query = %+v", queries[0])
	}
}

func TestParseKeyBareTitle(t *testing.T) {
	queries := ParseKey("反洗钱管理办法第十条")
	if len(queries) != 1 {
		t.Fatalf("got %d queries, want 1: %+v", len(queries), queries)
	}
	if queries[0].Title != "反洗钱管理办法" || queries[0].Clause != "第十条" {
		t.Errorf("query = %+v", queries[0])
	}
}

func TestParseKeyRejectsUnstructured(t *testing.T) {
	if queries := ParseKey("完全没有引用的文本"); queries != nil {
		t.Errorf("expected nil, got %+v", queries)
	}
	if queries := ParseKey(""); queries != nil {
		t.Errorf("expected nil for empty input, got %+v", queries)
	}
}
