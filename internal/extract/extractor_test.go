package extract

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// resultRow renders one well-formed result row.
func resultRow(title, href, snippet string) string {
	return `<tr><td><a rel="nofollow" class="result-link" href="` + href + `">` + title + `</a></td>` +
		`<td class="result-snippet">` + snippet + `</td></tr>`
}

// page wraps rows in a lite-style result table.
func page(rows ...string) string {
	return "<html><body><table>" + strings.Join(rows, "\n") + "</table></body></html>"
}

// TestExtract tests result extraction from lite result pages.
func TestExtract(t *testing.T) {
	t.Parallel()

	extractor := Default()

	t.Run("empty document yields no results", func(t *testing.T) {
		t.Parallel()

		results := extractor.Extract("<html></html>", 10)
		if results == nil {
			t.Fatal("expected non-nil result set")
		}
		if len(results) != 0 {
			t.Errorf("expected 0 results, got %d", len(results))
		}
	})

	t.Run("stops at maxResults in document order", func(t *testing.T) {
		t.Parallel()

		html := page(
			resultRow("First", "https://one.example", "one"),
			resultRow("Second", "https://two.example", "two"),
			resultRow("Third", "https://three.example", "three"),
		)

		results := extractor.Extract(html, 2)
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Title != "First" || results[1].Title != "Second" {
			t.Errorf("unexpected order: %+v", results)
		}
		if results[0].URL != "https://one.example" || results[0].Snippet != "one" {
			t.Errorf("unexpected first result: %+v", results[0])
		}
	})

	t.Run("zero maxResults yields no results", func(t *testing.T) {
		t.Parallel()

		html := page(resultRow("First", "https://one.example", "one"))
		if results := extractor.Extract(html, 0); len(results) != 0 {
			t.Errorf("expected 0 results, got %d", len(results))
		}
		if results := extractor.Extract(html, -3); len(results) != 0 {
			t.Errorf("expected 0 results for negative max, got %d", len(results))
		}
	})

	t.Run("rows without a result link are skipped and not counted", func(t *testing.T) {
		t.Parallel()

		html := page(
			`<tr><td>Sponsored</td></tr>`,
			`<tr><td><a href="https://ad.example">Ad</a></td></tr>`,
			resultRow("First", "https://one.example", "one"),
			`<tr><td class="result-snippet">orphan snippet</td></tr>`,
			resultRow("Second", "https://two.example", "two"),
		)

		results := extractor.Extract(html, 2)
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
		}
		if results[0].URL != "https://one.example" || results[1].URL != "https://two.example" {
			t.Errorf("unexpected results: %+v", results)
		}
	})

	t.Run("records with empty title or url are dropped", func(t *testing.T) {
		t.Parallel()

		html := page(
			resultRow("   ", "https://blank-title.example", "x"),
			resultRow("No URL", "  ", "x"),
			`<tr><td><a class="result-link">Missing href</a></td></tr>`,
			resultRow("Kept", "https://kept.example", "x"),
		)

		results := extractor.Extract(html, 10)
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d: %+v", len(results), results)
		}
		if results[0].Title != "Kept" {
			t.Errorf("unexpected result: %+v", results[0])
		}
		for _, r := range results {
			if r.Title == "" || r.URL == "" {
				t.Errorf("result with empty field: %+v", r)
			}
		}
	})

	t.Run("snippet is scoped to the candidate", func(t *testing.T) {
		t.Parallel()

		html := page(
			`<tr><td><a class="result-link" href="https://go.dev">Go</a></td></tr>`,
			`<tr><td class="result-snippet">belongs to the next row</td></tr>`,
		)

		results := extractor.Extract(html, 10)
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Snippet != "" {
			t.Errorf("expected empty snippet, got %q", results[0].Snippet)
		}
	})

	t.Run("text is trimmed, collapsed and unescaped", func(t *testing.T) {
		t.Parallel()

		html := page(resultRow(
			"\n   Go &amp; <b>Generics</b>\n  ",
			"  https://go.dev/doc/tutorial/generics  ",
			"  Learn   about\n type parameters.  ",
		))

		results := extractor.Extract(html, 10)
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		got := results[0]
		if got.Title != "Go & Generics" {
			t.Errorf("Title = %q", got.Title)
		}
		if got.URL != "https://go.dev/doc/tutorial/generics" {
			t.Errorf("URL = %q", got.URL)
		}
		if got.Snippet != "Learn about type parameters." {
			t.Errorf("Snippet = %q", got.Snippet)
		}
	})

	t.Run("malformed markup is tolerated", func(t *testing.T) {
		t.Parallel()

		html := `<table><tr><td><a class="result-link" href="https://one.example">One<td class="result-snippet">s1` +
			`<tr><td><a class="result-link" href="https://two.example">Two</a>`

		results := extractor.Extract(html, 10)
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
		}
		if results[0].Title != "One" || results[1].URL != "https://two.example" {
			t.Errorf("unexpected results: %+v", results)
		}
	})

	t.Run("extraction is deterministic", func(t *testing.T) {
		t.Parallel()

		html := page(
			resultRow("First", "https://one.example", "one"),
			resultRow("Second", "https://two.example", ""),
		)

		first := extractor.Extract(html, 5)
		second := extractor.Extract(html, 5)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("results differ between runs:\n%+v\n%+v", first, second)
		}
	})
}

// TestNew tests Extractor construction.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("invalid selector is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := New(WithLinkSelector("a[class="))
		if !errors.Is(err, ErrInvalidSelector) {
			t.Errorf("expected ErrInvalidSelector, got %v", err)
		}
	})

	t.Run("custom selectors", func(t *testing.T) {
		t.Parallel()

		extractor, err := New(
			WithCandidateSelector("div.result"),
			WithLinkSelector("a.result__a"),
			WithSnippetSelector(".result__snippet"),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		html := `<div class="result"><h2><a class="result__a" href="https://go.dev">Go</a></h2>` +
			`<a class="result__snippet">Build simple software.</a></div>`

		results := extractor.Extract(html, 10)
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Snippet != "Build simple software." {
			t.Errorf("Snippet = %q", results[0].Snippet)
		}
	})
}

// TestNode tests the Node interface over a parsed tree.
func TestNode(t *testing.T) {
	t.Parallel()

	root, err := Parse(`<ul><li id=" a ">one</li><li>two</li></ul>`)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	items := root.FindAll("li")
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first, ok := root.FindFirst("li")
	if !ok || first.Text() != "one" {
		t.Errorf("FindFirst returned %v %v", first, ok)
	}
	if id, ok := first.Attr("id"); !ok || id != "a" {
		t.Errorf("Attr(id) = %q %v, expected trimmed value", id, ok)
	}
	if _, ok := first.Attr("class"); ok {
		t.Error("expected missing attribute")
	}
	if _, ok := root.FindFirst("table"); ok {
		t.Error("expected no match for absent element")
	}
	if nodes := root.FindAll("li["); len(nodes) != 0 {
		t.Errorf("invalid selector should match nothing, got %d", len(nodes))
	}
}
