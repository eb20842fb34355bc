package markdown

import (
	"strings"
	"testing"
)

func TestRenderBasics(t *testing.T) {
	html := Render("## Fixes\n\n- faster saves\n- `code` spans")
	if !strings.Contains(html, "<h2") || !strings.Contains(html, "<li>") {
		t.Fatalf("unexpected render output: %s", html)
	}
	if !strings.Contains(html, "<code>code</code>") {
		t.Fatalf("inline code not rendered: %s", html)
	}
}

func TestRenderExternalLinks(t *testing.T) {
	html := Render("[changelog](https://example.com/notes)")
	if !strings.Contains(html, `target="_blank"`) || !strings.Contains(html, `rel="noopener noreferrer"`) {
		t.Fatalf("external link attrs missing: %s", html)
	}
}

func TestRenderEmpty(t *testing.T) {
	if Render("") != "" {
		t.Fatal("empty input must render empty")
	}
}
