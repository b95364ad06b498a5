// Package sanitize reduces user supplied markup to plain text.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// dropped elements lose their content as well as their tags.
var dropped = map[string]bool{
	"script": true,
	"style":  true,
	"iframe": true,
	"object": true,
	"embed":  true,
}

// escaper encodes the characters that could open markup again once the
// result is rendered as HTML.
var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// PlainText strips HTML elements from s, discards the content of executable
// elements and trims the result. Attributes, including event handlers, never
// survive because no element does. Text is returned escaped, so encoded markup
// stays inert, and a '<' that does not open a known element is kept as text.
func PlainText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	depth := 0
	consumed := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// An unterminated tag at the end of input is not markup.
			if depth == 0 && consumed < len(s) {
				b.WriteString(escaper.Replace(s[consumed:]))
			}
			return strings.TrimSpace(b.String())
		}
		raw := string(z.Raw())
		consumed += len(raw)

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch {
			case dropped[string(name)]:
				if tt == html.StartTagToken {
					depth++
				} else if tt == html.EndTagToken && depth > 0 {
					depth--
				}
			case atom.Lookup(name) == 0 && depth == 0:
				b.WriteString(escaper.Replace(raw))
			}
		case html.TextToken:
			if depth == 0 {
				b.WriteString(escaper.Replace(string(z.Text())))
			}
		}
	}
}
