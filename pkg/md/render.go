// render.go exports a slide deck as HTML sections.
package md

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer is a pre-configured goldmark instance with GFM tables. Raw HTML
// is kept since notebook cells commonly embed <img> tags.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// classPrefix starts the optional page header carrying the page class.
const classPrefix = "class: "

// Page is one slide split out of a deck.
type Page struct {
	Class    string // value of a leading "class: ..." line, if any
	Markdown string // page content without the class header
}

// SplitPages splits a deck on separator and extracts each page's class header.
func SplitPages(deck, separator string) []Page {
	if deck == "" {
		return nil
	}

	var pages []Page
	for _, raw := range strings.Split(deck, separator) {
		raw = strings.TrimLeft(raw, "\n")
		page := Page{Markdown: raw}
		if strings.HasPrefix(raw, classPrefix) {
			line, rest, _ := strings.Cut(raw, "\n")
			page.Class = strings.TrimSpace(strings.TrimPrefix(line, classPrefix))
			page.Markdown = strings.TrimLeft(rest, "\n")
		}
		pages = append(pages, page)
	}
	return pages
}

// ToHTML renders every page of deck to HTML, one <section> per page.
func ToHTML(deck, separator string) (string, error) {
	var out strings.Builder

	for i, page := range SplitPages(deck, separator) {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(page.Markdown), &buf); err != nil {
			return "", fmt.Errorf("failed to render page %d: %w", i+1, err)
		}

		class := "slide"
		if page.Class != "" {
			class += " " + page.Class
		}
		fmt.Fprintf(&out, "<section class=\"%s\">\n", html.EscapeString(class))
		out.Write(buf.Bytes())
		out.WriteString("</section>\n")
	}

	return out.String(), nil
}
