package document

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// queryTree implements Tree over a goquery selection.
type queryTree struct {
	sel *goquery.Selection
}

// Parse reads an HTML document and returns a Tree rooted at the document node.
// Malformed markup is repaired by the HTML5 parser; an empty input yields a
// valid tree with no content elements.
func Parse(r io.Reader) (Tree, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return queryTree{sel: doc.Selection}, nil
}

// ParseBytes is Parse over an in-memory body.
func ParseBytes(body []byte) (Tree, error) {
	return Parse(bytes.NewReader(body))
}

func (t queryTree) Count(sel Selector) int {
	return t.sel.Find(sel.CSS()).Length()
}

func (t queryTree) Attr(sel Selector, name string) (string, bool) {
	return t.sel.Find(sel.CSS()).First().Attr(name)
}

func (t queryTree) Text(sel Selector) string {
	return t.sel.Find(sel.CSS()).First().Text()
}

func (t queryTree) TextAll(sel Selector) string {
	return t.sel.Find(sel.CSS()).Text()
}

func (t queryTree) Each(sel Selector) []Tree {
	matches := t.sel.Find(sel.CSS())
	out := make([]Tree, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		out = append(out, queryTree{sel: s})
	})
	return out
}
