// Package document exposes a narrow, read-only query surface over parsed HTML.
//
// Callers describe the elements they care about with a Selector (a tag plus at
// most one attribute condition) and ask a Tree to count them, read an attribute
// from the first match, read the first match's text, or scope further queries
// to each match. Nothing else of the underlying parser leaks through, so rule
// code can be exercised against an in-memory fake.
package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Match selects how a Selector compares its attribute.
type Match int

// Attribute conditions supported by Selector.
const (
	MatchNone Match = iota
	MatchPresent
	MatchAbsent
	MatchEquals
	MatchPrefix
)

// Selector names a set of elements by tag and an optional attribute condition.
type Selector struct {
	Tag   string
	Attr  string
	Value string
	Match Match
}

// Tag selects every element with the given tag name.
func Tag(name string) Selector {
	return Selector{Tag: strings.ToLower(name)}
}

// With narrows s to elements carrying attr.
func (s Selector) With(attr string) Selector {
	return s.cond(attr, "", MatchPresent)
}

// Without narrows s to elements missing attr.
func (s Selector) Without(attr string) Selector {
	return s.cond(attr, "", MatchAbsent)
}

// Equals narrows s to elements whose attr is exactly value.
func (s Selector) Equals(attr, value string) Selector {
	return s.cond(attr, value, MatchEquals)
}

// HasPrefix narrows s to elements whose attr starts with prefix.
func (s Selector) HasPrefix(attr, prefix string) Selector {
	return s.cond(attr, prefix, MatchPrefix)
}

func (s Selector) cond(attr, value string, m Match) Selector {
	s.Attr = strings.ToLower(attr)
	s.Value = value
	s.Match = m
	return s
}

// CSS renders s as a CSS selector.
func (s Selector) CSS() string {
	switch s.Match {
	case MatchPresent:
		return fmt.Sprintf("%s[%s]", s.Tag, s.Attr)
	case MatchAbsent:
		return fmt.Sprintf("%s:not([%s])", s.Tag, s.Attr)
	case MatchEquals:
		return fmt.Sprintf("%s[%s=%s]", s.Tag, s.Attr, strconv.Quote(s.Value))
	case MatchPrefix:
		return fmt.Sprintf("%s[%s^=%s]", s.Tag, s.Attr, strconv.Quote(s.Value))
	default:
		return s.Tag
	}
}

// Matches reports whether an element with the given tag and attributes
// satisfies s. Attribute values compare case-sensitively.
func (s Selector) Matches(tag string, attrs map[string]string) bool {
	if !strings.EqualFold(tag, s.Tag) {
		return false
	}
	val, ok := attrs[s.Attr]
	switch s.Match {
	case MatchPresent:
		return ok
	case MatchAbsent:
		return !ok
	case MatchEquals:
		return ok && val == s.Value
	case MatchPrefix:
		return ok && strings.HasPrefix(val, s.Value)
	default:
		return true
	}
}

func (s Selector) String() string {
	return s.CSS()
}

// Tree is a read-only view of a parsed document or of one element inside it.
// Queries on a scoped Tree only see that element's descendants.
type Tree interface {
	// Count returns how many elements match sel.
	Count(sel Selector) int
	// Attr returns attribute name of the first element matching sel.
	Attr(sel Selector, name string) (string, bool)
	// Text returns the text content of the first element matching sel, or "".
	Text(sel Selector) string
	// TextAll returns the text content of every element matching sel,
	// concatenated in document order.
	TextAll(sel Selector) string
	// Each returns one scoped Tree per element matching sel, in document order.
	Each(sel Selector) []Tree
}
