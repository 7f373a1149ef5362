package analysis

import (
	"strings"

	"github.com/JakeFAU/site-swot/internal/document"
)

// fakeNode is an in-memory element used to drive rules without a parser.
type fakeNode struct {
	tag      string
	attrs    map[string]string
	text     string
	children []*fakeNode
}

type fakeTree struct {
	root *fakeNode
}

func page(children ...*fakeNode) fakeTree {
	return fakeTree{root: &fakeNode{tag: "#document", children: children}}
}

func el(tag string, kv ...string) *fakeNode {
	n := &fakeNode{tag: tag, attrs: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		n.attrs[kv[i]] = kv[i+1]
	}
	return n
}

func (n *fakeNode) withText(text string) *fakeNode {
	n.text = text
	return n
}

func (n *fakeNode) with(children ...*fakeNode) *fakeNode {
	n.children = append(n.children, children...)
	return n
}

func repeat(count int, build func() *fakeNode) []*fakeNode {
	out := make([]*fakeNode, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, build())
	}
	return out
}

func (t fakeTree) matches(sel document.Selector) []*fakeNode {
	var out []*fakeNode
	var walk func(n *fakeNode)
	walk = func(n *fakeNode) {
		for _, child := range n.children {
			if sel.Matches(child.tag, child.attrs) {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(t.root)
	return out
}

func (t fakeTree) Count(sel document.Selector) int {
	return len(t.matches(sel))
}

func (t fakeTree) Attr(sel document.Selector, name string) (string, bool) {
	m := t.matches(sel)
	if len(m) == 0 {
		return "", false
	}
	v, ok := m[0].attrs[name]
	return v, ok
}

func (t fakeTree) Text(sel document.Selector) string {
	m := t.matches(sel)
	if len(m) == 0 {
		return ""
	}
	return m[0].text
}

func (t fakeTree) TextAll(sel document.Selector) string {
	var b strings.Builder
	for _, n := range t.matches(sel) {
		b.WriteString(n.text)
	}
	return b.String()
}

func (t fakeTree) Each(sel document.Selector) []document.Tree {
	m := t.matches(sel)
	out := make([]document.Tree, 0, len(m))
	for _, n := range m {
		out = append(out, fakeTree{root: n})
	}
	return out
}
