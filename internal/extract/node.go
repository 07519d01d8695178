package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Node is an element (or document) of a parsed HTML tree.
// Selectors are CSS selectors; an invalid selector matches nothing.
type Node interface {
	// FindFirst returns the first descendant matching selector.
	FindFirst(selector string) (Node, bool)

	// FindAll returns every descendant matching selector in document order.
	FindAll(selector string) []Node

	// Text returns the text content with whitespace runs collapsed to a
	// single space and surrounding whitespace removed.
	Text() string

	// Attr returns the trimmed value of the named attribute.
	Attr(name string) (string, bool)
}

// Parse parses an HTML document and returns its root node.
// The HTML5 parsing algorithm recovers from malformed markup, so an error
// is only returned if reading the input fails.
func Parse(document string) (Node, error) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, err
	}
	return selectionNode{sel: goquery.NewDocumentFromNode(root).Selection}, nil
}

// selectionNode implements Node on top of a single-element goquery selection.
type selectionNode struct {
	sel *goquery.Selection
}

// FindFirst implements Node.
func (n selectionNode) FindFirst(selector string) (Node, bool) {
	found := n.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return selectionNode{sel: found}, true
}

// FindAll implements Node.
func (n selectionNode) FindAll(selector string) []Node {
	found := n.sel.Find(selector)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, selectionNode{sel: s})
	})
	return nodes
}

// Text implements Node.
func (n selectionNode) Text() string {
	return strings.Join(strings.Fields(n.sel.Text()), " ")
}

// Attr implements Node.
func (n selectionNode) Attr(name string) (string, bool) {
	v, ok := n.sel.Attr(name)
	return strings.TrimSpace(v), ok
}
