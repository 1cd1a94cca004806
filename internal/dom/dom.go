// Package dom wraps golang.org/x/net/html with the document model the
// theming engine works against: element traversal, style resolution,
// marked style-block injection, and a mutation bus for incrementally
// inserted content.
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML document. It is not safe for concurrent
// mutation; the engine's cooperative scheduler serializes all access.
type Document struct {
	root   *html.Node
	sheets []*Stylesheet
	subs   []*subscriber
}

// Element is a handle to an element node within a Document.
type Element struct {
	doc *Document
	n   *html.Node
}

type subscriber struct {
	fn func(added []*Element)
}

// Parse reads and parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	d := &Document{root: node}
	d.loadStylesheets()
	return d, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render serializes the document back to HTML.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}
	return nil
}

// RenderString serializes the document to a string.
func (d *Document) RenderString() (string, error) {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Root returns the document element (<html>), or nil on a malformed tree.
func (d *Document) Root() *Element {
	return d.findByAtom(atom.Html)
}

// Head returns the <head> element, or nil if absent.
func (d *Document) Head() *Element {
	return d.findByAtom(atom.Head)
}

// Body returns the <body> element, or nil if absent.
func (d *Document) Body() *Element {
	return d.findByAtom(atom.Body)
}

func (d *Document) findByAtom(a atom.Atom) *Element {
	var found *html.Node
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = n
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(d.root)
	if found == nil {
		return nil
	}
	return &Element{doc: d, n: found}
}

// BodyElements returns every element under <body> in depth-first document
// order, excluding <body> itself. Returns nil when the body is missing.
func (d *Document) BodyElements() []*Element {
	body := d.Body()
	if body == nil {
		return nil
	}
	return body.Descendants()
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.n.Data
}

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(name string) string {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces the named attribute.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.n.Attr {
		if a.Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes the named attribute if present.
func (e *Element) RemoveAttr(name string) {
	for i, a := range e.n.Attr {
		if a.Key == name {
			e.n.Attr = append(e.n.Attr[:i], e.n.Attr[i+1:]...)
			return
		}
	}
}

// ID returns the element's id attribute.
func (e *Element) ID() string {
	return e.Attr("id")
}

// Classes returns the element's class list.
func (e *Element) Classes() []string {
	return strings.Fields(e.Attr("class"))
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// Parent returns the parent element, or nil at the document element.
func (e *Element) Parent() *Element {
	for p := e.n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return &Element{doc: e.doc, n: p}
		}
	}
	return nil
}

// Children returns the direct child elements.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{doc: e.doc, n: c})
		}
	}
	return out
}

// Descendants returns all descendant elements in depth-first order.
func (e *Element) Descendants() []*Element {
	var out []*Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				out = append(out, &Element{doc: e.doc, n: c})
			}
			walk(c)
		}
	}
	walk(e.n)
	return out
}

// Depth returns the element's nesting depth relative to <body>; the body
// itself is depth 0. Elements outside the body count from the root.
func (e *Element) Depth() int {
	if e.n.DataAtom == atom.Body {
		return 0
	}
	depth := 0
	for p := e.Parent(); p != nil; p = p.Parent() {
		if p.n.DataAtom == atom.Body {
			return depth + 1
		}
		depth++
	}
	return depth
}

// Text returns the element's own direct text content, trimmed.
func (e *Element) Text() string {
	var b strings.Builder
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

// HasText reports whether the element carries direct, non-whitespace text.
func (e *Element) HasText() bool {
	return e.Text() != ""
}

// Key returns a stable identity for the element usable as a map key.
func (e *Element) Key() *html.Node {
	return e.n
}

// Wrap rebuilds an Element handle from a node key previously obtained via
// Key.
func Wrap(doc *Document, n *html.Node) *Element {
	if doc == nil || n == nil || n.Type != html.ElementNode {
		return nil
	}
	return &Element{doc: doc, n: n}
}

// Equal reports whether two handles refer to the same node.
func (e *Element) Equal(other *Element) bool {
	return other != nil && e.n == other.n
}

// Subscribe registers a callback invoked whenever elements are inserted
// into the document. The returned function unregisters it.
func (d *Document) Subscribe(fn func(added []*Element)) func() {
	sub := &subscriber{fn: fn}
	d.subs = append(d.subs, sub)
	return func() {
		for i, s := range d.subs {
			if s == sub {
				d.subs = append(d.subs[:i], d.subs[i+1:]...)
				return
			}
		}
	}
}

// AppendFragment parses an HTML fragment and appends its elements as
// children of parent, then notifies mutation subscribers with the inserted
// elements and all their descendants.
func (d *Document) AppendFragment(parent *Element, fragment string) ([]*Element, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent.n)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}

	var added []*Element
	for _, n := range nodes {
		parent.n.AppendChild(n)
		if n.Type == html.ElementNode {
			el := &Element{doc: d, n: n}
			added = append(added, el)
			added = append(added, el.Descendants()...)
		}
	}

	d.loadStylesheets()

	for _, sub := range d.subs {
		sub.fn(added)
	}
	return added, nil
}
