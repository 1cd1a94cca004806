package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MarkerAttr tags style blocks injected by the engine so they can be
// located and removed by identity.
const MarkerAttr = "data-umbra-style"

// InjectStyle inserts (or replaces) a marked <style> block in the document
// head. Falls back to the document element when the head is missing, and
// no-ops entirely on a document with neither — very early load timing is
// not an error.
func (d *Document) InjectStyle(marker, css string) bool {
	target := d.Head()
	if target == nil {
		target = d.Root()
	}
	if target == nil {
		return false
	}

	d.RemoveStyle(marker)

	style := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Style,
		Data:     "style",
		Attr:     []html.Attribute{{Key: MarkerAttr, Val: marker}},
	}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	target.n.AppendChild(style)

	d.loadStylesheets()
	return true
}

// RemoveStyle deletes the marked style block. Idempotent: returns false
// when no such block exists.
func (d *Document) RemoveStyle(marker string) bool {
	node := d.findStyleNode(marker)
	if node == nil {
		return false
	}
	node.Parent.RemoveChild(node)
	d.loadStylesheets()
	return true
}

// HasStyle reports whether a style block with the given marker is present.
func (d *Document) HasStyle(marker string) bool {
	return d.findStyleNode(marker) != nil
}

func (d *Document) findStyleNode(marker string) *html.Node {
	var found *html.Node
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Style {
			for _, a := range n.Attr {
				if a.Key == MarkerAttr && a.Val == marker {
					found = n
					return false
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(d.root)
	return found
}
