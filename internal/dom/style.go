package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/bnema/umbra/internal/color"
)

// Stylesheet is one source of style rules reachable from the document.
// Linked sheets are represented but unreadable: their content lives on
// another origin and cannot be inspected, only noted.
type Stylesheet struct {
	Href       string
	Inline     bool
	Unreadable bool
	Rules      []Rule
}

// Rule is a single selector block. Selectors with combinators or
// pseudo-classes (other than :root) are retained for custom-property
// indexing but never match elements.
type Rule struct {
	Selector    string
	Decls       []Declaration
	specificity int
	matchable   bool
}

// Declaration is one property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// Stylesheets returns the document's stylesheet list in document order.
func (d *Document) Stylesheets() []*Stylesheet {
	return d.sheets
}

// CustomProperties collects every custom (--*) property declared in
// readable stylesheets, later declarations winning.
func (d *Document) CustomProperties() map[string]string {
	out := make(map[string]string)
	for _, sheet := range d.sheets {
		if sheet.Unreadable {
			continue
		}
		for _, rule := range sheet.Rules {
			for _, decl := range rule.Decls {
				if strings.HasPrefix(decl.Property, "--") {
					out[decl.Property] = decl.Value
				}
			}
		}
	}
	return out
}

// loadStylesheets (re)builds the stylesheet list from <style> and
// <link rel="stylesheet"> elements.
func (d *Document) loadStylesheets() {
	var sheets []*Stylesheet
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Style:
				var css strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						css.WriteString(c.Data)
					}
				}
				sheets = append(sheets, &Stylesheet{
					Inline: true,
					Rules:  parseCSS(css.String()),
				})
			case atom.Link:
				el := Element{doc: d, n: n}
				if strings.EqualFold(el.Attr("rel"), "stylesheet") {
					sheets = append(sheets, &Stylesheet{
						Href:       el.Attr("href"),
						Unreadable: true,
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	d.sheets = sheets
}

// StyleProperty returns the named property from the element's inline style
// attribute, or "".
func (e *Element) StyleProperty(name string) string {
	for _, decl := range parseDecls(e.Attr("style")) {
		if decl.Property == name {
			return decl.Value
		}
	}
	return ""
}

// SetStyleProperty sets or replaces a property in the inline style
// attribute, preserving declaration order.
func (e *Element) SetStyleProperty(name, value string) {
	decls := parseDecls(e.Attr("style"))
	for i, decl := range decls {
		if decl.Property == name {
			decls[i].Value = value
			e.SetAttr("style", serializeDecls(decls))
			return
		}
	}
	decls = append(decls, Declaration{Property: name, Value: value})
	e.SetAttr("style", serializeDecls(decls))
}

// RemoveStyleProperty deletes a property from the inline style attribute.
// Removing the last property drops the attribute entirely.
func (e *Element) RemoveStyleProperty(name string) {
	decls := parseDecls(e.Attr("style"))
	for i, decl := range decls {
		if decl.Property == name {
			decls = append(decls[:i], decls[i+1:]...)
			if len(decls) == 0 {
				e.RemoveAttr("style")
			} else {
				e.SetAttr("style", serializeDecls(decls))
			}
			return
		}
	}
}

// ComputedStyle resolves the effective value of a property for this
// element: inline style first, then the highest-specificity matching rule
// (later rules win ties), then presentational attributes. The color
// property inherits from ancestors; everything else resolves to "".
// var() references are resolved against the document's custom properties.
func (e *Element) ComputedStyle(prop string) string {
	if v := e.StyleProperty(prop); v != "" {
		return e.resolveVar(v)
	}

	best := ""
	bestSpec := -1
	for _, sheet := range e.doc.sheets {
		if sheet.Unreadable {
			continue
		}
		for _, rule := range sheet.Rules {
			if rule.specificity < bestSpec || !rule.matches(e) {
				continue
			}
			for _, decl := range rule.Decls {
				if decl.Property == prop {
					best = decl.Value
					bestSpec = rule.specificity
				}
			}
		}
	}
	if best != "" {
		return e.resolveVar(best)
	}

	switch prop {
	case "background-color":
		if v := e.Attr("bgcolor"); v != "" {
			return v
		}
	case "color":
		if e.n.DataAtom == atom.Body {
			if v := e.Attr("text"); v != "" {
				return v
			}
		}
		if e.n.DataAtom == atom.Font {
			if v := e.Attr("color"); v != "" {
				return v
			}
		}
		if p := e.Parent(); p != nil {
			return p.ComputedStyle(prop)
		}
	}
	return ""
}

// EffectiveBackground walks from the element up the ancestor chain to the
// nearest non-transparent background color. ok is false when every
// ancestor up to the root is transparent.
func (e *Element) EffectiveBackground() (value string, ok bool) {
	for el := e; el != nil; el = el.Parent() {
		v := el.ComputedStyle("background-color")
		if v != "" && !isTransparentValue(v) {
			return v, true
		}
	}
	return "", false
}

func isTransparentValue(v string) bool {
	// "none" only occurs for backgrounds; the color package does not treat
	// it as a color at all.
	return strings.EqualFold(strings.TrimSpace(v), "none") || color.IsTransparent(v)
}

func (e *Element) resolveVar(value string) string {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, "var(") || !strings.HasSuffix(v, ")") {
		return v
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(v, "var("), ")")
	name := inner
	fallback := ""
	if idx := strings.IndexByte(inner, ','); idx >= 0 {
		name = strings.TrimSpace(inner[:idx])
		fallback = strings.TrimSpace(inner[idx+1:])
	}
	if resolved, found := e.doc.CustomProperties()[strings.TrimSpace(name)]; found {
		return resolved
	}
	return fallback
}

// matches reports whether the rule's selector applies to the element.
func (r *Rule) matches(e *Element) bool {
	if !r.matchable {
		return false
	}
	for _, sel := range strings.Split(r.Selector, ",") {
		if matchCompound(strings.TrimSpace(sel), e) {
			return true
		}
	}
	return false
}

// matchCompound matches a single compound selector: [tag][#id][.class]*
// plus the :root pseudo-class.
func matchCompound(sel string, e *Element) bool {
	if sel == "" {
		return false
	}
	if sel == ":root" {
		return e.n.DataAtom == atom.Html
	}
	if sel == "*" {
		return true
	}

	rest := sel
	if i := strings.IndexAny(rest, "#."); i != 0 {
		tag := rest
		if i > 0 {
			tag = rest[:i]
			rest = rest[i:]
		} else {
			rest = ""
		}
		if !strings.EqualFold(tag, e.Tag()) {
			return false
		}
	}

	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, "#.")
		token := rest
		if end >= 0 {
			token = rest[:end]
			rest = rest[end:]
		} else {
			rest = ""
		}
		switch kind {
		case '#':
			if e.ID() != token {
				return false
			}
		case '.':
			if !e.HasClass(token) {
				return false
			}
		}
	}
	return true
}

// parseCSS tokenizes a stylesheet into rules. At-rules (@media, @keyframes
// and friends) are skipped wholesale; descendant/child combinators and
// pseudo-selectors are kept for property indexing but marked unmatchable.
func parseCSS(css string) []Rule {
	css = stripComments(css)
	var rules []Rule

	i := 0
	for i < len(css) {
		open := strings.IndexByte(css[i:], '{')
		if open < 0 {
			break
		}
		selector := strings.TrimSpace(css[i : i+open])
		bodyStart := i + open + 1

		// Find the matching close brace, tracking nesting for at-rules.
		depth := 1
		j := bodyStart
		for j < len(css) && depth > 0 {
			switch css[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}
		body := css[bodyStart : j-1]
		i = j

		if strings.HasPrefix(selector, "@") {
			continue
		}
		rule := Rule{
			Selector:    selector,
			Decls:       parseDecls(body),
			specificity: specificity(selector),
			matchable:   isMatchable(selector),
		}
		if len(rule.Decls) > 0 {
			rules = append(rules, rule)
		}
	}
	return rules
}

func isMatchable(selector string) bool {
	for _, sel := range strings.Split(selector, ",") {
		sel = strings.TrimSpace(sel)
		if sel == ":root" {
			return true
		}
		if strings.ContainsAny(sel, " >+~:[") {
			continue
		}
		if sel != "" {
			return true
		}
	}
	return false
}

func specificity(selector string) int {
	spec := 0
	spec += 100 * strings.Count(selector, "#")
	spec += 10 * strings.Count(selector, ".")
	if !strings.HasPrefix(strings.TrimSpace(selector), ".") &&
		!strings.HasPrefix(strings.TrimSpace(selector), "#") &&
		!strings.HasPrefix(strings.TrimSpace(selector), ":") {
		spec++
	}
	return spec
}

func stripComments(css string) string {
	var b strings.Builder
	for {
		start := strings.Index(css, "/*")
		if start < 0 {
			b.WriteString(css)
			return b.String()
		}
		b.WriteString(css[:start])
		end := strings.Index(css[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		css = css[start+2+end+2:]
	}
}

func parseDecls(style string) []Declaration {
	var out []Declaration
	for _, part := range strings.Split(style, ";") {
		idx := strings.IndexByte(part, ':')
		if idx < 0 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(part[:idx]))
		val := strings.TrimSpace(part[idx+1:])
		if prop == "" || val == "" {
			continue
		}
		// Custom properties are case-sensitive.
		if strings.HasPrefix(strings.TrimSpace(part[:idx]), "--") {
			prop = strings.TrimSpace(part[:idx])
		}
		out = append(out, Declaration{Property: prop, Value: val})
	}
	return out
}

func serializeDecls(decls []Declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.Property + ": " + d.Value
	}
	return strings.Join(parts, "; ")
}
