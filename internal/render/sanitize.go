package render

import (
	"html/template"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var allowedTags = map[atom.Atom]bool{
	atom.Div:    true,
	atom.P:      true,
	atom.H3:     true,
	atom.H4:     true,
	atom.Ul:     true,
	atom.Ol:     true,
	atom.Li:     true,
	atom.Strong: true,
	atom.Em:     true,
	atom.B:      true,
	atom.I:      true,
	atom.Br:     true,
}

// Subtrees of these elements are dropped together with their text.
var droppedTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Math:     true,
	atom.Form:     true,
	atom.Textarea: true,
	atom.Select:   true,
	atom.Title:    true,
	atom.Head:     true,
}

// Sanitize re-serialises generated markup keeping only allowlisted elements and a
// plain class attribute. Other elements are unwrapped to their text; everything
// else is escaped.
func Sanitize(fragment string) template.HTML {
	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(fragment))
	}

	var sb strings.Builder
	for _, n := range nodes {
		writeNode(&sb, n)
	}
	return template.HTML(sb.String())
}

func writeNode(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(html.EscapeString(n.Data))
		return
	case html.ElementNode:
	default:
		// Comments and doctypes are dropped; documents are unwrapped.
		if n.Type == html.DocumentNode {
			writeChildren(sb, n)
		}
		return
	}

	if droppedTags[n.DataAtom] {
		return
	}
	if !allowedTags[n.DataAtom] {
		writeChildren(sb, n)
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.Data)
	if class := safeClass(n); class != "" {
		sb.WriteString(` class="`)
		sb.WriteString(class)
		sb.WriteByte('"')
	}
	sb.WriteByte('>')

	if n.DataAtom == atom.Br {
		return
	}

	writeChildren(sb, n)
	sb.WriteString("</")
	sb.WriteString(n.Data)
	sb.WriteByte('>')
}

func writeChildren(sb *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(sb, c)
	}
}

// safeClass returns the class attribute reduced to [A-Za-z0-9_-] tokens.
func safeClass(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key != "class" || a.Namespace != "" {
			continue
		}
		var tokens []string
		for _, tok := range strings.Fields(a.Val) {
			if isClassToken(tok) {
				tokens = append(tokens, tok)
			}
		}
		return strings.Join(tokens, " ")
	}
	return ""
}

func isClassToken(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return s != ""
}

var blockTags = map[atom.Atom]bool{
	atom.Div: true,
	atom.P:   true,
	atom.H3:  true,
	atom.H4:  true,
	atom.Li:  true,
	atom.Br:  true,
}

// PlainText flattens generated markup into text with one line per block element.
func PlainText(fragment string) string {
	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return fragment
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && droppedTags[n.DataAtom]:
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Li {
			sb.WriteString("\n• ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.DataAtom] {
			sb.WriteByte('\n')
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
