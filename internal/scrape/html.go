package scrape

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Selector is a compiled CSS selector group such as "div.post-content",
// "div#content p" or "table, figure".
type Selector struct {
	raw   string
	group cascadia.SelectorGroup
}

// ParseSelector compiles a CSS selector group.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}

	group, err := cascadia.ParseGroup(s)
	if err != nil {
		return Selector{}, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	return Selector{raw: s, group: group}, nil
}

// MustSelector is ParseSelector for package-level catalogues.
func MustSelector(s string) Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

func (s Selector) String() string {
	return s.raw
}

// Matches reports whether n is an element selected by s. The zero Selector
// matches nothing.
func (s Selector) Matches(n *html.Node) bool {
	if n.Type != html.ElementNode || len(s.group) == 0 {
		return false
	}
	return s.group.Match(n)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findAll returns matching nodes in document order. A matched node's subtree is
// not searched again, so nested containers are not reported twice.
func findAll(root *html.Node, sel Selector) []*html.Node {
	var found []*html.Node
	var f func(*html.Node)

	f = func(n *html.Node) {
		if sel.Matches(n) {
			found = append(found, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}

	f(root)
	return found
}

func findFirst(root *html.Node, sel Selector) *html.Node {
	var found *html.Node
	var f func(*html.Node)

	f = func(n *html.Node) {
		if found != nil {
			return
		}
		if sel.Matches(n) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}

	f(root)
	return found
}

var invisible = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// extractText returns the visible text under n with a space between text nodes.
func extractText(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)

	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		}
		if n.Type == html.ElementNode && invisible[n.Data] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}

	extract(n)
	return sb.String()
}

// removeAll detaches every subtree under root that matches one of the selectors.
func removeAll(root *html.Node, sels []Selector) {
	for _, sel := range sels {
		for _, n := range findAll(root, sel) {
			if n == root || n.Parent == nil {
				continue
			}
			n.Parent.RemoveChild(n)
		}
	}
}

// linkHrefs collects the href of the first <a> inside each node.
func linkHrefs(nodes []*html.Node) []string {
	anchor := MustSelector("a")

	var hrefs []string
	for _, n := range nodes {
		a := n
		if !anchor.Matches(n) {
			a = findFirst(n, anchor)
		}
		if a == nil {
			continue
		}
		if href := strings.TrimSpace(attr(a, "href")); href != "" {
			hrefs = append(hrefs, href)
		}
	}
	return hrefs
}
