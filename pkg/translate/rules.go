package translate

import (
	"bytes"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Rule overrides the default conversion of the elements it matches.
// Replace receives the converted content of the node's children.
type Rule struct {
	Name    string
	Match   func(n *html.Node) bool
	Replace func(content string, n *html.Node) string
}

// DefaultRules returns the built-in rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "tweet",
			Match: func(n *html.Node) bool {
				return isElement(n, "blockquote") && hasClass(n, "twitter-tweet")
			},
			Replace: func(_ string, n *html.Node) string {
				return "\n\n" + outerHTML(n)
			},
		},
		{
			Name: "codepen",
			Match: func(n *html.Node) bool {
				return (isElement(n, "p") || isElement(n, "div")) &&
					attr(n, "data-slug-hash") != "" && hasClass(n, "codepen")
			},
			Replace: func(_ string, n *html.Node) string {
				return "\n\n" + outerHTML(n)
			},
		},
		{
			Name:  "script",
			Match: func(n *html.Node) bool { return isElement(n, "script") },
			Replace: func(_ string, n *html.Node) string {
				// snug with the embed above it
				before := "\n\n"
				if prev := n.PrevSibling; prev != nil && prev.Type != html.TextNode {
					before = "\n"
				}
				return before + strings.ReplaceAll(outerHTML(n), `async=""`, "async") + "\n\n"
			},
		},
		{
			Name:  "iframe",
			Match: func(n *html.Node) bool { return isElement(n, "iframe") },
			Replace: func(_ string, n *html.Node) string {
				out := strings.NewReplacer(
					`allowfullscreen=""`, "allowfullscreen",
					`allowpaymentrequest=""`, "allowpaymentrequest",
				).Replace(outerHTML(n))
				return "\n\n" + out + "\n\n"
			},
		},
		{
			Name:  "figure",
			Match: func(n *html.Node) bool { return isElement(n, "figure") },
			Replace: func(content string, n *html.Node) string {
				if !hasDescendant(n, "figcaption") {
					return content
				}
				return "\n\n<figure>\n\n" + content + "\n\n</figure>\n\n"
			},
		},
		{
			Name:  "figcaption",
			Match: func(n *html.Node) bool { return isElement(n, "figcaption") },
			Replace: func(content string, _ *html.Node) string {
				return "\n\n<figcaption>\n\n" + content + "\n\n</figcaption>\n\n"
			},
		},
		{
			Name: "pre",
			Match: func(n *html.Node) bool {
				return isElement(n, "pre") && !hasDescendant(n, "code")
			},
			Replace: func(_ string, n *html.Node) string {
				return "\n\n```" + attr(n, "data-language") + "\n" + textContent(n) + "\n```\n\n"
			},
		},
	}
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func hasDescendant(n *html.Node, tag string) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, tag) || hasDescendant(c, tag) {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func outerHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return textContent(n)
	}
	return buf.String()
}
