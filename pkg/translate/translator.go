// Package translate converts the HTML body of a post into Markdown.
//
// Conversion runs in two passes. A text pass rewrites the raw HTML (paragraph
// spacing, image references, the "more" separator, code languages, page
// builder shortcodes). A tree pass then parses the fragment, lets the rules
// claim the elements they know how to render, and hands everything else to
// html-to-markdown.
package translate

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aretw0/wxrmd/pkg/core"
	"github.com/aretw0/wxrmd/pkg/layout"
)

var (
	doubleNewline  = regexp.MustCompile(`(\r?\n){2}`)
	imageSource    = regexp.MustCompile(`(?i)(<img[^>]*src=")[^"]*?([^/"]+\.(?:gif|jpe?g|png|webp))("[^>]*>)`)
	moreComment    = regexp.MustCompile(`<(!--more( .*)?--)>`)
	codeLanguage   = regexp.MustCompile(`(<!-- wp:\S+ \{"language":\s*"([^"]+)"[^}]*\} -->\r?\n<pre)(\s|>)`)
	builderTags    = regexp.MustCompile(`\[/?et_pb_(section|row|column|text|image)[^\]]*]`)
	moreSeparator  = regexp.MustCompile(`<!--more( [^>]*)?-->`)
	extraNewlines  = regexp.MustCompile(`\n{3,}`)
	listMarkerGaps = regexp.MustCompile(`(?m)^([ \t]*)(-|\d+\.) {2,}`)
)

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger used to report degraded conversions.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		t.logger = logger
	}
}

// WithRules adds rules that take priority over the built-in ones.
func WithRules(rules ...Rule) Option {
	return func(t *Translator) {
		t.rules = append(append([]Rule{}, rules...), t.rules...)
	}
}

// Translator turns post bodies into Markdown. It is safe for concurrent use
// once built.
type Translator struct {
	cfg    core.Config
	rules  []Rule
	logger *slog.Logger
	md     *converter.Converter
}

// New builds a Translator for one run.
func New(cfg core.Config, opts ...Option) *Translator {
	t := &Translator{
		cfg:   cfg,
		rules: DefaultRules(),
		md:    newConverter(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t
}

// Translate returns the Markdown body of p. It never fails: when the tree
// pass errors, the text content of the body is returned instead.
func (t *Translator) Translate(p *core.Post) string {
	content := t.preprocess(p)

	root, err := parseFragment(content)
	if err != nil {
		t.logger.Warn("post body could not be parsed", "id", p.ID, "error", err)
		return strings.TrimSpace(content)
	}

	md, err := t.convert(root)
	if err != nil {
		t.logger.Warn("post body converted as plain text", "id", p.ID, "error", err)
		if fallback, perr := parseFragment(content); perr == nil {
			return strings.TrimSpace(textContent(fallback))
		}
		return strings.TrimSpace(content)
	}
	return md
}

func (t *Translator) preprocess(p *core.Post) string {
	content := p.Item.Content()

	// an empty div keeps adjacent paragraphs apart without touching <pre> contents
	content = doubleNewline.ReplaceAllString(content, "\n<div></div>\n")

	if t.cfg.SaveScrapedImages {
		dir := strings.ReplaceAll(layout.AssetDir(p, t.cfg), "$", "$$")
		content = imageSource.ReplaceAllString(content, "${1}"+dir+"/${2}${3}")
	}

	// only the first separator survives, as literal text
	if m := moreComment.FindStringSubmatchIndex(content); m != nil {
		content = content[:m[0]] + "&lt;" + content[m[2]:m[3]] + "&gt;" + content[m[1]:]
	}

	content = codeLanguage.ReplaceAllString(content, `${1} data-language="${2}"${3}`)
	return builderTags.ReplaceAllString(content, "")
}

func parseFragment(content string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

type replacement struct {
	node   *html.Node
	output string
}

// convert renders the children of root. Elements claimed by a rule are
// swapped for placeholder tokens so the converter leaves them alone.
func (t *Translator) convert(root *html.Node) (string, error) {
	var (
		claimed  []replacement
		comments []*html.Node
		texts    []*html.Node
	)

	// rules see the untouched tree, so nothing is mutated while walking
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.CommentNode:
				comments = append(comments, c)
				continue
			case html.TextNode:
				if moreSeparator.MatchString(c.Data) {
					texts = append(texts, c)
				}
				continue
			case html.ElementNode:
				if rule, ok := t.match(c); ok {
					content, err := t.convert(cloneChildren(c))
					if err != nil {
						return fmt.Errorf("rule %s: %w", rule.Name, err)
					}
					claimed = append(claimed, replacement{node: c, output: rule.Replace(content, c)})
					continue
				}
			}
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return "", err
	}

	// tokens carry a per-call nonce so body text can never collide with them
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	var pairs []string
	token := func(output string) string {
		tok := fmt.Sprintf("WXRMD%sP%dE", nonce, len(pairs)/2)
		pairs = append(pairs, tok, output)
		return tok
	}

	for _, r := range claimed {
		placeholder := &html.Node{Type: html.TextNode, Data: token(r.output)}
		r.node.Parent.InsertBefore(placeholder, r.node)
		r.node.Parent.RemoveChild(r.node)
	}
	for _, c := range comments {
		c.Parent.RemoveChild(c)
	}
	for _, c := range texts {
		c.Data = moreSeparator.ReplaceAllStringFunc(c.Data, token)
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render fragment: %w", err)
		}
	}

	md, err := t.md.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	if len(pairs) > 0 {
		md = strings.NewReplacer(pairs...).Replace(md)
	}
	return tidy(md), nil
}

func (t *Translator) match(n *html.Node) (Rule, bool) {
	for _, r := range t.rules {
		if r.Match(n) {
			return r, true
		}
	}
	return Rule{}, false
}

func tidy(md string) string {
	md = extraNewlines.ReplaceAllString(md, "\n\n")
	md = strings.TrimSpace(md)
	return listMarkerGaps.ReplaceAllString(md, "${1}${2} ")
}

// cloneChildren returns a detached container holding deep copies of the
// children of n.
func cloneChildren(n *html.Node) *html.Node {
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		root.AppendChild(cloneNode(c))
	}
	return root
}

func cloneNode(n *html.Node) *html.Node {
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(cloneNode(c))
	}
	return out
}
