package translate

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

var (
	entityRef  = regexp.MustCompile(`&(?:amp|gt|lt);`)
	// the escaping marker may sit in front of '#'
	entityTail = regexp.MustCompile(`^\a?#?[0-9A-Za-z]+;`)
)

// newConverter returns the CommonMark converter used for everything the
// rules leave alone.
func newConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			&plainText{},
		),
	)
}

// plainText undoes the entity encoding the base plugin applies to text
// nodes, so "Q&A" stays "Q&A". Characters that would read as a tag, an
// entity or a blockquote marker stay encoded.
type plainText struct{}

func (p *plainText) Name() string {
	return "plain-text"
}

func (p *plainText) Init(conv *converter.Converter) error {
	conv.Register.TextTransformer(p.decode, converter.PriorityLate)
	return nil
}

func (p *plainText) decode(_ converter.Context, content string) string {
	return decodeEntities(content)
}

func decodeEntities(content string) string {
	matches := entityRef.FindAllStringIndex(content, -1)
	if matches == nil {
		return content
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(content[last:m[0]])
		last = m[1]
		switch content[m[0]:m[1]] {
		case "&amp;":
			if entityTail.MatchString(content[m[1]:]) {
				sb.WriteString("&amp;")
			} else {
				sb.WriteByte('&')
			}
		case "&gt;":
			if startsLine(content[:m[0]]) {
				sb.WriteString("&gt;")
			} else {
				sb.WriteByte('>')
			}
		default:
			if m[1] < len(content) && opensTag(content[m[1]]) {
				sb.WriteString("&lt;")
			} else {
				sb.WriteByte('<')
			}
		}
	}
	sb.WriteString(content[last:])
	return sb.String()
}

func opensTag(c byte) bool {
	return c == '/' || c == '!' || c == '?' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// startsLine reports whether only blanks precede the end of before on its line.
func startsLine(before string) bool {
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	return strings.TrimSpace(before) == ""
}
