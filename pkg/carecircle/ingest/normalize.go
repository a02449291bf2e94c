package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// Boilerplate left behind by site extractors: ads, cookie banners, copyright
// footers, contact prompts, newsletter prompts, share bars, "read more" links
// and outlet attributions. Matched spans are removed; no pattern crosses a
// newline.
var defaultBoilerplate = []string{
	`(?i)quảng cáo[^\n]*`,
	`(?i)cookie.*?chính sách`,
	`(?i)bản quyền.*?\d{4}`,
	`(?i)liên hệ.*?hotline.*?\d+`,
	`(?i)đăng ký.*?nhận tin`,
	`(?i)chia sẻ.*?facebook.*?twitter`,
	`(?i)xem thêm.*?tại đây`,
	`(?i)nguồn.*?theo.*?vnexpress`,
	`(?i)theo.*?báo.*?điện tử`,
}

var (
	markupPattern   = regexp.MustCompile(`<(?:[a-zA-Z][a-zA-Z0-9]*|/[a-zA-Z][a-zA-Z0-9]*|!--)[^<]*>`)
	numberRange     = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
	percentSpacing  = regexp.MustCompile(`(\d+)\s*%`)
	unitSpacing     = regexp.MustCompile(`(\d+)\s*(mg|ml|kg|cm)`)
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	lineEdgeSpace   = regexp.MustCompile(`(?m)^ +| +$`)
	extraNewlines   = regexp.MustCompile(`\n\s*\n\s*\n`)
)

var punctuationReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u00a0", " ", "\u2002", " ", "\u2003", " ", "\u2009", " ",
	"\u202f", " ", "\u3000", " ",
	"\u200b", "", "\ufeff", "",
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`, "\u00ab", `"`, "\u00bb", `"`,
	"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u2032", "'",
	"\u2013", "-", "\u2014", "-", "\u2212", "-",
)

// Normalizer cleans scraped text. It is stateless after construction and
// safe for concurrent use.
type Normalizer struct {
	boilerplate []*regexp.Regexp
}

// NewNormalizer creates a normalizer with the built-in boilerplate patterns
// plus any extra patterns given. Extra patterns are compiled case-insensitive.
func NewNormalizer(extra ...string) (*Normalizer, error) {
	n := &Normalizer{}
	for _, p := range defaultBoilerplate {
		n.boilerplate = append(n.boilerplate, regexp.MustCompile(p))
	}
	for _, p := range extra {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, err
		}
		n.boilerplate = append(n.boilerplate, re)
	}
	return n, nil
}

// Clean runs one cleaning pass over text. The result may still change under
// a second pass when a removal joins two fragments; Pipeline iterates Clean
// to a fixed point.
func (n *Normalizer) Clean(text string) string {
	if text == "" {
		return ""
	}

	if markupPattern.MatchString(text) {
		text = htmlToText(text)
	}

	text = norm.NFC.String(text)
	text = punctuationReplacer.Replace(text)

	for _, re := range n.boilerplate {
		text = re.ReplaceAllString(text, "")
	}

	text = numberRange.ReplaceAllString(text, "$1-$2")
	text = percentSpacing.ReplaceAllString(text, "$1%")
	text = unitSpacing.ReplaceAllString(text, "$1$2")

	text = horizontalSpace.ReplaceAllString(text, " ")
	text = lineEdgeSpace.ReplaceAllString(text, "")
	text = extraNewlines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// htmlToText keeps the text nodes of an HTML fragment. Block elements end a
// line; script, style and noscript content is dropped.
func htmlToText(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			case atom.Br:
				buf.WriteString("\n")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
		if n.Type == html.ElementNode && isBlock(n.DataAtom) {
			buf.WriteString("\n\n")
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Table, atom.Tr,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Article, atom.Section, atom.Blockquote, atom.Header, atom.Footer:
		return true
	}
	return false
}
