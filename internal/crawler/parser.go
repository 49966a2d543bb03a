package crawler

import (
	"io"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

// Parser extracts words, links and the title from HTML content.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Text nodes come out already separated from markup
//  3. Script and style bodies can be skipped by element name
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL

	// ignoredWords drops words that fully match one of its patterns.
	ignoredWords *IgnoreFilter
}

// ParseResult contains the information extracted from one HTML page.
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// WordCounts maps each normalized word to its number of occurrences.
	WordCounts map[string]int

	// Links contains resolved href values of <a> elements, in document order.
	// Duplicates are kept; the crawler deduplicates through its registry.
	Links []string
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string, ignoredWords *IgnoreFilter) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u, ignoredWords: ignoredWords}, nil
}

// Parse parses HTML content and extracts words and links.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		WordCounts: make(map[string]int),
		Links:      make([]string, 0),
	}

	// cases.Caser keeps state between calls and must not be shared across
	// goroutines, so each parse gets its own.
	folder := cases.Fold()

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if href := getAttr(n, "href"); href != "" {
					if resolved := p.resolveURL(href); resolved != "" {
						result.Links = append(result.Links, resolved)
					}
				}
			}
		case html.TextNode:
			p.countWords(n.Data, folder, result.WordCounts)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return result, nil
}

// countWords splits text on white space, normalizes each token and adds it
// to counts.
func (p *Parser) countWords(text string, folder cases.Caser, counts map[string]int) {
	for _, token := range strings.Fields(text) {
		word := normalizeWord(token, folder)
		if word == "" || p.ignoredWords.Match(word) {
			continue
		}
		counts[word]++
	}
}

// normalizeWord removes every rune that is not a letter or digit and folds
// the case of the rest.
func normalizeWord(token string, folder cases.Caser) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, token)
	if cleaned == "" {
		return ""
	}
	return folder.String(cleaned)
}

// resolveURL resolves a relative URL against the base URL.
// Non-navigational links and bare fragments resolve to "".
// The fragment is removed because it does not change the page content.
// A file link is only followed from a file page, so a remote page can never
// point the crawler at the local disk.
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := p.baseURL.ResolveReference(u)
	if strings.EqualFold(resolved.Scheme, "file") && !strings.EqualFold(p.baseURL.Scheme, "file") {
		return ""
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
