package extract

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// pageDoc is the single-pass parse result for one HTML page.
//
// Design decision: We collect everything in one DOM walk rather than
// exposing per-concern parse methods because:
//  1. Single parsing pass is more efficient
//  2. Related data can be collected together
//  3. Each extraction pass can pick what it needs
type pageDoc struct {
	// Text is the visible text content, script and style bodies excluded.
	Text string

	// Hrefs are the raw anchor href attributes, untouched so that
	// mailto: and tel: references survive.
	Hrefs []string

	// Title is the page title from the <title> tag.
	Title string

	// Meta maps meta tag names (or OpenGraph properties) to content.
	Meta map[string]string

	// Images are image sources resolved against the page URL.
	Images []string
}

// parsePage walks the HTML body once and collects text, anchors, metadata
// and image sources. base resolves relative image URLs; it may be nil.
//
// html.Parse never fails on real-world input (it repairs as it goes), so
// a parse error means the body is not usable as HTML at all.
func parsePage(body []byte, base *url.URL) (*pageDoc, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	result := &pageDoc{
		Hrefs:  make([]string, 0),
		Meta:   make(map[string]string),
		Images: make([]string, 0),
	}

	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				// Invisible content never carries contact signals
				return
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if href := strings.TrimSpace(getAttr(n, "href")); href != "" {
					result.Hrefs = append(result.Hrefs, href)
				}
			case "meta":
				name := getAttr(n, "name")
				if name == "" {
					name = getAttr(n, "property") // OpenGraph uses property
				}
				if content := getAttr(n, "content"); name != "" && content != "" {
					result.Meta[strings.ToLower(name)] = content
				}
			case "img":
				if src := strings.TrimSpace(getAttr(n, "src")); src != "" {
					if resolved := resolveRef(src, base); resolved != "" {
						result.Images = append(result.Images, resolved)
					}
				}
			}
		case html.TextNode:
			text.WriteString(n.Data)
			text.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	result.Text = text.String()
	return result, nil
}

// resolveRef resolves href against base and returns the absolute URL,
// or "" when the reference is unusable.
func resolveRef(href string, base *url.URL) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
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
