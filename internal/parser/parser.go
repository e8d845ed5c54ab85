// Package parser turns fetched HTML bytes into a queryable document.
package parser

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

var (
	ErrEmptyDocument = errors.New("empty document")
	ErrBinaryContent = errors.New("binary content is not markup")
	ErrInvalidXPath  = errors.New("invalid xpath expression")
)

// Document wraps a parsed HTML tree and supports first-match CSS and XPath
// queries. HTML parsing is permissive, so Parse fails only on input that
// plainly isn't markup.
type Document struct {
	doc  *goquery.Document
	root *html.Node
}

// Parse builds a Document from raw HTML bytes.
func Parse(body []byte) (*Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyDocument
	}
	// NUL bytes near the start mean we fetched an image, a PDF, or similar.
	probe := body
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	if bytes.IndexByte(probe, 0x00) >= 0 {
		return nil, ErrBinaryContent
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	return &Document{
		doc:  goquery.NewDocumentFromNode(root),
		root: root,
	}, nil
}

// FirstText returns the trimmed text content of the first element matching
// the CSS selector, in document order. Empty string when nothing matches.
func (d *Document) FirstText(selector string) string {
	return strings.TrimSpace(d.doc.Find(selector).First().Text())
}

// FirstAttr returns the value of attr on the first element matching the
// CSS selector.
func (d *Document) FirstAttr(selector, attr string) string {
	val, _ := d.doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(val)
}

// FirstXPathText returns the trimmed inner text of the first node matching
// the XPath expression. An invalid expression yields ErrInvalidXPath.
func (d *Document) FirstXPathText(expr string) (string, error) {
	node, err := htmlquery.Query(d.root, expr)
	if err != nil {
		return "", ErrInvalidXPath
	}
	if node == nil {
		return "", nil
	}
	return strings.TrimSpace(htmlquery.InnerText(node)), nil
}
