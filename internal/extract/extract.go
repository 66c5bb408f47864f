// Package extract pulls text out of HTML response bodies.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxBodyBytes caps how much of a body is handed to the HTML parser.
const MaxBodyBytes = 1 << 20 // 1 MiB

// Select returns the trimmed text of every node matching selector, in document order.
// Nodes whose text is empty after trimming are skipped.
func Select(body []byte, selector string) ([]string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, errors.New("selector is empty")
	}

	doc, err := parse(body)
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find(selector).Each(func(_ int, node *goquery.Selection) {
		if text := strings.TrimSpace(node.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out, nil
}

// Title returns the og:title of the page, falling back to <title>.
func Title(body []byte) string {
	doc, err := parse(body)
	if err != nil {
		return ""
	}

	return firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		doc.Find("title").First().Text(),
	)
}

func parse(body []byte) (*goquery.Document, error) {
	if len(body) > MaxBodyBytes {
		body = body[:MaxBodyBytes]
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func metaContent(doc *goquery.Document, sel string) string {
	if node := doc.Find(sel).First(); node.Length() > 0 {
		if val, ok := node.Attr("content"); ok {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
