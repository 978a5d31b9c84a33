package eol

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode"

	"github.com/martinsuchenak/merakilife/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type column int

const (
	colProduct column = iota
	colAnnouncement
	colEndOfSale
	colEndOfSupport
)

// header prefixes after lowercasing and dropping non-letters
var columnPrefixes = map[column]string{
	colProduct:      "product",
	colAnnouncement: "announcement",
	colEndOfSale:    "endofsale",
	colEndOfSupport: "endofsupport",
}

// ParseTable reads the first table of an EoL page. Links are resolved
// against base when it is non-nil.
func ParseTable(r io.Reader, base *url.URL) ([]model.Announcement, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing EoL page: %w", err)
	}

	table := findFirst(doc, atom.Table)
	if table == nil {
		return nil, ErrNoTable
	}

	rows := tableRows(table)
	if len(rows) == 0 {
		return nil, ErrNoTable
	}

	columns := mapColumns(cells(rows[0]))
	if _, ok := columns[colProduct]; !ok {
		return nil, ErrNoProductColumn
	}

	var records []model.Announcement
	for _, row := range rows[1:] {
		cs := cells(row)
		if len(cs) == 0 {
			continue
		}

		get := func(c column) string {
			idx, ok := columns[c]
			if !ok || idx >= len(cs) {
				return ""
			}
			return text(cs[idx])
		}

		tmpl := model.Announcement{
			AnnouncementDate: ParseDate(get(colAnnouncement)),
			EndOfSale:        ParseDate(get(colEndOfSale)),
			EndOfSupport:     ParseDate(get(colEndOfSupport)),
			UpgradePathURL:   model.JoinLinks(links(row, base)),
		}

		for _, sku := range strings.Split(get(colProduct), ",") {
			sku = strings.TrimSpace(sku)
			key := NormalizeProductKey(sku)
			if key == "" {
				continue
			}
			rec := tmpl
			rec.Product = sku
			rec.Model = key
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

func mapColumns(header []*html.Node) map[column]int {
	columns := make(map[column]int)
	for i, cell := range header {
		name := letters(text(cell))
		for col, prefix := range columnPrefixes {
			if _, seen := columns[col]; seen {
				continue
			}
			if strings.HasPrefix(name, prefix) {
				columns[col] = i
			}
		}
	}
	return columns
}

func letters(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// tableRows returns the rows of table, skipping rows of nested tables
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, c)
			case atom.Table:
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func cells(row *html.Node) []*html.Node {
	var out []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			out = append(out, c)
		}
	}
	return out
}

// text returns the whitespace-collapsed text content of n
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// links collects every distinct href in row, in document order
func links(row *html.Node, base *url.URL) []string {
	var out []string
	seen := make(map[string]struct{})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := resolve(strings.TrimSpace(attr.Val), base)
				if href == "" {
					continue
				}
				if _, dup := seen[href]; !dup {
					seen[href] = struct{}{}
					out = append(out, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(row)
	return out
}

func resolve(href string, base *url.URL) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	return ref.String()
}
