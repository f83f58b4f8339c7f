package reference

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const notStartedSuffix = " (not yet started)"

// ParseStateAbbreviations reads the first <tbody> of an HTML page whose rows
// hold a full state name and its postal abbreviation, returning
// abbreviation → name.
func ParseStateAbbreviations(r io.Reader) (map[string]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	tbody := findFirst(doc, atom.Tbody)
	if tbody == nil {
		return nil, errors.New("no <tbody> in state abbreviation page")
	}

	out := make(map[string]string)
	for tr := range children(tbody, atom.Tr) {
		var cells []string
		for td := range children(tr, atom.Td) {
			cells = append(cells, textContent(td))
		}
		if len(cells) < 2 || cells[0] == "" || cells[1] == "" {
			continue
		}
		out[strings.ToUpper(cells[1])] = cells[0]
	}
	if len(out) == 0 {
		return nil, errors.New("state abbreviation table is empty")
	}
	return out, nil
}

// ParseRegions reads census divisions from the first <ul> of the regions page.
// A division is an <li> whose leading text contains "Division"; its name is the
// title of its link and its states are the items of its nested list.
func ParseRegions(r io.Reader) (map[string][]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	list := findFirst(doc, atom.Ul)
	if list == nil {
		return nil, errors.New("no <ul> in regions page")
	}

	out := make(map[string][]string)
	walk(list, func(n *html.Node) {
		if n.DataAtom != atom.Li || !isDivision(n) {
			return
		}
		name := divisionName(n)
		nested := findFirst(n, atom.Ul)
		if name == "" || nested == nil {
			return
		}
		var states []string
		for li := range children(nested, atom.Li) {
			if s := textContent(li); s != "" {
				states = append(states, s)
			}
		}
		out[name] = states
	})
	if len(out) == 0 {
		return nil, errors.New("no divisions in regions page")
	}
	return out, nil
}

func isDivision(li *html.Node) bool {
	first := li.FirstChild
	return first != nil && first.Type == html.TextNode && strings.Contains(first.Data, "Division")
}

func divisionName(li *html.Node) string {
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom != atom.A {
			continue
		}
		name := attr(c, "title")
		if name == "" {
			name = textContent(c)
		}
		return strings.TrimSpace(strings.TrimSuffix(name, notStartedSuffix))
	}
	return ""
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// children yields the direct element children of n with the given tag.
func children(n *html.Node, a atom.Atom) func(func(*html.Node) bool) {
	return func(yield func(*html.Node) bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == a {
				if !yield(c) {
					return
				}
			}
		}
	}
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
