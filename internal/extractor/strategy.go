package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Lookup reads one candidate value from the page. It returns false when nothing was found.
type Lookup func(root *goquery.Selection) (string, bool)

// Strategy is a named Lookup; strategies of a field are tried in order
type Strategy struct {
	Name   string
	Lookup Lookup
}

// compile turns a CSS selector into a matcher, rejecting selectors cascadia cannot parse
func compile(selector string) (goquery.Matcher, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return m, nil
}

// TextStrategy returns the trimmed text of the first element matching selector
func TextStrategy(selector string) (Strategy, error) {
	m, err := compile(selector)
	if err != nil {
		return Strategy{}, err
	}
	return Strategy{
		Name: selector,
		Lookup: func(root *goquery.Selection) (string, bool) {
			sel := root.FindMatcher(m).First()
			if sel.Length() == 0 {
				return "", false
			}
			text := strings.TrimSpace(sel.Text())
			return text, text != ""
		},
	}, nil
}

// TextOrAttrStrategy is TextStrategy falling back to attr when the element has no text
func TextOrAttrStrategy(selector, attr string) (Strategy, error) {
	m, err := compile(selector)
	if err != nil {
		return Strategy{}, err
	}
	return Strategy{
		Name: selector,
		Lookup: func(root *goquery.Selection) (string, bool) {
			sel := root.FindMatcher(m).First()
			if sel.Length() == 0 {
				return "", false
			}
			if text := strings.TrimSpace(sel.Text()); text != "" {
				return text, true
			}
			val, _ := sel.Attr(attr)
			val = strings.TrimSpace(val)
			return val, val != ""
		},
	}, nil
}

func buildStrategies(selectors []string, build func(string) (Strategy, error)) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(selectors))
	for _, s := range selectors {
		st, err := build(s)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, st)
	}
	return strategies, nil
}

// chain resolves one field: the first strategy whose value passes accept wins
type chain struct {
	field      string
	strategies []Strategy
	accept     func(string) (string, bool)
}

func (c chain) resolve(root *goquery.Selection) (value, strategy string) {
	for _, st := range c.strategies {
		raw, ok := st.Lookup(root)
		if !ok {
			continue
		}
		if v, ok := c.accept(raw); ok {
			return v, st.Name
		}
	}
	return "", ""
}
