package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/models"
	"outlook-email-extractor/internal/textutil"
	"outlook-email-extractor/internal/view"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

var (
	commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	// Inline stylesheet text such as ".x_elementToProof {color: black}" leaks into textContent
	cssRulePattern = regexp.MustCompile(`(?s)\.[a-zA-Z0-9_]+ [a-zA-Z0-9_]*.*?\}`)
	spacePattern   = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// Fields holds the values read from one message view; empty means not found
type Fields struct {
	Subject string
	Sender  string
	Date    string
	Content string
	// Fallback is set when Content comes from the whole main region rather than a body selector
	Fallback bool
}

// Extractor reads email fields from a snapshot using the configured selector chains
type Extractor struct {
	subject chain
	sender  chain
	date    chain
	content chain

	fallback    []goquery.Matcher
	fallbackMax int
	minContent  int

	probes []probe
}

// New compiles the selector lists of cfg. It fails on the first invalid selector.
func New(cfg models.ExtractorConfig) (*Extractor, error) {
	e := &Extractor{
		fallbackMax: cfg.FallbackMaxLength,
		minContent:  cfg.MinContentLength,
	}

	subject, err := buildStrategies(cfg.SubjectSelectors, TextStrategy)
	if err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	sender, err := buildStrategies(cfg.SenderSelectors, TextStrategy)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	date, err := buildStrategies(cfg.DateSelectors, func(s string) (Strategy, error) {
		return TextOrAttrStrategy(s, "datetime")
	})
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	content, err := buildStrategies(cfg.ContentSelectors, TextStrategy)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}

	subjectNoise := cfg.SubjectNoise
	senderNoise := cfg.SenderNoise
	contentNoise := cfg.ContentNoise

	e.subject = chain{field: "subject", strategies: subject, accept: func(s string) (string, bool) {
		return s, !textutil.ContainsAny(s, subjectNoise)
	}}
	e.sender = chain{field: "sender", strategies: sender, accept: func(s string) (string, bool) {
		return s, !textutil.ContainsAny(s, senderNoise)
	}}
	e.date = chain{field: "date", strategies: date, accept: func(s string) (string, bool) {
		return s, true
	}}
	e.content = chain{field: "content", strategies: content, accept: func(s string) (string, bool) {
		if textutil.Len(s) <= e.minContent || textutil.ContainsAny(s, contentNoise) {
			return "", false
		}
		cleaned := SanitizeContent(s)
		return cleaned, textutil.Len(cleaned) > e.minContent
	}}

	for _, s := range cfg.FallbackSelectors {
		m, err := compile(s)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		e.fallback = append(e.fallback, m)
	}

	for _, s := range cfg.DebugSelectors {
		m, err := compile(s)
		if err != nil {
			return nil, fmt.Errorf("debug: %w", err)
		}
		e.probes = append(e.probes, probe{selector: s, matcher: m})
	}

	return e, nil
}

// SanitizeContent removes comment and stylesheet fragments and collapses whitespace
func SanitizeContent(s string) string {
	s = commentPattern.ReplaceAllString(s, "")
	s = cssRulePattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Extract reads subject, sender, date and content from the snapshot.
// It never fails: fields that cannot be found are left empty.
func (e *Extractor) Extract(snap *view.Snapshot) Fields {
	root := snap.Doc.Selection
	locallog := logging.Log.WithField("location", snap.Location)

	var f Fields
	for _, target := range []struct {
		c   chain
		dst *string
	}{
		{e.subject, &f.Subject},
		{e.sender, &f.Sender},
		{e.date, &f.Date},
		{e.content, &f.Content},
	} {
		value, strategy := target.c.resolve(root)
		if value == "" {
			continue
		}
		*target.dst = value
		locallog.WithFields(logrus.Fields{"field": target.c.field, "selector": strategy}).Debug("Field found")
	}

	if f.Content == "" {
		if content, ok := e.fallbackContent(root); ok {
			f.Content = content
			f.Fallback = true
			locallog.Debug("Fallback content used")
		}
	}

	return f
}

// fallbackContent takes the text of the first existing main region, truncated. The text is
// normalized before truncation since NFC can lengthen it.
func (e *Extractor) fallbackContent(root *goquery.Selection) (string, bool) {
	for _, m := range e.fallback {
		region := root.FindMatcher(m).First()
		if region.Length() == 0 {
			continue
		}
		text := textutil.Normalize(region.Text())
		if textutil.Len(text) <= e.minContent {
			return "", false
		}
		return textutil.Truncate(text, e.fallbackMax), true
	}
	return "", false
}
