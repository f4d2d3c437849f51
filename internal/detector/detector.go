package detector

import (
	"fmt"
	"strings"

	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/models"
	"outlook-email-extractor/internal/view"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/sirupsen/logrus"
)

// Detector decides whether a snapshot shows one opened email rather than a list
type Detector struct {
	main     goquery.Matcher
	content  goquery.Matcher
	patterns []string
}

// New compiles the detector selectors
func New(cfg models.DetectorConfig) (*Detector, error) {
	main, err := cascadia.Compile(cfg.MainSelector)
	if err != nil {
		return nil, fmt.Errorf("invalid main selector %q: %w", cfg.MainSelector, err)
	}
	content, err := cascadia.Compile(cfg.ContentSelector)
	if err != nil {
		return nil, fmt.Errorf("invalid content selector %q: %w", cfg.ContentSelector, err)
	}
	return &Detector{
		main:     main,
		content:  content,
		patterns: cfg.LocationPatterns,
	}, nil
}

// IsSingleEmailView requires all three signals: a main region, a text region and a
// location that points at a message. List views often carry one or two of them.
func (d *Detector) IsSingleEmailView(snap *view.Snapshot) bool {
	root := snap.Doc.Selection

	hasMain := root.FindMatcher(d.main).Length() > 0
	hasContent := root.FindMatcher(d.content).Length() > 0
	inEmailView := d.matchesLocation(snap.Location)

	logging.Log.WithFields(logrus.Fields{
		"location":     snap.Location,
		"main_content": hasMain,
		"text_content": hasContent,
		"email_view":   inEmailView,
	}).Debug("Email detection")

	return hasMain && hasContent && inEmailView
}

func (d *Detector) matchesLocation(location string) bool {
	for _, p := range d.patterns {
		if p != "" && strings.Contains(location, p) {
			return true
		}
	}
	return false
}
