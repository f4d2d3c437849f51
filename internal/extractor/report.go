package extractor

import (
	"strings"

	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/textutil"
	"outlook-email-extractor/internal/view"

	"github.com/PuerkitoBio/goquery"
)

const (
	reportSamples    = 3
	reportSampleSize = 100
)

type probe struct {
	selector string
	matcher  goquery.Matcher
}

// ProbeResult lists how often a debug selector matched and what the first matches contain
type ProbeResult struct {
	Selector string   `json:"selector"`
	Count    int      `json:"count"`
	Samples  []string `json:"samples"`
}

// Report describes a page from the extractor's point of view, for tuning selector lists
type Report struct {
	Location string        `json:"location"`
	Title    string        `json:"title"`
	Probes   []ProbeResult `json:"probes"`
}

// Diagnose runs every debug selector against the snapshot. Selectors without a match are omitted.
func (e *Extractor) Diagnose(snap *view.Snapshot) Report {
	root := snap.Doc.Selection
	report := Report{
		Location: snap.Location,
		Title:    strings.TrimSpace(root.Find("title").First().Text()),
		Probes:   []ProbeResult{},
	}

	for _, p := range e.probes {
		matches := root.FindMatcher(p.matcher)
		if matches.Length() == 0 {
			continue
		}
		result := ProbeResult{Selector: p.selector, Count: matches.Length()}
		matches.EachWithBreak(func(i int, sel *goquery.Selection) bool {
			if i >= reportSamples {
				return false
			}
			result.Samples = append(result.Samples, textutil.Truncate(strings.TrimSpace(sel.Text()), reportSampleSize))
			return true
		})
		report.Probes = append(report.Probes, result)
	}

	return report
}

// LogReport writes the report at debug level
func LogReport(report Report) {
	locallog := logging.Log.WithField("location", report.Location)
	locallog.WithField("title", report.Title).Debug("DOM analysis")
	for _, p := range report.Probes {
		locallog.WithField("selector", p.Selector).
			WithField("count", p.Count).
			WithField("samples", p.Samples).
			Debug("Selector matched")
	}
}
