package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outlook-email-extractor/internal/archive"
	"outlook-email-extractor/internal/capture"
	"outlook-email-extractor/internal/detector"
	"outlook-email-extractor/internal/export"
	"outlook-email-extractor/internal/extractor"
	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/models"
	"outlook-email-extractor/internal/monitor"
	"outlook-email-extractor/internal/view"
)

// attemptTimeout bounds one monitor-triggered capture
const attemptTimeout = 10 * time.Second

// ErrArchiveUnavailable is returned by Archive when no archiver was configured
var ErrArchiveUnavailable = errors.New("archive not configured")

// ErrNoNotifier is returned by Start when the view source cannot report changes
var ErrNoNotifier = errors.New("monitoring needs a live browser session")

// Result describes one manual capture attempt
type Result struct {
	Outcome models.CaptureOutcome `json:"outcome"`
	Email   *models.CapturedEmail `json:"email,omitempty"`
	Total   int                   `json:"total"`
}

// Session owns the capture state of one webmail view: store, pipeline and monitor.
// It starts empty and inactive.
type Session struct {
	source    view.Source
	extractor *extractor.Extractor
	store     *capture.Store
	pipeline  *capture.Pipeline
	monitor   *monitor.Monitor
	saver     export.Saver
	archiver  *archive.Archiver
	export    models.ExportConfig
	now       func() time.Time
}

// Options carries the collaborators a Session does not build itself
type Options struct {
	Source   view.Source
	Notifier monitor.Notifier
	Saver    export.Saver
	Archiver *archive.Archiver // nil when archiving is disabled
}

// New builds a Session from the configuration
func New(cfg *models.Config, opts Options) (*Session, error) {
	det, err := detector.New(cfg.Detector)
	if err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}
	ext, err := extractor.New(cfg.Extractor)
	if err != nil {
		return nil, fmt.Errorf("extractor: %w", err)
	}

	store := capture.NewStore()
	s := &Session{
		source:    opts.Source,
		extractor: ext,
		store:     store,
		pipeline:  capture.NewPipeline(opts.Source, det, ext, store),
		saver:     opts.Saver,
		archiver:  opts.Archiver,
		export:    cfg.Export,
		now:       time.Now,
	}
	if opts.Notifier != nil {
		s.monitor = monitor.New(opts.Notifier, s.attempt, cfg.Monitor)
	}
	return s, nil
}

// attempt is the monitor's fire-and-forget capture
func (s *Session) attempt() {
	ctx, cancel := context.WithTimeout(context.Background(), attemptTimeout)
	defer cancel()

	if _, _, err := s.pipeline.Capture(ctx); err != nil {
		logging.Log.WithError(err).Warn("Capture attempt failed")
	}
}

// Start begins monitoring view changes
func (s *Session) Start() error {
	if s.monitor == nil {
		return ErrNoNotifier
	}
	return s.monitor.Start()
}

// Stop ends monitoring; stored emails are kept
func (s *Session) Stop() {
	if s.monitor != nil {
		s.monitor.Stop()
	}
}

// CanMonitor reports whether Start can watch the view, i.e. a notifier was given
func (s *Session) CanMonitor() bool {
	return s.monitor != nil
}

// Monitoring reports whether view changes trigger captures
func (s *Session) Monitoring() bool {
	return s.monitor != nil && s.monitor.Active()
}

// Show returns the stored emails in capture order
func (s *Session) Show() []models.CapturedEmail {
	return s.store.List()
}

// Count returns the number of stored emails
func (s *Session) Count() int {
	return s.store.Len()
}

// OnCapture registers fn for every newly stored email
func (s *Session) OnCapture(fn func(models.CapturedEmail)) {
	s.store.OnAppend(fn)
}

// Capture tries to store the email currently shown
func (s *Session) Capture(ctx context.Context) (Result, error) {
	email, outcome, err := s.pipeline.Capture(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: outcome, Email: email, Total: s.store.Len()}, nil
}

// Debug enables diagnostic logging and analyses the current view
func (s *Session) Debug(ctx context.Context) (extractor.Report, error) {
	logging.SetDebug(true)
	logging.Log.Info("Debug mode enabled")

	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return extractor.Report{}, fmt.Errorf("snapshot: %w", err)
	}
	report := s.extractor.Diagnose(snap)
	extractor.LogReport(report)
	return report, nil
}

// Clear drops every stored email and returns how many were dropped
func (s *Session) Clear() int {
	n := s.store.Clear()
	if s.archiver != nil {
		s.archiver.Forget()
	}
	logging.Log.WithField("cleared", n).Info("All saved emails cleared")
	return n
}

// Render serializes the store and names the file it should be saved as
func (s *Session) Render(format export.Format) ([]byte, string, error) {
	data, err := export.Render(format, s.store.List(), s.export.CSVContentLimit)
	if err != nil {
		return nil, "", err
	}
	return data, export.Filename(s.export.FilePrefix, s.now(), format), nil
}

// Export renders the store and hands it to the saver. Formats that are not written for an
// empty store return export.ErrNothingToExport.
func (s *Session) Export(format export.Format) (string, error) {
	data, name, err := s.Render(format)
	if err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			logging.Log.WithField("format", format).Info("No emails to export")
		}
		return "", err
	}

	path, err := s.saver.Save(name, data)
	if err != nil {
		return "", err
	}
	logging.Log.WithField("path", path).WithField("count", s.store.Len()).Info("Emails exported")
	return path, nil
}

// Archive appends stored emails to the configured IMAP folder
func (s *Session) Archive(ctx context.Context) (int, error) {
	if s.archiver == nil {
		return 0, ErrArchiveUnavailable
	}
	return s.archiver.Archive(ctx, s.store.List())
}
