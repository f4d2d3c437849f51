package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"outlook-email-extractor/internal/detector"
	"outlook-email-extractor/internal/extractor"
	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/models"
	"outlook-email-extractor/internal/textutil"
	"outlook-email-extractor/internal/view"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Pipeline turns the current view into a stored email: detect, extract, normalize, dedup, append
type Pipeline struct {
	source    view.Source
	detector  *detector.Detector
	extractor *extractor.Extractor
	store     *Store
	now       func() time.Time

	// views are read one at a time, whatever goroutine triggered the attempt
	mu sync.Mutex
}

// NewPipeline creates a Pipeline reading snapshots from source and appending to store
func NewPipeline(source view.Source, det *detector.Detector, ext *extractor.Extractor, store *Store) *Pipeline {
	return &Pipeline{
		source:    source,
		detector:  det,
		extractor: ext,
		store:     store,
		now:       time.Now,
	}
}

// Capture takes a snapshot of the current view and runs CaptureView on it.
// The only errors are those of the source; a view without a new email is not an error.
func (p *Pipeline) Capture(ctx context.Context) (*models.CapturedEmail, models.CaptureOutcome, error) {
	snap, err := p.source.Snapshot(ctx)
	if err != nil {
		return nil, models.OutcomeNotEmailView, fmt.Errorf("snapshot: %w", err)
	}
	email, outcome := p.CaptureView(snap)
	return email, outcome, nil
}

// CaptureView stores the email shown in snap and returns it; the email is nil for every
// outcome except OutcomeCaptured. Calling it again on an unchanged view never adds a record.
func (p *Pipeline) CaptureView(snap *view.Snapshot) (*models.CapturedEmail, models.CaptureOutcome) {
	locallog := logging.Log.WithField("trace_id", uuid.New().String())

	email, fallback, outcome := p.read(snap, locallog)
	if outcome != models.OutcomeCaptured {
		return nil, outcome
	}

	// Add is atomic on its own; append listeners run here, after the pipeline lock is released.
	if !p.store.Add(email) {
		locallog.WithField("subject", email.Subject).Debug("Duplicate already exists")
		return nil, models.OutcomeDuplicate
	}

	locallog.WithField("subject", email.Subject).
		WithField("fallback_content", fallback).
		WithField("total", p.store.Len()).
		Info("Email saved")
	return &email, models.OutcomeCaptured
}

// read detects and extracts the email of snap. OutcomeCaptured here means the email is
// complete and ready to be stored.
func (p *Pipeline) read(snap *view.Snapshot, locallog *logrus.Entry) (models.CapturedEmail, bool, models.CaptureOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.detector.IsSingleEmailView(snap) {
		locallog.Debug("No email open")
		return models.CapturedEmail{}, false, models.OutcomeNotEmailView
	}

	fields := p.extractor.Extract(snap)
	email := models.CapturedEmail{
		Subject: textutil.Normalize(fields.Subject),
		Sender:  textutil.Normalize(fields.Sender),
		Date:    textutil.Normalize(fields.Date),
		Content: textutil.Normalize(fields.Content),
		URL:     snap.Location,
	}

	if email.Subject == "" || email.Content == "" {
		locallog.WithField("subject_found", email.Subject != "").
			WithField("sender_found", email.Sender != "").
			WithField("content_found", email.Content != "").
			Info("Incomplete email data")
		return models.CapturedEmail{}, false, models.OutcomeIncomplete
	}

	email.Timestamp = p.now().UTC().Format(models.TimestampLayout)
	return email, fields.Fallback, models.OutcomeCaptured
}
