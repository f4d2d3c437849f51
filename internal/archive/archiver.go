package archive

import (
	"context"
	"errors"
	"fmt"
	"sync"

	imapclient "outlook-email-extractor/internal/imap"
	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/mailformat"
	"outlook-email-extractor/internal/models"
)

// ErrDisabled is returned when archiving was not enabled in the configuration
var ErrDisabled = errors.New("archive disabled")

// Archiver appends captured emails to an IMAP folder, each email at most once until Forget
type Archiver struct {
	newClient func() imapclient.Client
	config    models.ArchiveConfig

	mu       sync.Mutex
	archived map[models.Key]struct{}
}

// NewArchiver creates an Archiver opening a fresh client from newClient for every run
func NewArchiver(newClient func() imapclient.Client, cfg models.ArchiveConfig) *Archiver {
	return &Archiver{
		newClient: newClient,
		config:    cfg,
		archived:  make(map[models.Key]struct{}),
	}
}

// Archive appends every email not archived by a previous run to the configured mailbox and
// returns how many were appended. Emails that fail are logged and retried on the next run.
func (a *Archiver) Archive(ctx context.Context, emails []models.CapturedEmail) (int, error) {
	if !a.config.Enabled {
		return 0, ErrDisabled
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var pending []models.CapturedEmail
	for _, e := range emails {
		if _, done := a.archived[e.Key()]; !done {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	client := a.newClient()
	if err := client.Connect(a.config.Imap); err != nil {
		return 0, err
	}
	defer func(client imapclient.Client) {
		_ = client.Close()
	}(client)

	if err := client.Login(a.config.Login, a.config.Password); err != nil {
		return 0, fmt.Errorf("login error: %w", err)
	}

	appended := 0
	for _, e := range pending {
		if err := ctx.Err(); err != nil {
			return appended, err
		}

		locallog := logging.Log.WithField("subject", e.Subject)

		raw, err := mailformat.Compose(e)
		if err != nil {
			locallog.WithError(err).Error("Error composing message")
			continue
		}

		if err := client.Append(a.config.MailBox, mailformat.CaptureTime(e), raw); err != nil {
			locallog.WithError(err).Error("Error archiving email")
			continue
		}

		a.archived[e.Key()] = struct{}{}
		appended++
	}

	logging.Log.WithField("mailbox", a.config.MailBox).Infof("Archived %d of %d emails", appended, len(pending))
	return appended, nil
}

// Forget drops the archive history, so the next run appends every stored email again
func (a *Archiver) Forget() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.archived = make(map[models.Key]struct{})
}
