package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"outlook-email-extractor/internal/archive"
	"outlook-email-extractor/internal/export"
	imapclient "outlook-email-extractor/internal/imap"
	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/models"
	"outlook-email-extractor/internal/monitor"
	"outlook-email-extractor/internal/view"
)

const messageURL = "https://outlook.office.com/mail/inbox/id/AAMkAGI2"

const openedEmail = `<html><head><title>Mail</title></head><body><div role="main">
	<div class="allowTextSelection" role="heading">Delivery note</div>
	<span aria-label="From">Carrier &lt;noreply@carrier.example&gt;</span>
	<div class="allowTextSelection">Your parcel left our depot this morning and arrives tomorrow between 9 and 12.</div>
</div></body></html>`

type MockSource struct {
	mu   sync.Mutex
	HTML string
}

func (m *MockSource) Snapshot(ctx context.Context) (*view.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return view.ParseString(m.HTML, messageURL)
}

type MockNotifier struct {
	mu      sync.Mutex
	handler func(monitor.Signal)
}

func (m *MockNotifier) Subscribe(handler func(monitor.Signal)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
	return func() {}, nil
}

type MemorySaver struct {
	Files map[string][]byte
}

func (m *MemorySaver) Save(name string, data []byte) (string, error) {
	if m.Files == nil {
		m.Files = make(map[string][]byte)
	}
	m.Files[name] = data
	return "mem://" + name, nil
}

type MockIMAP struct {
	appended int
}

func (m *MockIMAP) Connect(server string) error       { return nil }
func (m *MockIMAP) Login(user, password string) error { return nil }
func (m *MockIMAP) Close() error                      { return nil }
func (m *MockIMAP) Append(mailbox string, date time.Time, message []byte) error {
	m.appended++
	return nil
}

func newSession(t *testing.T, src view.Source, opts Options) (*Session, *MemorySaver) {
	t.Helper()

	cfg := models.DefaultConfig()
	cfg.Monitor = models.MonitorConfig{
		InitialDelay:  5 * time.Millisecond,
		MutationDelay: 5 * time.Millisecond,
		ClickDelay:    5 * time.Millisecond,
	}

	saver := &MemorySaver{}
	opts.Source = src
	opts.Saver = saver

	s, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s, saver
}

func TestSession_CaptureAndShow(t *testing.T) {
	s, _ := newSession(t, &MockSource{HTML: openedEmail}, Options{})

	res, err := s.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	if res.Outcome != models.OutcomeCaptured || res.Total != 1 {
		t.Fatalf("Unexpected result %+v", res)
	}
	if res.Email.Subject != "Delivery note" || res.Email.Sender != "Carrier <noreply@carrier.example>" {
		t.Errorf("Unexpected email %+v", res.Email)
	}

	res, err = s.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	if res.Outcome != models.OutcomeDuplicate || res.Total != 1 {
		t.Errorf("Expected duplicate with 1 stored, got %+v", res)
	}

	if shown := s.Show(); len(shown) != 1 || shown[0].URL != messageURL {
		t.Errorf("Unexpected Show() result %+v", shown)
	}
}

func TestSession_ExportAndClear(t *testing.T) {
	s, saver := newSession(t, &MockSource{HTML: openedEmail}, Options{})

	if _, err := s.Export(export.FormatCSV); !errors.Is(err, export.ErrNothingToExport) {
		t.Errorf("Expected ErrNothingToExport for an empty CSV export, got %v", err)
	}
	if len(saver.Files) != 0 {
		t.Errorf("Expected nothing to be saved, got %v", saver.Files)
	}

	path, err := s.Export(export.FormatJSON)
	if err != nil {
		t.Fatalf("Export(json) error: %v", err)
	}
	if path != "mem://outlook_emails_2024-05-01.json" || string(saver.Files["outlook_emails_2024-05-01.json"]) != "[]" {
		t.Errorf("Unexpected empty JSON export %s: %q", path, saver.Files["outlook_emails_2024-05-01.json"])
	}

	if _, err := s.Capture(context.Background()); err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	if _, err := s.Export(export.FormatCSV); err != nil {
		t.Fatalf("Export(csv) error: %v", err)
	}
	if _, ok := saver.Files["outlook_emails_2024-05-01.csv"]; !ok {
		t.Error("Expected a CSV file to be saved")
	}

	if n := s.Clear(); n != 1 {
		t.Errorf("Clear() = %d, want 1", n)
	}
	if s.Count() != 0 {
		t.Errorf("Expected empty store after Clear(), got %d", s.Count())
	}
}

func TestSession_MonitorCaptures(t *testing.T) {
	notifier := &MockNotifier{}
	s, _ := newSession(t, &MockSource{HTML: openedEmail}, Options{Notifier: notifier})

	captured := make(chan models.CapturedEmail, 4)
	s.OnCapture(func(e models.CapturedEmail) { captured <- e })

	if s.Monitoring() {
		t.Fatal("Expected a new session to be inactive")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !s.Monitoring() {
		t.Error("Expected session to be monitoring")
	}
	if !s.CanMonitor() {
		t.Error("Expected CanMonitor() with a notifier")
	}

	select {
	case e := <-captured:
		if e.Subject != "Delivery note" {
			t.Errorf("Unexpected captured email %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the initial capture")
	}

	s.Stop()
	if s.Monitoring() {
		t.Error("Expected monitoring to stop")
	}
}

func TestSession_StartWithoutNotifier(t *testing.T) {
	s, _ := newSession(t, &MockSource{HTML: openedEmail}, Options{})

	if err := s.Start(); !errors.Is(err, ErrNoNotifier) {
		t.Errorf("Expected ErrNoNotifier, got %v", err)
	}
	if s.CanMonitor() {
		t.Error("Expected CanMonitor() to be false without a notifier")
	}
	s.Stop()
}

func TestSession_Debug(t *testing.T) {
	t.Cleanup(func() { logging.SetDebug(false) })
	s, _ := newSession(t, &MockSource{HTML: openedEmail}, Options{})

	report, err := s.Debug(context.Background())
	if err != nil {
		t.Fatalf("Debug() error: %v", err)
	}
	if !logging.DebugEnabled() {
		t.Error("Expected debug logging to be enabled")
	}
	if report.Location != messageURL || len(report.Probes) == 0 {
		t.Errorf("Unexpected report %+v", report)
	}
}

func TestSession_Archive(t *testing.T) {
	s, _ := newSession(t, &MockSource{HTML: openedEmail}, Options{})
	if _, err := s.Archive(context.Background()); !errors.Is(err, ErrArchiveUnavailable) {
		t.Errorf("Expected ErrArchiveUnavailable, got %v", err)
	}

	client := &MockIMAP{}
	archiver := archive.NewArchiver(func() imapclient.Client { return client }, models.ArchiveConfig{
		Enabled: true,
		Imap:    "imap.test.com:993",
		MailBox: "Captured",
	})
	s, _ = newSession(t, &MockSource{HTML: openedEmail}, Options{Archiver: archiver})

	if _, err := s.Capture(context.Background()); err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	n, err := s.Archive(context.Background())
	if err != nil || n != 1 || client.appended != 1 {
		t.Errorf("Archive() = %d, %v (appended %d)", n, err, client.appended)
	}
}
