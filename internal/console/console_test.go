package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"outlook-email-extractor/internal/export"
	"outlook-email-extractor/internal/extractor"
	"outlook-email-extractor/internal/models"
	"outlook-email-extractor/internal/session"
)

type FakeCommands struct {
	Emails    []models.CapturedEmail
	Result    session.Result
	ExportErr error
	NoMonitor bool
	calls     []string
}

func (f *FakeCommands) Show() []models.CapturedEmail { return f.Emails }
func (f *FakeCommands) Count() int                   { return len(f.Emails) }
func (f *FakeCommands) CanMonitor() bool             { return !f.NoMonitor }

func (f *FakeCommands) Capture(ctx context.Context) (session.Result, error) {
	f.calls = append(f.calls, "capture")
	return f.Result, nil
}

func (f *FakeCommands) Debug(ctx context.Context) (extractor.Report, error) {
	f.calls = append(f.calls, "debug")
	return extractor.Report{
		Location: "https://outlook.office.com/mail/inbox/id/1",
		Title:    "Mail",
		Probes:   []extractor.ProbeResult{{Selector: "h1", Count: 1, Samples: []string{"Hello"}}},
	}, nil
}

func (f *FakeCommands) Export(format export.Format) (string, error) {
	f.calls = append(f.calls, "export:"+string(format))
	if f.ExportErr != nil {
		return "", f.ExportErr
	}
	return "/tmp/outlook_emails." + string(format), nil
}

func (f *FakeCommands) Archive(ctx context.Context) (int, error) {
	f.calls = append(f.calls, "archive")
	return 0, errors.New("archive not configured")
}

func (f *FakeCommands) Clear() int {
	f.calls = append(f.calls, "clear")
	n := len(f.Emails)
	f.Emails = nil
	return n
}

func (f *FakeCommands) Start() error {
	f.calls = append(f.calls, "start")
	return nil
}

func (f *FakeCommands) Stop() {
	f.calls = append(f.calls, "stop")
}

func run(t *testing.T, commands *FakeCommands, input string) string {
	t.Helper()

	var out bytes.Buffer
	if err := New(commands, strings.NewReader(input), &out).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return out.String()
}

func TestRun_BannerAndQuit(t *testing.T) {
	commands := &FakeCommands{Emails: []models.CapturedEmail{{Subject: "A"}}}

	out := run(t, commands, "quit\nclear\n")

	if !strings.Contains(out, "Saved emails: 1") {
		t.Errorf("Expected banner with saved count, got %s", out)
	}
	if len(commands.calls) != 0 {
		t.Errorf("Expected no commands after quit, got %v", commands.calls)
	}
}

func TestRun_BannerWithoutMonitoring(t *testing.T) {
	tests := []struct {
		name      string
		noMonitor bool
		want      string
	}{
		{name: "Live browser", noMonitor: false, want: "Emails are captured automatically"},
		{name: "Saved page", noMonitor: true, want: "Automatic capture is off"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, &FakeCommands{NoMonitor: tt.noMonitor}, "quit\n")
			if !strings.Contains(out, tt.want) {
				t.Errorf("Expected banner to contain %q, got %s", tt.want, out)
			}
		})
	}
}

func TestRun_Dispatch(t *testing.T) {
	commands := &FakeCommands{
		Result: session.Result{
			Outcome: models.OutcomeCaptured,
			Email:   &models.CapturedEmail{Subject: "Invoice"},
			Total:   1,
		},
	}

	out := run(t, commands, "capture\ndebug\njson\nCSV\narchive\nstart\nstop\nclear\nbogus\n")

	want := []string{"capture", "debug", "export:json", "export:csv", "archive", "start", "stop", "clear"}
	if strings.Join(commands.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", commands.calls, want)
	}

	for _, s := range []string{
		"Email captured: Invoice",
		"h1: 1 element(s)",
		"Saved /tmp/outlook_emails.json",
		"Archive failed: archive not configured",
		"Monitoring started",
		"Monitoring stopped",
		`Unknown command "bogus"`,
	} {
		if !strings.Contains(out, s) {
			t.Errorf("Expected output to contain %q, got:\n%s", s, out)
		}
	}
}

func TestRun_NothingToExport(t *testing.T) {
	commands := &FakeCommands{ExportErr: export.ErrNothingToExport}

	out := run(t, commands, "csv\n")

	if !strings.Contains(out, "No emails to export") {
		t.Errorf("Expected nothing-to-export message, got %s", out)
	}
}

func TestRun_CaptureOutcomes(t *testing.T) {
	tests := []struct {
		outcome  models.CaptureOutcome
		expected string
	}{
		{outcome: models.OutcomeNotEmailView, expected: "No email open"},
		{outcome: models.OutcomeIncomplete, expected: "Incomplete email data"},
		{outcome: models.OutcomeDuplicate, expected: "Duplicate detected"},
	}

	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			out := run(t, &FakeCommands{Result: session.Result{Outcome: tt.outcome}}, "capture\n")
			if !strings.Contains(out, tt.expected) {
				t.Errorf("Expected %q in output, got %s", tt.expected, out)
			}
		})
	}
}

func TestRun_Show(t *testing.T) {
	commands := &FakeCommands{Emails: []models.CapturedEmail{{
		Timestamp: "2024-05-01T10:00:00.000Z",
		Subject:   "Invoice",
		Sender:    "Billing",
		Content:   strings.Repeat("z", 200),
	}}}

	out := run(t, commands, "show\n")

	if !strings.Contains(out, "Invoice") || !strings.Contains(out, "Billing") {
		t.Errorf("Expected email row in output, got %s", out)
	}
	if strings.Contains(out, strings.Repeat("z", previewLength+1)) {
		t.Error("Expected content preview to be truncated")
	}

	if out := run(t, &FakeCommands{}, "show\n"); !strings.Contains(out, "No saved emails") {
		t.Errorf("Expected empty message, got %s", out)
	}
}
