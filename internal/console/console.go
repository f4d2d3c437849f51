package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"outlook-email-extractor/internal/export"
	"outlook-email-extractor/internal/extractor"
	"outlook-email-extractor/internal/models"
	"outlook-email-extractor/internal/session"
	"outlook-email-extractor/internal/textutil"
)

const previewLength = 60

// Commands is the part of session.Session the console drives
type Commands interface {
	Show() []models.CapturedEmail
	Count() int
	Capture(ctx context.Context) (session.Result, error)
	Debug(ctx context.Context) (extractor.Report, error)
	Export(format export.Format) (string, error)
	Archive(ctx context.Context) (int, error)
	Clear() int
	Start() error
	Stop()
	CanMonitor() bool
}

// Console reads one command per line and prints the result
type Console struct {
	commands Commands
	in       io.Reader
	out      io.Writer
}

// New creates a Console over the given streams
func New(commands Commands, in io.Reader, out io.Writer) *Console {
	return &Console{commands: commands, in: in, out: out}
}

// Run prints the help banner and executes commands until quit or end of input
func (c *Console) Run(ctx context.Context) error {
	c.printHelp()

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		c.Execute(ctx, cmd)
	}
}

// Execute runs a single command
func (c *Console) Execute(ctx context.Context, cmd string) {
	switch cmd {
	case "":
	case "help":
		c.printHelp()
	case "show":
		c.show()
	case "capture":
		c.capture(ctx)
	case "debug":
		c.debug(ctx)
	case "json", "csv", "mbox":
		c.export(export.Format(cmd))
	case "archive":
		n, err := c.commands.Archive(ctx)
		if err != nil {
			fmt.Fprintf(c.out, "Archive failed: %v\n", err)
			return
		}
		fmt.Fprintf(c.out, "Archived %d email(s)\n", n)
	case "clear":
		n := c.commands.Clear()
		fmt.Fprintf(c.out, "Cleared %d saved email(s)\n", n)
	case "start":
		if err := c.commands.Start(); err != nil {
			fmt.Fprintf(c.out, "Cannot start monitoring: %v\n", err)
			return
		}
		fmt.Fprintln(c.out, "Monitoring started")
	case "stop":
		c.commands.Stop()
		fmt.Fprintln(c.out, "Monitoring stopped")
	default:
		fmt.Fprintf(c.out, "Unknown command %q, type help\n", cmd)
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, `Outlook email extractor

Available commands:
  show     Show all saved emails
  capture  Manually capture the current email
  debug    Enable debug mode and analyse the current page
  json     Export as JSON file
  csv      Export as CSV file
  mbox     Export as mbox file
  archive  Append saved emails to the IMAP archive folder
  clear    Clear all saved emails
  start    Start monitoring
  stop     Stop monitoring
  quit     Exit

`)
	if c.commands.CanMonitor() {
		fmt.Fprintln(c.out, "Emails are captured automatically when you open them.")
		fmt.Fprintln(c.out, "If that does not work, use debug and capture.")
	} else {
		fmt.Fprintln(c.out, "Automatic capture is off: no live browser to watch.")
		fmt.Fprintln(c.out, "Use capture to read the current page.")
	}
	fmt.Fprintf(c.out, "Saved emails: %d\n", c.commands.Count())
}

func (c *Console) show() {
	emails := c.commands.Show()
	if len(emails) == 0 {
		fmt.Fprintln(c.out, "No saved emails")
		return
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTimestamp\tSubject\tSender\tDate\tContent")
	for i, e := range emails {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, e.Timestamp, e.Subject, e.Sender, e.Date,
			textutil.Truncate(e.Content, previewLength))
	}
	_ = w.Flush()
}

func (c *Console) capture(ctx context.Context) {
	res, err := c.commands.Capture(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Capture failed: %v\n", err)
		return
	}

	switch res.Outcome {
	case models.OutcomeCaptured:
		fmt.Fprintf(c.out, "Email captured: %s\nTotal emails: %d\n", res.Email.Subject, res.Total)
	case models.OutcomeDuplicate:
		fmt.Fprintln(c.out, "Duplicate detected, not saved")
	case models.OutcomeNotEmailView:
		fmt.Fprintln(c.out, "No email open. Please open an email first.")
	case models.OutcomeIncomplete:
		fmt.Fprintln(c.out, "Incomplete email data found, use debug to inspect the page")
	}
}

func (c *Console) debug(ctx context.Context) {
	report, err := c.commands.Debug(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Debug failed: %v\n", err)
		return
	}

	fmt.Fprintf(c.out, "Debug mode enabled\nURL: %s\nTitle: %s\n", report.Location, report.Title)
	for _, p := range report.Probes {
		fmt.Fprintf(c.out, "  %s: %d element(s)\n", p.Selector, p.Count)
		for i, sample := range p.Samples {
			fmt.Fprintf(c.out, "    [%d]: %q\n", i, sample)
		}
	}
}

func (c *Console) export(format export.Format) {
	path, err := c.commands.Export(format)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		fmt.Fprintln(c.out, "No emails to export")
	case err != nil:
		fmt.Fprintf(c.out, "Export failed: %v\n", err)
	default:
		fmt.Fprintf(c.out, "Saved %s\n", path)
	}
}
