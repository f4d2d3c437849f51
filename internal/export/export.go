package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"outlook-email-extractor/internal/mailformat"
	"outlook-email-extractor/internal/models"
	"outlook-email-extractor/internal/textutil"
)

// ErrNothingToExport is returned for formats that are not written for an empty store
var ErrNothingToExport = errors.New("no emails to export")

// Format is an export file format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatMbox Format = "mbox"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatMbox:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ContentType returns the MIME type used when the export is downloaded
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatMbox:
		return "application/mbox"
	default:
		return "application/octet-stream"
	}
}

// Filename returns "<prefix>_<YYYY-MM-DD>.<format>" using the UTC date of now
func Filename(prefix string, now time.Time, format Format) string {
	return prefix + "_" + now.UTC().Format("2006-01-02") + "." + string(format)
}

// Render serializes emails in the given format
func Render(format Format, emails []models.CapturedEmail, csvContentLimit int) ([]byte, error) {
	switch format {
	case FormatJSON:
		return JSON(emails)
	case FormatCSV:
		return CSV(emails, csvContentLimit)
	case FormatMbox:
		return Mbox(emails)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// JSON renders emails as an indented array; an empty store yields "[]"
func JSON(emails []models.CapturedEmail) ([]byte, error) {
	if emails == nil {
		emails = []models.CapturedEmail{}
	}
	return json.MarshalIndent(emails, "", "  ")
}

var csvHeader = []string{"Timestamp", "Subject", "Sender", "Date", "Content"}

// CSV renders one fully quoted row per email. Content is cut to contentLimit characters
// before quoting.
func CSV(emails []models.CapturedEmail, contentLimit int) ([]byte, error) {
	if len(emails) == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(csvHeader, ","))
	for _, e := range emails {
		buf.WriteByte('\n')
		writeRow(&buf, e.Timestamp, e.Subject, e.Sender, e.Date, textutil.Truncate(e.Content, contentLimit))
	}
	return buf.Bytes(), nil
}

// writeRow quotes every field; encoding/csv only quotes fields that need it
func writeRow(buf *bytes.Buffer, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
}

// Mbox renders emails as an mboxrd mailbox
func Mbox(emails []models.CapturedEmail) ([]byte, error) {
	if len(emails) == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	for _, e := range emails {
		raw, err := mailformat.Compose(e)
		if err != nil {
			return nil, fmt.Errorf("compose %q: %w", e.Subject, err)
		}

		date := mailformat.CaptureTime(e).UTC().Format(time.ANSIC)
		fmt.Fprintf(&buf, "From MAILER-DAEMON %s\n", date)

		text := strings.ReplaceAll(string(raw), "\r\n", "\n")
		for _, line := range strings.SplitAfter(text, "\n") {
			if strings.HasPrefix(strings.TrimLeft(line, ">"), "From ") {
				buf.WriteByte('>')
			}
			buf.WriteString(line)
		}
		if !strings.HasSuffix(text, "\n") {
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
