package mailformat

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"outlook-email-extractor/internal/models"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// Headers carrying the raw captured values next to the standard ones
const (
	HeaderSender = "X-Captured-Sender"
	HeaderDate   = "X-Captured-Date"
	HeaderURL    = "X-Captured-URL"
)

var addressPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Compose renders a captured email as a single-part text/plain RFC 5322 message.
// The Date header is the capture time; the webmail's own date text is kept in X-Captured-Date.
func Compose(email models.CapturedEmail) ([]byte, error) {
	var h mail.Header
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	h.SetSubject(email.Subject)
	if t := CaptureTime(email); !t.IsZero() {
		h.SetDate(t)
	}
	h.SetMessageID(uuid.New().String() + "@outlook-email-extractor")

	if addr := ExtractEmailAddress(email.Sender); addr != "" {
		h.SetAddressList("From", []*mail.Address{{Name: displayName(email.Sender, addr), Address: addr}})
	}
	if email.Sender != "" {
		h.SetText(HeaderSender, email.Sender)
	}
	if email.Date != "" {
		h.SetText(HeaderDate, email.Date)
	}
	h.SetText(HeaderURL, email.URL)

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message writer: %w", err)
	}
	if _, err := io.WriteString(w, email.Content); err != nil {
		return nil, fmt.Errorf("write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message writer: %w", err)
	}

	return buf.Bytes(), nil
}

// CaptureTime parses the capture timestamp; an unparsable value yields the zero time
func CaptureTime(email models.CapturedEmail) time.Time {
	t, err := time.Parse(models.TimestampLayout, email.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ExtractEmailAddress returns the first email address found in the sender text
func ExtractEmailAddress(sender string) string {
	return addressPattern.FindString(sender)
}

// displayName strips the address and its brackets from the sender text
func displayName(sender, addr string) string {
	name := strings.Replace(sender, addr, "", 1)
	name = strings.NewReplacer("<", "", ">", "", `"`, "").Replace(name)
	return strings.TrimSpace(name)
}
