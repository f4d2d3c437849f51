package models

// TimestampLayout is the ISO-8601 layout used for capture timestamps (UTC, milliseconds)
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// CapturedEmail represents one email read from an opened message view.
// Values are never modified after they enter the store.
type CapturedEmail struct {
	Subject   string `json:"subject"`
	Sender    string `json:"sender,omitempty"`
	Date      string `json:"date,omitempty"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
}

// Key identifies a captured email for deduplication
type Key struct {
	Subject string
	Sender  string
	URL     string
}

// Key returns the deduplication key of the email
func (e CapturedEmail) Key() Key {
	return Key{Subject: e.Subject, Sender: e.Sender, URL: e.URL}
}
