package archive

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	imapclient "outlook-email-extractor/internal/imap"
	"outlook-email-extractor/internal/models"
)

type MockClient struct {
	ConnectErr error
	LoginErr   error
	AppendErr  map[string]error

	server   string
	user     string
	appended []string
	mailbox  string
	closed   bool
}

func (m *MockClient) Connect(server string) error {
	m.server = server
	return m.ConnectErr
}

func (m *MockClient) Login(user, password string) error {
	m.user = user
	return m.LoginErr
}

func (m *MockClient) Append(mailbox string, date time.Time, message []byte) error {
	if len(message) == 0 {
		return errors.New("empty message")
	}
	m.mailbox = mailbox
	for subject, err := range m.AppendErr {
		if containsSubject(message, subject) {
			return err
		}
	}
	m.appended = append(m.appended, string(message))
	return nil
}

func (m *MockClient) Close() error {
	m.closed = true
	return nil
}

func containsSubject(message []byte, subject string) bool {
	return bytes.Contains(message, []byte("Subject: "+subject))
}

var archiveConfig = models.ArchiveConfig{
	Enabled:  true,
	Imap:     "imap.test.com:993",
	Login:    "user@test.com",
	Password: "secret",
	MailBox:  "Captured",
}

func emails() []models.CapturedEmail {
	return []models.CapturedEmail{
		{Subject: "First", Sender: "a@example.com", Content: "one", Timestamp: "2024-05-01T10:00:00.000Z", URL: "u1"},
		{Subject: "Second", Sender: "b@example.com", Content: "two", Timestamp: "2024-05-01T11:00:00.000Z", URL: "u2"},
	}
}

func TestArchive_AppendsOnce(t *testing.T) {
	var clients []*MockClient
	a := NewArchiver(func() imapclient.Client {
		c := &MockClient{}
		clients = append(clients, c)
		return c
	}, archiveConfig)

	n, err := a.Archive(context.Background(), emails())
	if err != nil {
		t.Fatalf("Archive() error: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 appended, got %d", n)
	}

	c := clients[0]
	if c.server != "imap.test.com:993" || c.user != "user@test.com" || c.mailbox != "Captured" {
		t.Errorf("Unexpected client usage: %+v", c)
	}
	if !c.closed {
		t.Error("Expected client to be closed")
	}

	n, err = a.Archive(context.Background(), emails())
	if err != nil {
		t.Fatalf("Archive() error: %v", err)
	}
	if n != 0 || len(clients) != 1 {
		t.Errorf("Expected nothing to archive and no new connection, got %d appended, %d clients", n, len(clients))
	}
}

func TestArchive_FailedAppendIsRetried(t *testing.T) {
	failing := &MockClient{AppendErr: map[string]error{"Second": errors.New("quota exceeded")}}
	working := &MockClient{}
	calls := 0
	a := NewArchiver(func() imapclient.Client {
		calls++
		if calls == 1 {
			return failing
		}
		return working
	}, archiveConfig)

	n, err := a.Archive(context.Background(), emails())
	if err != nil {
		t.Fatalf("Archive() error: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 appended, got %d", n)
	}

	n, err = a.Archive(context.Background(), emails())
	if err != nil {
		t.Fatalf("Archive() error: %v", err)
	}
	if n != 1 || len(working.appended) != 1 {
		t.Errorf("Expected the failed email to be appended on retry, got %d", n)
	}
}

func TestArchive_ConnectionErrors(t *testing.T) {
	tests := []struct {
		name   string
		client *MockClient
	}{
		{name: "Connect", client: &MockClient{ConnectErr: errors.New("dial tcp: refused")}},
		{name: "Login", client: &MockClient{LoginErr: errors.New("invalid credentials")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArchiver(func() imapclient.Client { return tt.client }, archiveConfig)

			if _, err := a.Archive(context.Background(), emails()); err == nil {
				t.Error("Expected Archive() to fail")
			}
			if len(tt.client.appended) != 0 {
				t.Error("Expected nothing to be appended")
			}
		})
	}
}

func TestArchive_Disabled(t *testing.T) {
	a := NewArchiver(func() imapclient.Client { return &MockClient{} }, models.ArchiveConfig{})

	if _, err := a.Archive(context.Background(), emails()); !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
}

func TestArchive_Forget(t *testing.T) {
	c := &MockClient{}
	a := NewArchiver(func() imapclient.Client { return c }, archiveConfig)

	_, _ = a.Archive(context.Background(), emails())
	a.Forget()
	_, _ = a.Archive(context.Background(), emails())

	if len(c.appended) != 4 {
		t.Errorf("Expected every email to be appended twice, got %d appends", len(c.appended))
	}
}
