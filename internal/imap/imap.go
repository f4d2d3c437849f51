package imap

import "time"

type Client interface {
	Connect(server string) error
	Login(user, password string) error
	Append(mailbox string, date time.Time, message []byte) error
	Close() error
}
