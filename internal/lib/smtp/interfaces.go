// Package smtp provides the mail transport used by the notification
// sender.
package smtp

import "io"

// Client is the subset of *smtp.Client the sender needs; mocked in
// tests.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface creates authenticated SMTP sessions.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
