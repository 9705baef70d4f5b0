package notifier

import (
	"log"
)

// Notifier delivers messages to users. The default implementation only
// logs, a real SMTP sender can be plugged in without touching callers.
type Notifier interface {
	Send(recipient, subject, body string) error
}

// LogNotifier writes every message to the application log
type LogNotifier struct {
	from string
}

func NewLogNotifier(from string) *LogNotifier {
	return &LogNotifier{from: from}
}

func (n *LogNotifier) Send(recipient, subject, body string) error {
	log.Printf("Notification from=%s to=%s subject=%q\n%s", n.from, recipient, subject, body)
	return nil
}
