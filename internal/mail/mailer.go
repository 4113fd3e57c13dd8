// Package mail sends transactional email over SMTP.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends email through a single SMTP account.
type Mailer struct {
	host     string
	port     int
	from     string
	password string
}

// New creates a Mailer for the given SMTP account.
func New(host string, port int, from, password string) *Mailer {
	return &Mailer{host: host, port: port, from: from, password: password}
}

// SendGroupInvite notifies a user that they were added to a group.
func (m *Mailer) SendGroupInvite(to, groupName, inviterName string) error {
	subject := fmt.Sprintf("%s added you to %q", inviterName, groupName)
	body := fmt.Sprintf(
		`<p>Hi,</p>
<p><strong>%s</strong> added you to the group <strong>%s</strong>.</p>
<p>Log in to see the group's receipts and your share of the balance.</p>`,
		inviterName, groupName,
	)
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.host, m.port, m.from, m.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
