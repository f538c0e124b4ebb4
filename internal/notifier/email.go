package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/stagedoor/london-acting-events/internal/event"
	"github.com/stagedoor/london-acting-events/internal/logger"
)

// SMTPSettings holds mail server details.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
}

// EmailNotifier sends the digest over SMTP
type EmailNotifier struct {
	smtp SMTPSettings
	from string
	to   []string
	opts DigestOptions

	send func(ctx context.Context, m *mail.Msg) error
}

// NewEmailNotifier creates an SMTP notifier.
func NewEmailNotifier(smtp SMTPSettings, from string, to []string, opts DigestOptions) (*EmailNotifier, error) {
	if smtp.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if from == "" || len(to) == 0 {
		return nil, errors.New("sender and at least one recipient are required")
	}

	n := &EmailNotifier{smtp: smtp, from: from, to: to, opts: opts}
	n.send = n.dialAndSend
	return n, nil
}

// Notify sends one email listing events. Nothing is sent for an empty list.
func (n *EmailNotifier) Notify(ctx context.Context, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}

	m, err := n.message(events)
	if err != nil {
		return err
	}

	if err := n.send(ctx, m); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	logger.Info("email sent", logger.Fields{"recipients": len(n.to), "events": len(events)})
	return nil
}

func (n *EmailNotifier) message(events []*event.Event) (*mail.Msg, error) {
	d := FormatDigest(events, n.opts)

	m := mail.NewMsg()
	if err := m.From(n.from); err != nil {
		return nil, fmt.Errorf("setting sender: %w", err)
	}
	if err := m.To(n.to...); err != nil {
		return nil, fmt.Errorf("setting recipients: %w", err)
	}
	m.Subject(d.Subject)
	m.SetBodyString(mail.TypeTextPlain, d.Body)
	return m, nil
}

func (n *EmailNotifier) dialAndSend(ctx context.Context, m *mail.Msg) error {
	opts := []mail.Option{mail.WithPort(n.smtp.Port)}
	if n.smtp.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if n.smtp.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.smtp.Username),
			mail.WithPassword(n.smtp.Password),
		)
	}

	client, err := mail.NewClient(n.smtp.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}
