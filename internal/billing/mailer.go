package billing

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/wneessen/go-mail"
)

// Message is an outbound bill mail with its PDF attachment.
type Message struct {
	To             string
	Subject        string
	Body           string
	Attachment     []byte
	AttachmentName string
}

// Mailer sends a bill to a guest. Transport failures are returned verbatim;
// the caller decides how to surface them. No retries.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers bills through an SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates an SMTPMailer. port is the string form from config.
func NewSMTPMailer(host, port, username, password, from string) (*SMTPMailer, error) {
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp port %q: %w", port, err)
	}
	return &SMTPMailer{host: host, port: p, username: username, password: password, from: from}, nil
}

// Send delivers a single message. One connection per send; the POS mails
// bills rarely enough that pooling is not worth carrying.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	opts := []mail.Option{mail.WithPort(m.port)}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	message := mail.NewMsg()
	if err := message.From(m.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := message.To(msg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextPlain, msg.Body)
	if len(msg.Attachment) > 0 {
		if err := message.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment)); err != nil {
			return fmt.Errorf("attach %s: %w", msg.AttachmentName, err)
		}
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
