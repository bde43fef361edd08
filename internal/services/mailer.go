package services

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	gomail "gopkg.in/gomail.v2"
)

// Mailer relays passenger QR codes as email attachments through an SMTP
// relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer configures the SMTP dialer. Missing credentials are tolerated at
// construction; sends will fail and be surfaced to the caller.
func NewMailer(host string, port int, user, password string) *Mailer {
	if host == "" {
		log.Warn().Msg("SMTP relay not configured - QR email delivery will fail")
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
	}
}

// SendQRCode emails the PNG bytes as a qr-code.png attachment.
func (m *Mailer) SendQRCode(to string, png []byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your Passenger QR Code")
	msg.SetBody("text/plain", "Attached is your QR code.")
	msg.Attach("qr-code.png", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(png)
		return err
	}))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send qr email to %s: %w", to, err)
	}

	log.Info().Str("to", to).Msg("QR code email sent")
	return nil
}
