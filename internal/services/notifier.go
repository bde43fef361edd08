package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/aerox-airport/lost-luggage/internal/models"
)

// MessageClient sends a single message on one channel. TwilioClient is the
// production implementation; tests substitute fakes.
type MessageClient interface {
	SendSMS(ctx context.Context, to, body string) error
	SendWhatsApp(ctx context.Context, to, body string) error
}

// TwilioClient sends SMS and WhatsApp messages through the Twilio API.
type TwilioClient struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioClient builds a client from account credentials. An empty SID
// leaves the client constructed but every send failing, which the dispatcher
// treats as any other delivery failure.
func NewTwilioClient(accountSID, authToken, fromNumber string) *TwilioClient {
	if accountSID == "" {
		log.Warn().Msg("Twilio credentials not configured - passenger notifications will fail")
	}
	return &TwilioClient{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: fromNumber,
	}
}

// SendSMS sends a plain SMS. Numbers must be in E.164 format.
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	if _, err := c.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio sms to %s: %w", to, err)
	}
	return nil
}

// SendWhatsApp sends the same body over the WhatsApp channel.
func (c *TwilioClient) SendWhatsApp(ctx context.Context, to, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo("whatsapp:" + to)
	params.SetFrom("whatsapp:" + c.from)
	params.SetBody(body)

	if _, err := c.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio whatsapp to %s: %w", to, err)
	}
	return nil
}

// Notifier tells a passenger their lost-luggage report has been matched.
// Each channel is a single fire-and-forget attempt; a failure on one channel
// is logged and does not affect the other, and never affects the committed
// status update that triggered the notification.
type Notifier struct {
	client       MessageClient
	contactEmail string
	contactPhone string
}

// NewNotifier wires the dispatcher to a message client and the lost & found
// department contact details appended to every notification.
func NewNotifier(client MessageClient, contactEmail, contactPhone string) *Notifier {
	return &Notifier{
		client:       client,
		contactEmail: contactEmail,
		contactPhone: contactPhone,
	}
}

// MatchedMessage builds the human-readable notification for a matched report.
func (n *Notifier) MatchedMessage(report *models.LostReport) string {
	contactInfo := fmt.Sprintf("\n\nLost & Found Department\nEmail: %s\nPhone: %s", n.contactEmail, n.contactPhone)
	return fmt.Sprintf(
		"Dear %s, your lost luggage report (%s) has been matched! Please contact the lost & found office for further instructions.%s",
		report.PassengerName, report.ID.Hex(), contactInfo,
	)
}

// LostMatched sends the matched notification once over SMS and once over
// WhatsApp. Channels with no destination number are skipped.
func (n *Notifier) LostMatched(ctx context.Context, report *models.LostReport) {
	message := n.MatchedMessage(report)

	if report.Phone != "" {
		if err := n.client.SendSMS(ctx, report.Phone, message); err != nil {
			log.Error().Err(err).Str("report_id", report.ID.Hex()).Msg("Failed to send SMS notification")
		} else {
			log.Info().Str("report_id", report.ID.Hex()).Str("to", report.Phone).Msg("SMS notification sent")
		}
	}

	if report.WhatsappNumber != "" {
		if err := n.client.SendWhatsApp(ctx, report.WhatsappNumber, message); err != nil {
			log.Error().Err(err).Str("report_id", report.ID.Hex()).Msg("Failed to send WhatsApp notification")
		} else {
			log.Info().Str("report_id", report.ID.Hex()).Str("to", report.WhatsappNumber).Msg("WhatsApp notification sent")
		}
	}
}
