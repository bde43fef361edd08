package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aerox-airport/lost-luggage/internal/models"
)

type recordingClient struct {
	sms      []string
	whatsapp []string
	smsBody  string
	waBody   string
	smsErr   error
	waErr    error
}

func (c *recordingClient) SendSMS(ctx context.Context, to, body string) error {
	c.sms = append(c.sms, to)
	c.smsBody = body
	return c.smsErr
}

func (c *recordingClient) SendWhatsApp(ctx context.Context, to, body string) error {
	c.whatsapp = append(c.whatsapp, to)
	c.waBody = body
	return c.waErr
}

func matchedReport() *models.LostReport {
	return &models.LostReport{
		ID:             primitive.NewObjectID(),
		PassengerName:  "John Smith",
		Phone:          "+15550000000",
		WhatsappNumber: "+15559999999",
		Status:         models.LostStatusMatched,
	}
}

func TestMatchedMessage(t *testing.T) {
	n := NewNotifier(&recordingClient{}, "lostandfound@aerox.com", "+1 (123) 456-7890")
	report := matchedReport()

	msg := n.MatchedMessage(report)
	assert.Contains(t, msg, "Dear John Smith, your lost luggage report ("+report.ID.Hex()+") has been matched!")
	assert.Contains(t, msg, "Please contact the lost & found office for further instructions.")
	assert.Contains(t, msg, "Lost & Found Department")
	assert.Contains(t, msg, "Email: lostandfound@aerox.com")
	assert.Contains(t, msg, "Phone: +1 (123) 456-7890")
}

func TestLostMatchedSendsBothChannels(t *testing.T) {
	client := &recordingClient{}
	n := NewNotifier(client, "lostandfound@aerox.com", "+1 (123) 456-7890")
	report := matchedReport()

	n.LostMatched(context.Background(), report)

	require.Equal(t, []string{"+15550000000"}, client.sms)
	require.Equal(t, []string{"+15559999999"}, client.whatsapp)
	// Both channels carry the same body.
	assert.Equal(t, client.smsBody, client.waBody)
}

func TestLostMatchedSMSFailureDoesNotBlockWhatsApp(t *testing.T) {
	client := &recordingClient{smsErr: assert.AnError}
	n := NewNotifier(client, "lostandfound@aerox.com", "+1 (123) 456-7890")

	n.LostMatched(context.Background(), matchedReport())

	assert.Len(t, client.sms, 1)
	assert.Len(t, client.whatsapp, 1)
}

func TestLostMatchedSkipsEmptyNumbers(t *testing.T) {
	client := &recordingClient{}
	n := NewNotifier(client, "lostandfound@aerox.com", "+1 (123) 456-7890")

	report := matchedReport()
	report.Phone = ""
	n.LostMatched(context.Background(), report)
	assert.Empty(t, client.sms)
	assert.Len(t, client.whatsapp, 1)

	client = &recordingClient{}
	n = NewNotifier(client, "lostandfound@aerox.com", "+1 (123) 456-7890")
	report = matchedReport()
	report.WhatsappNumber = ""
	n.LostMatched(context.Background(), report)
	assert.Len(t, client.sms, 1)
	assert.Empty(t, client.whatsapp)
}
