package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/joshua-takyi/fasttrack/internal/helpers"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrDisabled is returned by senders that have no credentials. Callers treat it as a skip.
var ErrDisabled = errors.New("messaging gateway not configured")

// TwilioSender delivers WhatsApp messages through the Twilio Messages API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

// Send returns the Twilio message SID.
func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(whatsAppAddress(to))
	params.SetFrom(whatsAppAddress(s.from))
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio API error: %w", err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// whatsAppAddress accepts "whatsapp:+965...", "+965..." or bare digits.
func whatsAppAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	if strings.HasPrefix(number, "+") {
		return "whatsapp:" + number
	}
	return "whatsapp:+" + helpers.DigitsOnly(number)
}

// DisabledSender logs what would have been sent.
type DisabledSender struct {
	Logger *slog.Logger
}

func (d DisabledSender) Send(_ context.Context, to, body string) (string, error) {
	if d.Logger != nil {
		d.Logger.Info("Twilio credentials not configured, skipping WhatsApp message", "to", to, "message", body)
	}
	return "", ErrDisabled
}

// WhatsAppLink builds a click-to-chat link with a pre-filled message.
func WhatsAppLink(number, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + helpers.InternationalNumber(number) + "?text=" + text
}
