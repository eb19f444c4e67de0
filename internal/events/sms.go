package events

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// SMSDispatchQueue receives otp.issued events for the SMS gateway.
const SMSDispatchQueue = "sms_dispatch"

// HandleOTPIssued stands in for the SMS gateway: it decodes an otp.issued event and logs
// the message that would be sent.
func HandleOTPIssued(body []byte) error {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	if event.Type != OTPIssued {
		return fmt.Errorf("unexpected event type %q", event.Type)
	}
	mobile, _ := event.Data["mobile"].(string)
	code, _ := event.Data["code"].(string)
	if mobile == "" || code == "" {
		return fmt.Errorf("otp event %s is missing mobile or code", event.ID)
	}
	log.Info().Str("mobile", mobile).Str("code", code).Msg("SMS gateway not configured, OTP logged instead")
	return nil
}
