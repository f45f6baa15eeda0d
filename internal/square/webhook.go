package square

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

var ErrNoWebhookKey = errors.New("square: webhook signature key is not configured")

// VerifySignature checks the HMAC-SHA256 signature the platform sends
// with webhook deliveries. The signed payload is the notification URL
// concatenated with the raw request body; the signature is base64.
func VerifySignature(key, notificationURL string, body []byte, signature string) (bool, error) {
	if key == "" {
		return false, ErrNoWebhookKey
	}
	if signature == "" {
		return false, nil
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(notificationURL))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
