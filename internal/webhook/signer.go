package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carries the payload signature on outbound deliveries.
const SignatureHeader = "X-Webhook-Signature"

// Sign computes the lowercase-hex HMAC-SHA256 of the exact serialized
// payload bytes under the merchant's webhook secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
