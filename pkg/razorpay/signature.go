package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

const SignatureHeader = "X-Razorpay-Signature"

func Hmac256(body, key []byte) string {
	hash := hmac.New(sha256.New, key)
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}

// VerifyWebhookSignature checks the hex HMAC-SHA256 of the raw webhook body.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	return equal(Hmac256(body, []byte(secret)), signature)
}

// VerifyPaymentSignature checks the signature handed to the browser after a
// successful checkout, computed over "order_id|payment_id" with the key secret.
func VerifyPaymentSignature(orderID, paymentID, signature, keySecret string) bool {
	return equal(Hmac256([]byte(orderID+"|"+paymentID), []byte(keySecret)), signature)
}

func equal(expected, received string) bool {
	return hmac.Equal([]byte(expected), []byte(received))
}
