package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// DailyPasskey derives the shared admin passkey for the local date of the
// given instant: the first 8 hex characters of HMAC-SHA256(secret, date).
// Every admin front end showing the same day computes the same key, and a key
// expires at local midnight without any state to rotate.
func DailyPasskey(secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(at.Format("2006-01-02")))
	return hex.EncodeToString(mac.Sum(nil))[:8]
}

// VerifyPasskey checks a presented passkey against today's derived key.
func VerifyPasskey(secret, presented string, at time.Time) bool {
	expected := DailyPasskey(secret, at)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}
