package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	token, exp, err := Issue("a@x", "member", "messhall", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry not in the future")
	}

	claims, err := Parse(token, "test-key", "messhall")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Email != "a@x" || claims.Role != "member" {
		t.Fatalf("claims %+v", claims)
	}
}

func TestParse_RejectsWrongKeyAndIssuer(t *testing.T) {
	token, _, err := Issue("a@x", "member", "messhall", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(token, "other-key", "messhall"); err == nil {
		t.Fatal("wrong key accepted")
	}
	if _, err := Parse(token, "test-key", "someone-else"); err == nil {
		t.Fatal("wrong issuer accepted")
	}
}

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("hunter2", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("hunter3", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestDailyPasskey(t *testing.T) {
	day := time.Date(2025, 7, 25, 10, 0, 0, 0, time.UTC)

	key := DailyPasskey("secret", day)
	if len(key) != 8 {
		t.Fatalf("passkey length %d, want 8", len(key))
	}
	// Same day, any time: same key.
	evening := time.Date(2025, 7, 25, 23, 59, 0, 0, time.UTC)
	if DailyPasskey("secret", evening) != key {
		t.Fatal("passkey changed within the day")
	}
	// Next day: different key.
	tomorrow := day.AddDate(0, 0, 1)
	if DailyPasskey("secret", tomorrow) == key {
		t.Fatal("passkey did not rotate at midnight")
	}
	// Different secret: different key.
	if DailyPasskey("other", day) == key {
		t.Fatal("passkey independent of secret")
	}

	if !VerifyPasskey("secret", key, day) {
		t.Fatal("today's key rejected")
	}
	if VerifyPasskey("secret", key, tomorrow) {
		t.Fatal("yesterday's key accepted")
	}
}
