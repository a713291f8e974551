package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret")
	dealer := uint(7)

	token, err := issuer.GenerateToken(Claims{UserID: 4, Username: "staff", Role: "dealer_staff", DealerID: &dealer}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := issuer.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 4 || claims.Role != "dealer_staff" || claims.DealerID == nil || *claims.DealerID != 7 {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	issuer := NewIssuer("test-secret")
	token, err := issuer.GenerateToken(Claims{UserID: 1, Role: "admin"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewIssuer("other-secret").ValidateToken(token); err == nil {
		t.Errorf("expected a token signed with another secret to be rejected")
	}

	later := NewIssuer("test-secret")
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := later.ValidateToken(token); err == nil {
		t.Errorf("expected an expired token to be rejected")
	}

	if _, err := issuer.ValidateToken("not.a.token"); err == nil {
		t.Errorf("expected garbage to be rejected")
	}
}

func TestPasswords(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "secret123") || CheckPassword(hash, "wrong") {
		t.Errorf("unexpected password check result")
	}
}

func TestLockout(t *testing.T) {
	l := NewLockout()
	now := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)

	for i := 1; i < 3; i++ {
		if l.Fail("staff", 3, 15*time.Minute, now) {
			t.Fatalf("attempt %d should not lock yet", i)
		}
	}
	if _, locked := l.Locked("staff", now); locked {
		t.Fatalf("expected staff still allowed after 2 failures")
	}
	if !l.Fail("staff", 3, 15*time.Minute, now) {
		t.Fatalf("expected the third failure to lock")
	}
	until, locked := l.Locked("staff", now.Add(time.Minute))
	if !locked || !until.Equal(now.Add(15*time.Minute)) {
		t.Errorf("expected staff locked until %s, got %s %v", now.Add(15*time.Minute), until, locked)
	}
	if _, locked := l.Locked("manager", now); locked {
		t.Errorf("expected other names unaffected")
	}
	if _, locked := l.Locked("staff", now.Add(15*time.Minute)); locked {
		t.Errorf("expected the lock to expire")
	}

	l.Fail("staff", 3, time.Minute, now)
	l.Reset("staff")
	l.Fail("staff", 3, time.Minute, now)
	l.Fail("staff", 3, time.Minute, now)
	if _, locked := l.Locked("staff", now); locked {
		t.Errorf("expected a reset to clear earlier failures")
	}

	if l.Fail("admin", 0, time.Minute, now) {
		t.Errorf("expected a zero limit to disable the lockout")
	}
}
