package auth

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE profiles (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			display_name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}

	return db
}

func TestSignUpAndSignIn(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, "test-secret", false)

	identity, token, err := svc.SignUp("marco@famiglia.local", "famiglia123", "Marco")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if identity.ID == "" {
		t.Fatal("SignUp returned empty identity id")
	}
	if identity.DisplayName != "Marco" {
		t.Errorf("DisplayName = %q, want Marco", identity.DisplayName)
	}
	if token == "" {
		t.Fatal("SignUp returned no session token")
	}

	signedIn, token2, err := svc.SignIn("marco@famiglia.local", "famiglia123")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if signedIn.ID != identity.ID {
		t.Errorf("SignIn returned id %q, want %q (same name must map to same account)", signedIn.ID, identity.ID)
	}
	if token2 == "" {
		t.Error("SignIn returned no token")
	}
}

func TestSignInWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, "test-secret", false)

	if _, _, err := svc.SignUp("laura@famiglia.local", "famiglia123", "Laura"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	if _, _, err := svc.SignIn("laura@famiglia.local", "wrong"); err == nil {
		t.Fatal("SignIn with wrong password should fail")
	}
	if _, _, err := svc.SignIn("nobody@famiglia.local", "famiglia123"); err == nil {
		t.Fatal("SignIn with unknown email should fail")
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, "test-secret", false)

	if _, _, err := svc.SignUp("nonno@famiglia.local", "famiglia123", "Nonno"); err != nil {
		t.Fatalf("first SignUp failed: %v", err)
	}

	_, _, err := svc.SignUp("nonno@famiglia.local", "famiglia123", "Nonno")
	if err == nil {
		t.Fatal("duplicate SignUp should fail")
	}
	if err.Error() != "email already registered" {
		t.Errorf("error = %q, want 'email already registered'", err.Error())
	}
}

func TestSignUpConfirmationRequired(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, "test-secret", true)

	identity, token, err := svc.SignUp("zia@famiglia.local", "famiglia123", "Zia")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if identity == nil {
		t.Fatal("profile should still be created")
	}
	if token != "" {
		t.Fatal("no session token must be issued while confirmation is pending")
	}
}

func TestSignUpValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, "test-secret", false)

	if _, _, err := svc.SignUp("", "famiglia123", "X"); err == nil {
		t.Error("empty email should be rejected")
	}
	if _, _, err := svc.SignUp("not-an-email", "famiglia123", "X"); err == nil {
		t.Error("email without @ should be rejected")
	}
	if _, _, err := svc.SignUp("x@famiglia.local", "", "X"); err == nil {
		t.Error("empty password should be rejected")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, "test-secret", false)

	identity, token, err := svc.SignUp("bimbo@famiglia.local", "famiglia123", "Bimbo")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != identity.ID {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, identity.ID)
	}
	if claims.Email != "bimbo@famiglia.local" {
		t.Errorf("claims.Email = %q", claims.Email)
	}

	other := New(db, "other-secret", false)
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with a different secret should not validate")
	}
}
