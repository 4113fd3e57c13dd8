package auth

import (
	"errors"
	"testing"
	"time"

	"splitshare/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour)
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("user id = %s, want %s", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("email = %s, want %s", claims.Email, user.Email)
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret-key", -time.Minute)
	token, err := manager.Generate(&models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour).Generate(&models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := NewJWTManager("secret-b", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}

	if _, err := NewJWTManager("secret-a", time.Hour).Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token error = %v, want ErrInvalidToken", err)
	}
}
