package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fastbreakfast/models"

	"github.com/julienschmidt/httprouter"
)

func TestTokenRoundTrip(t *testing.T) {
	user := models.User{UserID: "u1234567890", Name: "Asha", Role: "admin"}

	token, err := GenerateToken(user, 12*time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateJWT("Bearer " + token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.UserID != user.UserID {
		t.Errorf("user id = %q, want %q", claims.UserID, user.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q, want admin", claims.Role)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > 12*time.Hour {
		t.Error("expiry not bounded by the requested ttl")
	}
}

func TestAuthenticateRequiresToken(t *testing.T) {
	reached := false
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		reached = true
	})

	// Upgrade headers must not grant a way around token verification.
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	rr := httptest.NewRecorder()
	handler(rr, req, nil)

	if reached {
		t.Fatal("handler reached without a token")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticatePassesValidToken(t *testing.T) {
	token, err := GenerateToken(models.User{UserID: "u42", Role: "user"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	reached := false
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		reached = true
	})
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler(rr, req, nil)

	if !reached {
		t.Fatalf("valid token rejected: status %d", rr.Code)
	}
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "Bearer ", "Bearer not.a.token", "short"} {
		if _, err := ValidateJWT(tok); err == nil {
			t.Errorf("ValidateJWT(%q) accepted an invalid token", tok)
		}
	}
}
