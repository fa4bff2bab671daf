package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestHashAndCheckPIN(t *testing.T) {
	tests := []struct {
		name      string
		pin       string
		candidate string
		want      bool
	}{
		{"matching PIN", "1234", "1234", true},
		{"wrong PIN", "1234", "4321", false},
		{"longer PIN", "12345678", "12345678", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPIN(tt.pin)
			if err != nil {
				t.Fatalf("HashPIN() error = %v", err)
			}
			if hash == tt.pin {
				t.Error("HashPIN() returned the plaintext PIN")
			}
			if got := CheckPIN(hash, tt.candidate); got != tt.want {
				t.Errorf("CheckPIN() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		token, err := issuer.Issue(42, "parent@example.com")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		claims, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if claims.Subject != "42" {
			t.Errorf("Subject = %q, want %q", claims.Subject, "42")
		}
		if claims.Email != "parent@example.com" {
			t.Errorf("Email = %q, want %q", claims.Email, "parent@example.com")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := issuer.Verify("not.a.token"); err == nil {
			t.Error("Verify() accepted malformed token")
		}
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("other-secret", time.Hour)
		token, err := other.Issue(1, "a@b.com")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if _, err := issuer.Verify(token); err == nil {
			t.Error("Verify() accepted token signed with a different secret")
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewTokenIssuer("test-secret", -time.Minute)
		token, err := expired.Issue(1, "a@b.com")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if _, err := issuer.Verify(token); err == nil {
			t.Error("Verify() accepted expired token")
		}
	})
}

func TestRateLimiter(t *testing.T) {
	t.Run("enforces the limit", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Minute)
		for i := 0; i < 3; i++ {
			if !rl.Allow("10.0.0.1") {
				t.Fatalf("request %d denied before limit reached", i+1)
			}
		}
		if rl.Allow("10.0.0.1") {
			t.Error("request allowed past the limit")
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)
		if !rl.Allow("a") {
			t.Fatal("first request for key a denied")
		}
		if !rl.Allow("b") {
			t.Error("key b should not share key a's bucket")
		}
	})

	t.Run("window reset restores allowance", func(t *testing.T) {
		rl := NewRateLimiter(1, 10*time.Millisecond)
		if !rl.Allow("c") {
			t.Fatal("first request denied")
		}
		if rl.Allow("c") {
			t.Fatal("second request allowed within window")
		}
		time.Sleep(20 * time.Millisecond)
		if !rl.Allow("c") {
			t.Error("request denied after window reset")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "192.168.1.5:54321",
			want:       "192.168.1.5",
		},
		{
			name:       "x-forwarded-for single",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for chain uses first",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.3"},
			want:       "198.51.100.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
