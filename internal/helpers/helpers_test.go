package helpers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

func TestValidWhatsAppNumber(t *testing.T) {
	cases := map[string]bool{
		"965 5123 4567":   true,
		"96551234567":     true,
		"51234567":        true,
		"+965 9876-5432":  true,
		"6000 0000":       true,
		"123 4567":        false,
		"41234567":        false,
		"9655123456":      false,
		"965512345678":    false,
		"":                false,
		"(965) 7123 4567": false,
	}
	for in, want := range cases {
		if got := ValidWhatsAppNumber(in); got != want {
			t.Errorf("ValidWhatsAppNumber(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatWhatsAppNumber(t *testing.T) {
	if got := FormatWhatsAppNumber("51234567"); got != "+965 5123 4567" {
		t.Errorf("local number: got %q", got)
	}
	if got := FormatWhatsAppNumber("+965-5123-4567"); got != "+965 5123 4567" {
		t.Errorf("international number: got %q", got)
	}
	if got := InternationalNumber("5123 4567"); got != "96551234567" {
		t.Errorf("InternationalNumber: got %q", got)
	}
}

func TestNormalizeTimeSlot(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"08:00 AM", "08:00 AM", true},
		{"8:00 am", "08:00 AM", true},
		{"14:00", "02:00 PM", true},
		{"06:00 PM", "06:00 PM", true},
		{"07:00 AM", "", false},
		{"07:00 PM", "", false},
		{"10:30 AM", "", false},
		{"noon", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeTimeSlot(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("NormalizeTimeSlot(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
	if len(TimeSlots) != 11 || TimeSlots[0] != "08:00 AM" || TimeSlots[10] != "06:00 PM" {
		t.Errorf("unexpected slot list: %v", TimeSlots)
	}
}

func TestAreasAndCarTypesAcceptBothLocales(t *testing.T) {
	if !IsArea("Salmiya") || !IsArea("السالمية") {
		t.Error("expected both spellings of Salmiya to be accepted")
	}
	if IsArea("Riyadh") {
		t.Error("unexpected area accepted")
	}
	if !IsCarType("SUV") || !IsCarType("دفع رباعي") {
		t.Error("expected both spellings of SUV to be accepted")
	}
	opts := OptionsFor("ar-KW")
	if opts.Locale != LocaleArabic || opts.Areas[0] != "مدينة الكويت" {
		t.Errorf("unexpected arabic options: %+v", opts)
	}
}

func TestFormatCurrency(t *testing.T) {
	amount := decimal.RequireFromString("1234.5")
	if got := FormatCurrency(amount, "en"); got != "KWD 1,234.500" {
		t.Errorf("en: got %q", got)
	}
	if got := FormatCurrency(amount, "ar"); got != "١٬٢٣٤٫٥٠٠ د.ك." {
		t.Errorf("ar: got %q", got)
	}
	if got := FormatCurrency(decimal.RequireFromString("5"), "en"); got != "KWD 5.000" {
		t.Errorf("small amount: got %q", got)
	}
}

func TestParseCurrencyRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "5", "1.5", "12.75", "1234.5", "1000000"} {
		amount := decimal.RequireFromString(s)
		for _, locale := range []string{"en", "ar"} {
			formatted := FormatCurrency(amount, locale)
			parsed, err := ParseCurrency(formatted)
			if err != nil {
				t.Fatalf("ParseCurrency(%q): %v", formatted, err)
			}
			if !parsed.Equal(amount) {
				t.Errorf("round trip %s/%s: got %s from %q", s, locale, parsed, formatted)
			}
		}
	}
	if _, err := ParseCurrency("KWD abc"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d, "en"); got != "October 15, 2026" {
		t.Errorf("en: got %q", got)
	}
	if got := FormatDate(d, "ar"); got != "١٥ أكتوبر ٢٠٢٦" {
		t.Errorf("ar: got %q", got)
	}
	if got := FormatTimeLabel("03:00 PM", "ar"); got != "٠٣:٠٠ م" {
		t.Errorf("time label: got %q", got)
	}
}

func TestNegotiateLocale(t *testing.T) {
	cases := []struct {
		explicit, header, want string
	}{
		{"ar", "en-US", "ar"},
		{"", "ar-KW,ar;q=0.9,en;q=0.8", "ar"},
		{"", "en-GB", "en"},
		{"", "fr-FR", "en"},
		{"", "", "en"},
		{"xx-invalid-", "", "en"},
	}
	for _, c := range cases {
		if got := NegotiateLocale(c.explicit, c.header); got != c.want {
			t.Errorf("NegotiateLocale(%q,%q) = %q want %q", c.explicit, c.header, got, c.want)
		}
	}
}

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestTokenValidatorHS256(t *testing.T) {
	v := NewSecretTokenValidator("test-secret")
	defer v.Close()

	good := signHS256(t, "test-secret", jwt.MapClaims{
		"sub":   "user-1",
		"email": "ops@example.com",
		"role":  "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	claims, err := v.Validate(good)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "ops@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	forged := signHS256(t, "other-secret", jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})
	if _, err := v.Validate(forged); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for forged token, got %v", err)
	}

	expired := signHS256(t, "test-secret", jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Minute).Unix()})
	if _, err := v.Validate(expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}

	noExp := signHS256(t, "test-secret", jwt.MapClaims{"sub": "user-1"})
	if _, err := v.Validate(noExp); err == nil {
		t.Error("expected token without exp to be rejected")
	}
}

func TestSessionClaimsRole(t *testing.T) {
	sc := &SessionClaims{}
	if sc.IsAdmin() || sc.GetSafeRole() != RoleUser {
		t.Errorf("empty role should default to user")
	}
	sc.Role = RoleAdmin
	if !sc.IsAdmin() {
		t.Errorf("expected admin")
	}
}

func TestValidImageSource(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"https://example.com/wash.jpg", true},
		{"data:image/png;base64,iVBORw0KGgo=", true},
		{"DATA:image/jpeg;BASE64,/9j/4AAQ", true},
		{"http://example.com/wash.jpg", false},
		{"https://", false},
		{"/app/.env.local", false},
		{".env.local", false},
		{"file:///etc/passwd", false},
		{"data:text/plain;base64,U0VDUkVU", false},
		{"data:image/svg+xml,<svg/>", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidImageSource(tt.source); got != tt.want {
			t.Errorf("ValidImageSource(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestUploadImageRefusesLocalFiles(t *testing.T) {
	secret := filepath.Join(t.TempDir(), ".env.local")
	if err := os.WriteFile(secret, []byte("SUPABASE_SERVICE_ROLE_KEY=super-secret-value\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	cld, err := cloudinary.NewFromParams("demo", "key", "secret")
	if err != nil {
		t.Fatalf("failed to build cloudinary client: %v", err)
	}
	up := NewCloudinaryUploader(cld, "")

	url, err := up.UploadImage(context.Background(), secret)
	if !errors.Is(err, ErrInvalidImageSource) {
		t.Fatalf("expected ErrInvalidImageSource, got url=%q err=%v", url, err)
	}
	if url != "" {
		t.Errorf("expected no url, got %q", url)
	}
}
