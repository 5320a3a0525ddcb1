package textutil

import (
	"strings"
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Indie Rock", "indie rock"},
		{"diacritics", "Música Popular Brasileira", "musica popular brasileira"},
		{"punctuation", "hip-hop/rap!!", "hip hop rap"},
		{"ampersand", "R&B", "r & b"},
		{"spaced ampersand", "drum & bass", "drum & bass"},
		{"compatibility form", "ｋ-pop", "k pop"},
		{"blank", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fold(tt.in); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase(" hip hop "); got != "Hip Hop" {
		t.Fatalf("TitleCase = %q", got)
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC/DC", "ac_dc"},
		{"Beyoncé", "beyonce"},
		{"2Pac", "n2pac"},
		{"!!!", "unknown"},
		{"Sigur Rós", "sigur_ros"},
	}
	for _, tt := range tests {
		if got := SanitizeIdentifier(tt.in); got != tt.want {
			t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeIdentifierTruncates(t *testing.T) {
	long := strings.Repeat("Very Long Band Name ", 30)
	got := SanitizeIdentifier(long)
	if len(got) > MaxIdentifierLength {
		t.Fatalf("identifier has %d characters, cap is %d", len(got), MaxIdentifierLength)
	}
	if strings.HasSuffix(got, "_") {
		t.Fatalf("identifier %q ends with an underscore", got)
	}
	if !strings.HasPrefix(got, "very_long_band_name_very") {
		t.Fatalf("unexpected identifier %q", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("  "); got != "unknown" {
		t.Fatalf("blank token = %q", got)
	}
	if got := SanitizeToken("Top-40_Hits!"); got != "top-40_hits" {
		t.Fatalf("SanitizeToken = %q", got)
	}
}
