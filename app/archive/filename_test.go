package archive

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Inyanei Chanukah.mp3", "Inyanei Chanukah.mp3"},
		{"colon to dash", "Shiur 4: Bava Kamma", "Shiur 4- Bava Kamma"},
		{"invalid chars removed", `a<b>c/d\e|f?g*h`, "abcdefgh"},
		{"double quotes", `the "blame game".mp3`, "the 'blame game'.mp3"},
		{"smart quotes", "the “blame game”.mp3", "the 'blame game'.mp3"},
		{"hebrew gershayim", "פ״ב shiur.mp3", "פ'ב shiur.mp3"},
		{"collapse spaces", "a    b\t\tc", "a b c"},
		{"collapse dashes", "a---b--c", "a-b-c"},
		{"trim edges", "  .-shiur-.  ", "shiur"},
		{"empty becomes untitled", "", "untitled"},
		{"only invalid becomes untitled", `<>|?*`, "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSanitizeFilenameInvariants(t *testing.T) {
	inputs := []string{
		`שיעור-יומי-מסכת-פסחים-פ"ב-2-בענין-מחלוקת-ב"ש-וב"ה-במכירת-חמץ-לנכרי.mp3`,
		`10-minute-rashi-for-vayigash-speaking-hebrew-and-ahavat-yisrael-the-"blame-game"-jewish-success-in-egypt-and-in-the-usa-jewish-roles-in-local-economies-.mp3`,
		`a-neziv-for-vayigash-preserving-cultural-insularity-while-fulfilling-jewish-mission--the-first-jewish-"enclave"--were-yosef's-brothers-popular-in-egypt-or-despised-.mp3`,
		strings.Repeat("very long title ", 30) + ".mp3",
		`:::---...`,
	}

	for _, input := range inputs {
		got := SanitizeFilename(input)

		for _, c := range `<>:"/\|?*` {
			if strings.ContainsRune(got, c) {
				t.Errorf("Sanitized %q still contains %q", got, c)
			}
		}

		if got != strings.Trim(got, ". -") {
			t.Errorf("Sanitized %q has leading/trailing space, period or dash", got)
		}

		name := got
		if dot := strings.LastIndex(got, "."); dot > 0 {
			name = got[:dot]
		}
		if len([]rune(name)) > 180 {
			t.Errorf("Sanitized name %q exceeds 180 characters", name)
		}

		if got == "" {
			t.Error("Sanitized filename is empty")
		}
	}
}

func TestSanitizeFilenameKeepsExtensionWhenTruncating(t *testing.T) {
	long := strings.Repeat("a", 300) + ".mp3"
	got := SanitizeFilename(long)

	if !strings.HasSuffix(got, ".mp3") {
		t.Errorf("Expected truncated name to keep .mp3 extension, got %q", got)
	}
	if len([]rune(got)) > 180 {
		t.Errorf("Expected at most 180 characters, got %d", len([]rune(got)))
	}
}

func TestAudioFilename(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		title    string
		expected string
	}{
		{
			"url basename used",
			"https://download.example.org/shiurim/1160032.mp3",
			"some title",
			"1160032.mp3",
		},
		{
			"query string stripped",
			"https://download.example.org/shiurim/1160032.mp3?token=abc",
			"some title",
			"1160032.mp3",
		},
		{
			"title used when url has no mp3 basename",
			"https://download.example.org/stream/1160032",
			"Inyanei Chanukah",
			"Inyanei Chanukah.mp3",
		},
		{
			"url basename sanitized",
			`https://download.example.org/shiurim/bad"name".mp3`,
			"t",
			"bad'name'.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AudioFilename(tt.url, tt.title)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
