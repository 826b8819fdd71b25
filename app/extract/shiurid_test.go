package extract

import "testing"

func TestShiurID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"query parameter", "https://www.yutorah.org/lectures/details?shiurID=1159876", "1159876"},
		{"path segment", "https://www.yutorah.org/lectures/1160274/", "1160274"},
		{"lecture.cfm path", "https://www.yutorah.org/lectures/lecture.cfm/1160032", "1160032"},
		{"details path", "https://www.yutorah.org/lectures/details/1160100", "1160100"},
		{"no identifier", "https://www.yutorah.org/about", ""},
		{"colon form in text", "https://example.com/player?data=shiurID:1160555", "1160555"},
		{"query wins over path", "https://www.yutorah.org/lectures/999/?shiurID=1160001", "1160001"},
		{"empty", "", ""},
		{"trailing slug after digits", "https://www.yutorah.org/lectures/1160274/some-title", "1160274"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShiurID(tt.url)
			if got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestShiurIDIsDeterministic(t *testing.T) {
	url := "https://www.yutorah.org/lectures/details?shiurID=1159876"
	first := ShiurID(url)
	for i := 0; i < 10; i++ {
		if got := ShiurID(url); got != first {
			t.Fatalf("Expected stable result '%s', got '%s' on call %d", first, got, i)
		}
	}
}
