package feed

import (
	"errors"
	"testing"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Shiurim</title>
    <link>https://www.yutorah.org</link>
    <description>Audio shiurim</description>
    <item>
      <title>Gemara Shiur 1</title>
      <link>https://www.yutorah.org/lectures/details?shiurID=1159876</link>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Gemara Shiur 2</title>
      <link>https://www.yutorah.org/lectures/1160274/</link>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	episodes, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(episodes) != 2 {
		t.Fatalf("Expected 2 episodes, got: %d", len(episodes))
	}

	if episodes[0].Title != "Gemara Shiur 1" {
		t.Errorf("Expected title 'Gemara Shiur 1', got: %s", episodes[0].Title)
	}
	if episodes[0].PageURL != "https://www.yutorah.org/lectures/details?shiurID=1159876" {
		t.Errorf("Unexpected page URL: %s", episodes[0].PageURL)
	}
	if episodes[1].Title != "Gemara Shiur 2" {
		t.Errorf("Expected title 'Gemara Shiur 2', got: %s", episodes[1].Title)
	}
}

func TestParsePreservesFeedOrder(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Ordered</title>
    <link>https://example.com</link>
    <description>d</description>
    <item><title>c</title><link>https://example.com/c</link></item>
    <item><title>a</title><link>https://example.com/a</link></item>
    <item><title>b</title><link>https://example.com/b</link></item>
  </channel>
</rss>`

	parser := NewParser()
	episodes, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []string{"c", "a", "b"}
	for i, title := range want {
		if episodes[i].Title != title {
			t.Errorf("Expected episode %d to be '%s', got '%s'", i, title, episodes[i].Title)
		}
	}
}

func TestParseStripsLiteralCDATA(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"wrapped", "<![CDATA[Parsha Shiur]]>", "Parsha Shiur"},
		{"plain", "Parsha Shiur", "Parsha Shiur"},
		{"whitespace", "  <![CDATA[Trimmed]]>  ", "Trimmed"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripCDATA(tt.input)
			if got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestParseSkipsItemsWithoutLink(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test</title>
    <link>https://example.com</link>
    <description>d</description>
    <item><title>no link here</title></item>
    <item><title>has link</title><link>https://example.com/1</link></item>
  </channel>
</rss>`

	parser := NewParser()
	episodes, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(episodes) != 1 {
		t.Fatalf("Expected 1 episode, got: %d", len(episodes))
	}
	if episodes[0].Title != "has link" {
		t.Errorf("Expected 'has link', got: %s", episodes[0].Title)
	}
}

func TestParseMalformedXML(t *testing.T) {
	parser := NewParser()
	_, err := parser.Run([]byte("this is not XML at all"))

	if err == nil {
		t.Fatal("Expected error for malformed XML, got nil")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected *ParseError, got %T: %v", err, err)
	}
}
