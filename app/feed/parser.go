package feed

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Some feeds embed CDATA markers as literal text instead of real XML CDATA
// sections, so they survive parsing and have to be stripped afterwards.
var cdataRe = regexp.MustCompile(`<!\[CDATA\[(.*?)\]\]>`)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses RSS data into episode references in feed document order.
// Items without a link are skipped; duplicates are left in place, dedup
// against the tracking record happens during reconciliation.
func (p *Parser) Run(data []byte) ([]Episode, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	episodes := make([]Episode, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		title := stripCDATA(item.Title)
		link := stripCDATA(item.Link)

		if link == "" {
			continue
		}

		episodes = append(episodes, Episode{
			Title:   title,
			PageURL: link,
		})
	}

	return episodes, nil
}

func stripCDATA(s string) string {
	return strings.TrimSpace(cdataRe.ReplaceAllString(s, "$1"))
}
