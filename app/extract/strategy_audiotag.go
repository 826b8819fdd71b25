package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy D: raw markup fallback. Scrapes src attributes off <audio> and
// <source> tags. The goquery pass covers well-formed markup; the regexes pick
// up tags that only survive in broken HTML the parser drops. Least trusted
// strategy: an src here may be a teaser clip or an unrelated player.

var (
	audioSrcDoubleRe = regexp.MustCompile(`<(?:audio|source)[^>]+src\s*=\s*"([^"]+)"`)
	audioSrcSingleRe = regexp.MustCompile(`<(?:audio|source)[^>]+src\s*=\s*'([^']+)'`)
)

func audioTagStrategy() strategy {
	return strategy{
		name: "audio_tag",
		run: func(body []byte) (*fields, map[string]any) {
			markers := map[string]any{}

			var candidates []string
			seen := map[string]bool{}
			add := func(src string) {
				src = strings.TrimSpace(src)
				if src != "" && !seen[src] {
					seen[src] = true
					candidates = append(candidates, src)
				}
			}

			if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
				doc.Find("audio[src], audio source[src], source[src]").Each(func(_ int, sel *goquery.Selection) {
					if src, ok := sel.Attr("src"); ok {
						add(src)
					}
				})
			}

			text := string(body)
			for _, m := range audioSrcDoubleRe.FindAllStringSubmatch(text, -1) {
				add(m[1])
			}
			for _, m := range audioSrcSingleRe.FindAllStringSubmatch(text, -1) {
				add(m[1])
			}

			markers["candidates"] = len(candidates)

			if len(candidates) == 0 {
				return nil, markers
			}

			// Prefer an explicit .mp3 reference over the first thing found.
			winner := candidates[0]
			for _, c := range candidates {
				if strings.Contains(strings.ToLower(c), ".mp3") {
					winner = c
					break
				}
			}

			return &fields{DownloadURL: winner}, markers
		},
	}
}
