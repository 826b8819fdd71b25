package extract

import (
	"bytes"
	"encoding/json"

	"github.com/PuerkitoBio/goquery"
)

// Strategy B: the current site revision is framework-rendered and hydrates
// itself from a JSON payload in <script id="__NEXT_DATA__">. The payload
// shape is deeply nested and changes between deployments, so instead of
// fixed paths the whole tree is walked for recognizable key names.
func nextDataStrategy() strategy {
	return strategy{
		name: "next_data_script",
		run: func(body []byte) (*fields, map[string]any) {
			markers := map[string]any{}

			doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
			if err != nil {
				markers["html_parse_error"] = err.Error()
				return nil, markers
			}

			scripts := doc.Find(`script#__NEXT_DATA__`)
			markers["scripts_found"] = scripts.Length()

			parseErrors := 0
			var winner *fields

			scripts.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
				var payload any
				if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
					parseErrors++
					return true
				}

				f := walkFields(payload)
				if f != nil && (f.DownloadURL != "" || f.PlayerDownloadURL != "") {
					winner = f
					return false
				}
				return true
			})

			markers["parse_errors"] = parseErrors

			if winner == nil {
				return nil, markers
			}
			return winner, markers
		},
	}
}
