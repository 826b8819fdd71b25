package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Strategy A: the legacy page template assigns a shiurData variable holding
// a JSON object with well-known field names. Most reliable source when
// present, which is why it runs first.

var shiurDataRe = regexp.MustCompile(`shiurData\s*=`)

type shiurDataPayload struct {
	ShiurID           flexID `json:"shiurid"`
	Title             string `json:"title"`
	Duration          string `json:"duration"`
	DurationInSeconds int    `json:"durationInSeconds"`
	Description       string `json:"description"`
	TeacherName       string `json:"teacherName"`
	DateText          string `json:"dateText"`
	DownloadURL       string `json:"downloadURL"`
	PlayerDownloadURL string `json:"playerDownloadURL"`
}

// flexID tolerates both "shiurid": 1160032 and "shiurid": "1160032".
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexID(s)
	return nil
}

func shiurDataStrategy() strategy {
	return strategy{
		name: "shiur_data_var",
		run: func(body []byte) (*fields, map[string]any) {
			markers := map[string]any{}

			loc := shiurDataRe.FindIndex(body)
			if loc == nil {
				markers["variable_found"] = false
				return nil, markers
			}
			markers["variable_found"] = true

			block := braceBlock(string(body), loc[1])
			if block == "" {
				markers["block_found"] = false
				return nil, markers
			}
			markers["block_found"] = true
			markers["block_length"] = len(block)

			var payload shiurDataPayload
			if err := json.Unmarshal([]byte(block), &payload); err != nil {
				markers["parse_error"] = fmt.Sprintf("%v", err)
				return nil, markers
			}

			return &fields{
				DownloadURL:       payload.DownloadURL,
				PlayerDownloadURL: payload.PlayerDownloadURL,
				Title:             payload.Title,
				Duration:          payload.Duration,
				DurationSeconds:   payload.DurationInSeconds,
				Description:       payload.Description,
				TeacherName:       payload.TeacherName,
				ShiurID:           string(payload.ShiurID),
				DateText:          payload.DateText,
			}, markers
		},
	}
}
