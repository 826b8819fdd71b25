package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy C: last-resort structured scan. Some page revisions inline episode
// data in ad-hoc script blobs that are almost-but-not-quite JSON. Every brace
// block that textually mentions a download or identifier key is coerced into
// valid JSON and walked; failing that, the page text is scanned for any
// absolute .mp3 URL. Speculative, so it runs after the trusted strategies.

var (
	blobKeyRe    = regexp.MustCompile(`(?i)downloadURL|shiurid`)
	absoluteMP3Re = regexp.MustCompile(`https?://[^\s"'<>]+\.mp3`)
)

func scriptBlobStrategy() strategy {
	return strategy{
		name: "script_blob_scan",
		run: func(body []byte) (*fields, map[string]any) {
			markers := map[string]any{}
			text := string(body)

			blobs := 0
			parseErrors := 0

			for _, loc := range blobKeyRe.FindAllStringIndex(text, -1) {
				open := strings.LastIndexByte(text[:loc[0]], '{')
				if open < 0 {
					continue
				}

				block := braceBlock(text, open)
				if block == "" {
					continue
				}
				blobs++

				var payload any
				if err := json.Unmarshal([]byte(coerceJSON(block)), &payload); err != nil {
					parseErrors++
					continue
				}

				if f := walkFields(payload); f != nil && (f.DownloadURL != "" || f.PlayerDownloadURL != "") {
					markers["blobs_scanned"] = blobs
					markers["parse_errors"] = parseErrors
					markers["source"] = "blob"
					return f, markers
				}
			}

			markers["blobs_scanned"] = blobs
			markers["parse_errors"] = parseErrors

			if m := absoluteMP3Re.FindString(text); m != "" {
				markers["source"] = "page_scan"
				return &fields{DownloadURL: m}, markers
			}

			return nil, markers
		},
	}
}
