package extract

import (
	"sort"
	"strconv"
	"strings"
)

// walkFields scans a decoded JSON tree (maps, slices, scalars) for episode
// fields by key name, case-insensitively. Map keys are visited in sorted
// order so results are deterministic. First value seen for a field wins.
// Any string value ending in ".mp3" is kept as a fallback audio candidate
// in case no explicit download key is present.
func walkFields(v any) *fields {
	f := &fields{}
	var mp3Candidate string

	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case map[string]any:
			keys := make([]string, 0, len(val))
			for k := range val {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				assignField(f, k, val[k])
				walk(val[k])
			}
		case []any:
			for _, item := range val {
				walk(item)
			}
		case string:
			if mp3Candidate == "" && strings.HasSuffix(strings.ToLower(val), ".mp3") {
				mp3Candidate = val
			}
		}
	}
	walk(v)

	if f.DownloadURL == "" && f.PlayerDownloadURL == "" {
		f.DownloadURL = mp3Candidate
	}

	if *f == (fields{}) {
		return nil
	}
	return f
}

func assignField(f *fields, key string, v any) {
	switch strings.ToLower(key) {
	case "downloadurl", "downloadlink", "audiourl", "mp3url":
		setString(&f.DownloadURL, v)
	case "playerdownloadurl", "playerurl":
		setString(&f.PlayerDownloadURL, v)
	case "shiurid", "lectureid":
		setID(&f.ShiurID, v)
	case "title", "shiurtitle":
		setString(&f.Title, v)
	case "duration":
		if s, ok := v.(string); ok {
			setString(&f.Duration, s)
		} else {
			setInt(&f.DurationSeconds, v)
		}
	case "durationinseconds", "durationseconds":
		setInt(&f.DurationSeconds, v)
	case "description", "shiurdescription":
		setString(&f.Description, v)
	case "teachername", "teacherfullname", "speaker":
		setString(&f.TeacherName, v)
	case "datetext", "shiurdate":
		setString(&f.DateText, v)
	}
}

func setString(dst *string, v any) {
	if *dst != "" {
		return
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		*dst = strings.TrimSpace(s)
	}
}

// setID accepts both string and numeric identifiers; payload shapes disagree.
func setID(dst *string, v any) {
	if *dst != "" {
		return
	}
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) != "" {
			*dst = strings.TrimSpace(val)
		}
	case float64:
		if val > 0 {
			*dst = strconv.FormatInt(int64(val), 10)
		}
	}
}

func setInt(dst *int, v any) {
	if *dst != 0 {
		return
	}
	if n, ok := v.(float64); ok && n > 0 {
		*dst = int(n)
	}
}
