package archive

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const maxFilenameLen = 180

// Quotation mark variants collapsed to an ASCII apostrophe. Hebrew titles
// routinely carry gershayim (U+05F4), which render like double quotes and
// break Windows paths.
var quoteReplacer = strings.NewReplacer(
	`"`, "'", // ASCII double quote
	"“", "'", // left double quotation mark
	"”", "'", // right double quotation mark
	"״", "'", // Hebrew gershayim
	"‟", "'", // double high-reversed-9 quotation mark
	"„", "'", // double low-9 quotation mark
	"«", "'", // left angle quotation mark
	"»", "'", // right angle quotation mark
)

var (
	invalidCharsRe = regexp.MustCompile(`[<>/\\|?*]`)
	multiSpaceRe   = regexp.MustCompile(`\s+`)
	multiDashRe    = regexp.MustCompile(`-+`)
)

// SanitizeFilename makes a title safe as a cross-platform filename: quote
// variants become apostrophes, colons become dashes, Windows-invalid
// characters are dropped, runs of whitespace and dashes collapse, and the
// result is trimmed and capped at 180 characters with the extension kept.
func SanitizeFilename(filename string) string {
	filename = norm.NFC.String(filename)

	filename = quoteReplacer.Replace(filename)

	filename = strings.ReplaceAll(filename, ":", "-")
	filename = strings.ReplaceAll(filename, "׃", "-") // Hebrew sof pasuq, renders like a colon

	filename = invalidCharsRe.ReplaceAllString(filename, "")

	filename = multiSpaceRe.ReplaceAllString(filename, " ")
	filename = multiDashRe.ReplaceAllString(filename, "-")

	// Windows rejects names that start or end with spaces, periods or dashes.
	filename = strings.Trim(filename, ". -")

	if runes := []rune(filename); len(runes) > maxFilenameLen {
		if dot := strings.LastIndex(filename, "."); dot > 0 {
			name, ext := []rune(filename[:dot]), filename[dot+1:]
			keep := maxFilenameLen - len(ext) - 1
			if keep < 0 {
				keep = 0
			}
			if keep > len(name) {
				keep = len(name)
			}
			filename = string(name[:keep]) + "." + ext
		} else {
			filename = string(runes[:maxFilenameLen])
		}
		filename = strings.Trim(filename, ". -")
	}

	if filename == "" || filename == "." {
		filename = "untitled"
	}

	return filename
}

// AudioFilename derives the archive filename for an episode: the URL's own
// basename when it already names an MP3, otherwise the sanitized title with
// the extension appended. The URL basename is sanitized too; upstream
// filenames are not trusted.
func AudioFilename(downloadURL, title string) string {
	if idx := strings.LastIndex(downloadURL, "/"); idx >= 0 {
		base := downloadURL[idx+1:]
		if q := strings.IndexAny(base, "?#"); q >= 0 {
			base = base[:q]
		}
		if strings.HasSuffix(strings.ToLower(base), ".mp3") {
			return SanitizeFilename(base)
		}
	}

	return SanitizeFilename(title) + ".mp3"
}
