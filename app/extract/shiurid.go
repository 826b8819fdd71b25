package extract

import (
	"net/url"
	"regexp"
)

var (
	// Detail page URLs take a few shapes:
	//   /lectures/details?shiurID=1159876
	//   /lectures/1160274/
	//   /lectures/lecture.cfm/1160032
	pathIDRe  = regexp.MustCompile(`/lectures/(?:lecture\.cfm/|details/)?(\d+)(?:/|$)`)
	looseIDRe = regexp.MustCompile(`shiurID[=:](\d+)`)
)

// ShiurID derives the stable episode identifier from a detail page URL.
// Pure and idempotent; returns "" when no known pattern matches. The ID is
// the sole deduplication key, so a miss here means the episode can never be
// proven already archived.
func ShiurID(pageURL string) string {
	if u, err := url.Parse(pageURL); err == nil {
		if id := u.Query().Get("shiurID"); id != "" {
			return id
		}
		if m := pathIDRe.FindStringSubmatch(u.Path); m != nil {
			return m[1]
		}
	}

	if m := looseIDRe.FindStringSubmatch(pageURL); m != nil {
		return m[1]
	}

	return ""
}
