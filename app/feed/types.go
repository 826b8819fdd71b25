package feed

import "fmt"

// Episode references one RSS item: the display title and the detail page
// the audio URL has to be extracted from. The feed itself carries no direct
// media links.
type Episode struct {
	Title   string
	PageURL string
}

// FetchError reports a transport-level failure (network error, timeout,
// non-2xx status) while retrieving a feed. Feed fetch failures abort a run.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports malformed feed XML. Distinct from FetchError so the
// orchestrator can tell "site unreachable" apart from "site returned garbage".
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
