// Package reconcile computes which feed episodes still need archiving by
// matching URL-derived shiur IDs against the set of already-archived IDs.
package reconcile

import (
	"github.com/ymarkus/shiursync/app/extract"
	"github.com/ymarkus/shiursync/app/feed"
)

// Candidate is one episode that requires action, paired with its derived
// identifier. ShiurID is "" when no known URL pattern matched.
type Candidate struct {
	Episode feed.Episode
	ShiurID string
}

// New returns the episodes whose identifier is not yet archived, preserving
// feed order. Episodes with no derivable identifier are always treated as
// new: they cannot be proven already archived, and re-offering beats silent
// loss. Pure function, no I/O.
func New(episodes []feed.Episode, archived map[string]bool) []Candidate {
	candidates := make([]Candidate, 0, len(episodes))

	for _, episode := range episodes {
		id := extract.ShiurID(episode.PageURL)
		if id != "" && archived[id] {
			continue
		}
		candidates = append(candidates, Candidate{
			Episode: episode,
			ShiurID: id,
		})
	}

	return candidates
}
