// Package idea holds the domain model for submitted ideas and the free-text
// parsing that turns a chat message into one.
package idea

import "sort"

// Votes is an idea's tally of emoji-reaction votes.
type Votes struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// Idea is a persisted user submission. The ID is assigned by the store at
// creation and never changes; only Votes mutate after that. Timestamp is
// Unix seconds of the originating message and is the authoritative ordering
// key, since the storage layer makes no ordering promise of its own.
type Idea struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
	Votes       Votes  `json:"votes"`
}

// SortByNewest returns a copy of ideas ordered by submission timestamp,
// newest first, truncated to limit.
func SortByNewest(ideas []Idea, limit int) []Idea {
	sorted := make([]Idea, len(ideas))
	copy(sorted, ideas)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
