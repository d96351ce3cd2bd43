package idea

// VoteKind classifies a reaction emoji.
type VoteKind int

const (
	VoteNone VoteKind = iota
	VoteUp
	VoteDown
)

// The two emoji sets are disjoint; reactions in neither set are ignored.
var upvoteEmojis = map[string]struct{}{
	"thumbsup":          {},
	"heart":             {},
	"saluting_face":     {},
	"star":              {},
	"upvote":            {},
	"double-upvote":     {},
	"upvote5":           {},
	"upvote3":           {},
	"8bit-upvote":       {},
	"super-mega-upvote": {},
}

var downvoteEmojis = map[string]struct{}{
	"thumbsdown":      {},
	"downvote":        {},
	"downdoot":        {},
	"downvote2":       {},
	"downvote3":       {},
	"downvotex":       {},
	"downvote-red":    {},
	"double-downvote": {},
}

// ClassifyReaction maps a reaction emoji name to a vote direction.
func ClassifyReaction(name string) VoteKind {
	if _, ok := upvoteEmojis[name]; ok {
		return VoteUp
	}
	if _, ok := downvoteEmojis[name]; ok {
		return VoteDown
	}
	return VoteNone
}
