// Package store persists submitted ideas. Two backends implement the same
// contract: Redis (the default, a single keyed hash) and Postgres. Lookups
// for a missing idea return a nil record rather than an error.
package store

import (
	"context"
	"errors"

	"forkthisidea/bot/internal/idea"
)

// ErrInvalidUpdate is returned by UpdateVotes when the update does not carry
// exactly one of Absolute or Delta.
var ErrInvalidUpdate = errors.New("store: exactly one of Absolute or Delta must be set")

// VoteDelta is a signed adjustment to a vote tally.
type VoteDelta struct {
	Up   int
	Down int
}

// VoteUpdate describes a change to an idea's votes. Exactly one of Absolute
// or Delta must be set: Absolute replaces the tally, Delta adjusts it.
type VoteUpdate struct {
	Absolute *idea.Votes
	Delta    *VoteDelta
}

func (u VoteUpdate) validate() error {
	if (u.Absolute == nil) == (u.Delta == nil) {
		return ErrInvalidUpdate
	}
	return nil
}

// apply resolves the update against the current tally. Deltas are not
// clamped at zero; out-of-order or double-processed reaction removals can
// drive a count negative.
func (u VoteUpdate) apply(current idea.Votes) idea.Votes {
	if u.Absolute != nil {
		return *u.Absolute
	}
	return idea.Votes{
		Upvotes:   current.Upvotes + u.Delta.Up,
		Downvotes: current.Downvotes + u.Delta.Down,
	}
}

// IdeaStore is the persistence contract for ideas.
//
// GetByID returns (nil, nil) when no idea has the given ID. UpdateVotes
// returns false when the idea does not exist. Count with an empty userID
// counts every idea. List results carry no ordering guarantee; callers sort.
type IdeaStore interface {
	Create(ctx context.Context, userID, userName, title, description string, timestamp int64) (string, error)
	GetByID(ctx context.Context, ideaID string) (*idea.Idea, error)
	ListAll(ctx context.Context) ([]idea.Idea, error)
	ListByUser(ctx context.Context, userID string) ([]idea.Idea, error)
	ListByTimeRange(ctx context.Context, start, end int64) ([]idea.Idea, error)
	Count(ctx context.Context, userID string) (int, error)
	UpdateVotes(ctx context.Context, ideaID string, update VoteUpdate) (bool, error)
	Close() error
}
