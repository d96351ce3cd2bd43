package app

import (
	"context"
	"fmt"
	"log"

	"forkthisidea/bot/internal/idea"
	"forkthisidea/bot/internal/store"
)

// ReactionEvent is the platform-normalized reaction payload.
type ReactionEvent struct {
	Reaction  string
	UserID    string
	ChannelID string
	ItemType  string
	ItemTS    string
	Removed   bool
}

// HandleReaction translates an emoji reaction into a vote adjustment on the
// idea the reacted-to message submitted. Every failure is logged and
// swallowed; reaction handling must never take down the event loop.
func (s *Service) HandleReaction(ctx context.Context, event ReactionEvent) {
	if event.ItemType != "message" {
		return
	}

	kind := idea.ClassifyReaction(event.Reaction)
	if kind == idea.VoteNone {
		return
	}

	sign := 1
	if event.Removed {
		sign = -1
	}

	match, err := s.findIdeaForMessage(ctx, event.ChannelID, event.ItemTS)
	if err != nil {
		log.Printf("reaction %s in %s: %v", event.Reaction, event.ChannelID, err)
		return
	}
	if match == nil {
		return
	}

	update := store.VoteUpdate{Delta: &store.VoteDelta{}}
	if kind == idea.VoteUp {
		update.Delta.Up = sign
	} else {
		update.Delta.Down = sign
	}

	ok, err := s.store.UpdateVotes(ctx, match.ID, update)
	if err != nil {
		log.Printf("update votes for idea %s: %v", match.ID, err)
		return
	}
	if !ok {
		log.Printf("idea %s disappeared before its votes could be updated", match.ID)
	}
}

// findIdeaForMessage recovers the stored idea a message at (channelID, ts)
// submitted. Reactions carry no idea ID, so the lookup is a heuristic: the
// record was created with the message event's own timestamp, and an
// exact-timestamp range query finds it again. The match is then verified
// against the message's author and re-parsed content; a mismatch means the
// hit was coincidental and is reported as an inconsistency.
//
// Returns (nil, nil) for messages that are not idea submissions or have no
// stored record; those are intentionally silent.
func (s *Service) findIdeaForMessage(ctx context.Context, channelID, ts string) (*idea.Idea, error) {
	text, authorID, timestamp, err := s.platform.MessageAt(ctx, channelID, ts)
	if err != nil {
		return nil, fmt.Errorf("fetch message at %s: %w", ts, err)
	}

	if !idea.HasTrigger(text) {
		return nil, nil
	}

	candidates, err := s.store.ListByTimeRange(ctx, timestamp, timestamp)
	if err != nil {
		return nil, fmt.Errorf("correlate idea at %d: %w", timestamp, err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	match := candidates[0]
	title, description := idea.Parse(text)
	if match.UserID != authorID || match.Title != title || match.Description != description {
		return nil, fmt.Errorf("correlation mismatch: idea %s does not match message at %d", match.ID, timestamp)
	}
	return &match, nil
}
