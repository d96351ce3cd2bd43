// Package app implements the bot's three trigger handlers: slash commands,
// idea-submission messages, and emoji reactions. It owns the command
// routing, the submission flow, and the reaction-to-vote correlation; the
// chat transport and the persistence backend are injected.
package app

import (
	"context"
	"log"
	"strings"
	"time"

	"forkthisidea/bot/internal/config"
	"forkthisidea/bot/internal/idea"
	"forkthisidea/bot/internal/message"
	"forkthisidea/bot/internal/store"
)

// fetchLimit caps how many ideas a fetch response displays.
const fetchLimit = 5

// Platform is the slice of the chat platform the service consumes. An empty
// threadTS sends outside any thread.
type Platform interface {
	SendEphemeral(ctx context.Context, channelID, userID string, blocks []message.Block, fallback, threadTS string) error
	SendChannelMessage(ctx context.Context, channelID string, blocks []message.Block, fallback, threadTS string) error
	UserDisplayName(ctx context.Context, userID string) (string, error)
	// MessageAt fetches the message posted in channelID at the given
	// platform timestamp, returning its text, author, and Unix seconds.
	MessageAt(ctx context.Context, channelID, ts string) (text, authorID string, timestamp int64, err error)
}

// Service wires the idea store and the chat platform together.
type Service struct {
	cfg      config.Config
	store    store.IdeaStore
	platform Platform
	now      func() time.Time
}

func New(cfg config.Config, st store.IdeaStore, platform Platform) *Service {
	return &Service{
		cfg:      cfg,
		store:    st,
		platform: platform,
		now:      time.Now,
	}
}

// HandleMessage processes an idea-submission message. The timestamp must be
// the message event's own timestamp, not wall clock, so that a later
// reaction on the same message can be correlated back to the stored record.
func (s *Service) HandleMessage(ctx context.Context, text, userID, channelID string, timestamp int64, threadTS string) {
	title, description := idea.Parse(strings.TrimSpace(text))
	if title == "" && description == "" {
		s.sendEphemeralText(ctx, channelID, userID, submissionEmptyText(userID), threadTS)
		return
	}

	userName, err := s.platform.UserDisplayName(ctx, userID)
	if err != nil {
		log.Printf("resolve display name for %s: %v", userID, err)
		userName = userID
	}

	if _, err := s.store.Create(ctx, userID, userName, title, description, timestamp); err != nil {
		log.Printf("create idea for %s: %v", userID, err)
		s.sendEphemeralText(ctx, channelID, userID, genericFailureText(userID), threadTS)
		return
	}

	if s.cfg.AnnounceSubmissions {
		announcement := submissionDetailsText(userID, title, description, timestamp)
		if err := s.platform.SendChannelMessage(ctx, channelID, message.FromText(announcement), announcement, threadTS); err != nil {
			// The idea is already stored; a failed announcement leaves it
			// orphaned but valid.
			log.Printf("announce submission in %s: %v", channelID, err)
		}
	}

	s.sendEphemeralText(ctx, channelID, userID, submissionSuccessText(userID), threadTS)
}

// HandleBotJoinedChannel greets a channel the bot was just added to.
func (s *Service) HandleBotJoinedChannel(ctx context.Context, channelID, channelName string) {
	blocks := welcomeBlocks(channelName)
	if err := s.platform.SendChannelMessage(ctx, channelID, blocks, "Hello! I'm the Fork This Idea app.", ""); err != nil {
		log.Printf("send welcome to %s: %v", channelID, err)
	}
}

func (s *Service) sendEphemeralText(ctx context.Context, channelID, userID, text, threadTS string) {
	if err := s.platform.SendEphemeral(ctx, channelID, userID, message.FromText(text), text, threadTS); err != nil {
		log.Printf("send ephemeral to %s in %s: %v", userID, channelID, err)
	}
}

func (s *Service) sendEphemeralBlocks(ctx context.Context, channelID, userID string, blocks []message.Block, fallback, threadTS string) {
	if err := s.platform.SendEphemeral(ctx, channelID, userID, blocks, fallback, threadTS); err != nil {
		log.Printf("send ephemeral to %s in %s: %v", userID, channelID, err)
	}
}
