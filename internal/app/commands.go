package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"forkthisidea/bot/internal/idea"
	"forkthisidea/bot/internal/message"
)

// HandleSlashCommand dispatches `/forkthisidea <command> [subcommand]`.
// Every path produces a user-visible ephemeral response, including
// malformed input.
func (s *Service) HandleSlashCommand(ctx context.Context, text, userID, channelID, threadTS string) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		s.sendEphemeralBlocks(ctx, channelID, userID, invalidCommandBlocks(userID), invalidCommandFallback, threadTS)
		return
	}

	command := strings.ToLower(parts[0])
	subcommand := ""
	if len(parts) > 1 {
		subcommand = parts[1]
	}

	switch command {
	case "fetch":
		s.handleFetch(ctx, subcommand, userID, channelID, threadTS)
	case "count":
		s.handleCount(ctx, subcommand, userID, channelID, threadTS)
	case "help":
		s.sendEphemeralBlocks(ctx, channelID, userID, helpBlocks(userID), "Fork This Idea - Help", threadTS)
	default:
		s.sendEphemeralBlocks(ctx, channelID, userID, invalidCommandBlocks(userID), invalidCommandFallback, threadTS)
	}
}

func (s *Service) handleFetch(ctx context.Context, subcommand, userID, channelID, threadTS string) {
	var (
		ideas []idea.Idea
		err   error
	)

	switch {
	case strings.EqualFold(subcommand, "today"):
		now := s.now().Unix()
		ideas, err = s.store.ListByTimeRange(ctx, now-24*60*60, now)
	case strings.EqualFold(subcommand, "all"):
		ideas, err = s.store.ListAll(ctx)
	case strings.EqualFold(subcommand, "me"):
		ideas, err = s.store.ListByUser(ctx, userID)
	case isMention(subcommand):
		ideas, err = s.store.ListByUser(ctx, mentionUserID(subcommand))
	default:
		s.sendEphemeralBlocks(ctx, channelID, userID, invalidCommandBlocks(userID), invalidCommandFallback, threadTS)
		return
	}

	if err != nil {
		log.Printf("fetch %q for %s: %v", subcommand, userID, err)
		s.sendEphemeralText(ctx, channelID, userID, genericFailureText(userID), threadTS)
		return
	}

	ideas = idea.SortByNewest(ideas, fetchLimit)
	if len(ideas) == 0 {
		s.sendEphemeralText(ctx, channelID, userID, noIdeasFoundText(userID), threadTS)
		return
	}

	builder := message.NewBuilder()
	for _, item := range ideas {
		appendIdeaDetails(builder, item)
	}
	s.sendEphemeralBlocks(ctx, channelID, userID, builder.Blocks(), fmt.Sprintf("%d ideas", len(ideas)), threadTS)
}

func (s *Service) handleCount(ctx context.Context, subcommand, userID, channelID, threadTS string) {
	var (
		scope    string
		sentence func(int) string
	)

	switch {
	case isMention(subcommand):
		target := mentionUserID(subcommand)
		scope = target
		sentence = func(n int) string {
			return fmt.Sprintf("<@%s> has submitted %d ideas.", target, n)
		}
	case strings.EqualFold(subcommand, "me"):
		scope = userID
		sentence = func(n int) string {
			return fmt.Sprintf("You have submitted %d ideas.", n)
		}
	case subcommand == "":
		sentence = func(n int) string {
			return fmt.Sprintf("There are a total of %d ideas submitted.", n)
		}
	default:
		s.sendEphemeralBlocks(ctx, channelID, userID, invalidCommandBlocks(userID), invalidCommandFallback, threadTS)
		return
	}

	count, err := s.store.Count(ctx, scope)
	if err != nil {
		log.Printf("count %q for %s: %v", subcommand, userID, err)
		s.sendEphemeralText(ctx, channelID, userID, genericFailureText(userID), threadTS)
		return
	}
	s.sendEphemeralText(ctx, channelID, userID, sentence(count), threadTS)
}

// isMention reports whether a subcommand is a user mention like <@U123ABC>.
func isMention(subcommand string) bool {
	return strings.HasPrefix(subcommand, "<@") && strings.HasSuffix(subcommand, ">")
}

func mentionUserID(subcommand string) string {
	id := strings.TrimSuffix(strings.TrimPrefix(subcommand, "<@"), ">")
	// Mentions may carry a trailing |username segment.
	if i := strings.Index(id, "|"); i >= 0 {
		id = id[:i]
	}
	return id
}
