package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"forkthisidea/bot/internal/config"
	"forkthisidea/bot/internal/idea"
	"forkthisidea/bot/internal/message"
	"forkthisidea/bot/internal/store"
)

type sentMessage struct {
	channelID string
	userID    string
	blocks    []message.Block
	fallback  string
	threadTS  string
}

type fakePlatform struct {
	ephemeral      []sentMessage
	channel        []sentMessage
	displayNameFn  func(userID string) (string, error)
	messageAtFn    func(channelID, ts string) (string, string, int64, error)
	messageAtCalls int
}

func (f *fakePlatform) SendEphemeral(_ context.Context, channelID, userID string, blocks []message.Block, fallback, threadTS string) error {
	f.ephemeral = append(f.ephemeral, sentMessage{channelID, userID, blocks, fallback, threadTS})
	return nil
}

func (f *fakePlatform) SendChannelMessage(_ context.Context, channelID string, blocks []message.Block, fallback, threadTS string) error {
	f.channel = append(f.channel, sentMessage{channelID: channelID, blocks: blocks, fallback: fallback, threadTS: threadTS})
	return nil
}

func (f *fakePlatform) UserDisplayName(_ context.Context, userID string) (string, error) {
	if f.displayNameFn != nil {
		return f.displayNameFn(userID)
	}
	return "someone", nil
}

func (f *fakePlatform) MessageAt(_ context.Context, channelID, ts string) (string, string, int64, error) {
	f.messageAtCalls++
	if f.messageAtFn != nil {
		return f.messageAtFn(channelID, ts)
	}
	return "", "", 0, errors.New("no message")
}

func (f *fakePlatform) lastEphemeral(t *testing.T) sentMessage {
	t.Helper()
	if len(f.ephemeral) == 0 {
		t.Fatal("no ephemeral message was sent")
	}
	return f.ephemeral[len(f.ephemeral)-1]
}

// fakeStore counts calls so tests can assert a path never touched storage.
type fakeStore struct {
	calls int
}

func (f *fakeStore) Create(context.Context, string, string, string, string, int64) (string, error) {
	f.calls++
	return "id", nil
}
func (f *fakeStore) GetByID(context.Context, string) (*idea.Idea, error) {
	f.calls++
	return nil, nil
}
func (f *fakeStore) ListAll(context.Context) ([]idea.Idea, error) {
	f.calls++
	return nil, nil
}
func (f *fakeStore) ListByUser(context.Context, string) ([]idea.Idea, error) {
	f.calls++
	return nil, nil
}
func (f *fakeStore) ListByTimeRange(context.Context, int64, int64) ([]idea.Idea, error) {
	f.calls++
	return nil, nil
}
func (f *fakeStore) Count(context.Context, string) (int, error) {
	f.calls++
	return 0, nil
}
func (f *fakeStore) UpdateVotes(context.Context, string, store.VoteUpdate) (bool, error) {
	f.calls++
	return false, nil
}
func (f *fakeStore) Close() error { return nil }

func newTestService(t *testing.T, cfg config.Config, platform *fakePlatform) (*Service, *store.RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisStore, err := store.NewRedisStore("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { redisStore.Close() })
	return New(cfg, redisStore, platform), redisStore
}

func TestSubmitAndVoteLifecycle(t *testing.T) {
	platform := &fakePlatform{
		displayNameFn: func(string) (string, error) { return "Alice", nil },
	}
	service, redisStore := newTestService(t, config.Config{}, platform)
	ctx := context.Background()

	messageText := "pi: Dark mode | Add a dark theme"
	service.HandleMessage(ctx, messageText, "U1", "C1", 1000, "")

	ideas, err := redisStore.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(ideas) != 1 {
		t.Fatalf("expected 1 stored idea, got %d", len(ideas))
	}
	stored := ideas[0]
	if stored.UserID != "U1" || stored.UserName != "Alice" ||
		stored.Title != "Dark mode" || stored.Description != "Add a dark theme" ||
		stored.Timestamp != 1000 || stored.Votes != (idea.Votes{}) {
		t.Fatalf("unexpected stored idea: %+v", stored)
	}

	sent := platform.lastEphemeral(t)
	if !strings.Contains(sent.fallback, "has been submitted") {
		t.Errorf("expected submission acknowledgment, got %q", sent.fallback)
	}

	// The reaction lookup sees the original message at the same timestamp.
	platform.messageAtFn = func(channelID, ts string) (string, string, int64, error) {
		return messageText, "U1", 1000, nil
	}

	reaction := ReactionEvent{
		Reaction:  "thumbsup",
		UserID:    "U2",
		ChannelID: "C1",
		ItemType:  "message",
		ItemTS:    "1000.000100",
	}
	service.HandleReaction(ctx, reaction)

	updated, err := redisStore.GetByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Votes.Upvotes != 1 || updated.Votes.Downvotes != 0 {
		t.Fatalf("expected votes {1 0} after reaction, got %+v", updated.Votes)
	}

	reaction.Removed = true
	service.HandleReaction(ctx, reaction)

	updated, err = redisStore.GetByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Votes.Upvotes != 0 || updated.Votes.Downvotes != 0 {
		t.Fatalf("expected votes {0 0} after removal, got %+v", updated.Votes)
	}
}

func TestEmptySubmissionPrompts(t *testing.T) {
	platform := &fakePlatform{}
	service, redisStore := newTestService(t, config.Config{}, platform)
	ctx := context.Background()

	service.HandleMessage(ctx, "pi: ", "U1", "C1", 1000, "")

	count, err := redisStore.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no stored ideas, got %d", count)
	}

	sent := platform.lastEphemeral(t)
	if !strings.Contains(sent.fallback, "Please provide an idea") {
		t.Errorf("expected empty-submission prompt, got %q", sent.fallback)
	}
}

func TestDisplayNameFallback(t *testing.T) {
	platform := &fakePlatform{
		displayNameFn: func(string) (string, error) { return "", errors.New("users.info failed") },
	}
	service, redisStore := newTestService(t, config.Config{}, platform)
	ctx := context.Background()

	service.HandleMessage(ctx, "pi: Idea", "U1", "C1", 1000, "")

	ideas, err := redisStore.ListAll(ctx)
	if err != nil || len(ideas) != 1 {
		t.Fatalf("expected 1 idea, got %d (err %v)", len(ideas), err)
	}
	if ideas[0].UserName != "U1" {
		t.Errorf("expected user name to fall back to the user ID, got %q", ideas[0].UserName)
	}
}

func TestSubmissionAnnouncement(t *testing.T) {
	platform := &fakePlatform{}
	service, _ := newTestService(t, config.Config{AnnounceSubmissions: true}, platform)

	service.HandleMessage(context.Background(), "pi: Dark mode | theme", "U1", "C1", 1000, "")

	if len(platform.channel) != 1 {
		t.Fatalf("expected 1 channel announcement, got %d", len(platform.channel))
	}
	if !strings.Contains(platform.channel[0].fallback, "submitted an idea *Dark mode: theme*") {
		t.Errorf("unexpected announcement: %q", platform.channel[0].fallback)
	}
}

func TestFetchAllLimitsToFive(t *testing.T) {
	platform := &fakePlatform{}
	service, redisStore := newTestService(t, config.Config{}, platform)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		title := fmt.Sprintf("Idea %d", i)
		if _, err := redisStore.Create(ctx, "U1", "alice", title, "", int64(i*100)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	service.HandleSlashCommand(ctx, "fetch all", "U1", "C1", "")

	sent := platform.lastEphemeral(t)
	var headers []string
	for _, block := range sent.blocks {
		if block.Type == message.BlockHeader {
			headers = append(headers, block.Text)
		}
	}
	if len(headers) != 5 {
		t.Fatalf("expected 5 ideas displayed, got %d", len(headers))
	}
	for i, want := range []string{"Idea 7", "Idea 6", "Idea 5", "Idea 4", "Idea 3"} {
		if headers[i] != want {
			t.Errorf("position %d: expected %q, got %q", i, want, headers[i])
		}
	}
}

func TestFetchToday(t *testing.T) {
	platform := &fakePlatform{}
	service, redisStore := newTestService(t, config.Config{}, platform)
	ctx := context.Background()

	now := time.Unix(1_000_000, 0)
	service.now = func() time.Time { return now }

	if _, err := redisStore.Create(ctx, "U1", "alice", "Fresh", "", now.Unix()-60); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := redisStore.Create(ctx, "U1", "alice", "Stale", "", now.Unix()-25*60*60); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	service.HandleSlashCommand(ctx, "fetch today", "U1", "C1", "")

	sent := platform.lastEphemeral(t)
	var headers []string
	for _, block := range sent.blocks {
		if block.Type == message.BlockHeader {
			headers = append(headers, block.Text)
		}
	}
	if len(headers) != 1 || headers[0] != "Fresh" {
		t.Errorf("expected only the fresh idea, got %v", headers)
	}
}

func TestFetchMentionSubcommand(t *testing.T) {
	platform := &fakePlatform{}
	service, redisStore := newTestService(t, config.Config{}, platform)
	ctx := context.Background()

	if _, err := redisStore.Create(ctx, "U2", "bob", "Bob's idea", "", 100); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := redisStore.Create(ctx, "U3", "carol", "Carol's idea", "", 200); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	service.HandleSlashCommand(ctx, "fetch <@U2>", "U1", "C1", "")

	sent := platform.lastEphemeral(t)
	var headers []string
	for _, block := range sent.blocks {
		if block.Type == message.BlockHeader {
			headers = append(headers, block.Text)
		}
	}
	if len(headers) != 1 || headers[0] != "Bob's idea" {
		t.Errorf("expected only Bob's idea, got %v", headers)
	}
}

func TestCountVariants(t *testing.T) {
	platform := &fakePlatform{}
	service, redisStore := newTestService(t, config.Config{}, platform)
	ctx := context.Background()

	for i, userID := range []string{"U1", "U1", "U2"} {
		if _, err := redisStore.Create(ctx, userID, "someone", "Idea", "", int64(i)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	service.HandleSlashCommand(ctx, "count", "U1", "C1", "")
	if got := platform.lastEphemeral(t).fallback; got != "There are a total of 3 ideas submitted." {
		t.Errorf("unexpected total sentence: %q", got)
	}

	service.HandleSlashCommand(ctx, "count me", "U1", "C1", "")
	if got := platform.lastEphemeral(t).fallback; got != "You have submitted 2 ideas." {
		t.Errorf("unexpected me sentence: %q", got)
	}

	service.HandleSlashCommand(ctx, "count <@U2>", "U1", "C1", "")
	if got := platform.lastEphemeral(t).fallback; got != "<@U2> has submitted 1 ideas." {
		t.Errorf("unexpected mention sentence: %q", got)
	}
}

func TestUnknownCommandSkipsStore(t *testing.T) {
	platform := &fakePlatform{}
	counting := &fakeStore{}
	service := New(config.Config{}, counting, platform)

	service.HandleSlashCommand(context.Background(), "frobnicate", "U1", "C1", "")

	if counting.calls != 0 {
		t.Errorf("expected no store access, got %d calls", counting.calls)
	}
	sent := platform.lastEphemeral(t)
	if !strings.Contains(sent.fallback, "Invalid command") {
		t.Errorf("expected invalid-command response, got %q", sent.fallback)
	}
}

func TestUnknownSubcommandInvalid(t *testing.T) {
	platform := &fakePlatform{}
	counting := &fakeStore{}
	service := New(config.Config{}, counting, platform)

	service.HandleSlashCommand(context.Background(), "fetch everything", "U1", "C1", "")

	if counting.calls != 0 {
		t.Errorf("expected no store access, got %d calls", counting.calls)
	}
	if !strings.Contains(platform.lastEphemeral(t).fallback, "Invalid command") {
		t.Errorf("expected invalid-command response")
	}
}

func TestReactionIgnoresNonVoteEmoji(t *testing.T) {
	platform := &fakePlatform{}
	counting := &fakeStore{}
	service := New(config.Config{}, counting, platform)

	service.HandleReaction(context.Background(), ReactionEvent{
		Reaction:  "eyes",
		UserID:    "U1",
		ChannelID: "C1",
		ItemType:  "message",
		ItemTS:    "1000.000100",
	})

	if platform.messageAtCalls != 0 {
		t.Error("non-vote reaction should not fetch the message")
	}
	if counting.calls != 0 {
		t.Error("non-vote reaction should not touch the store")
	}
}

func TestReactionIgnoresNonMessageItems(t *testing.T) {
	platform := &fakePlatform{}
	counting := &fakeStore{}
	service := New(config.Config{}, counting, platform)

	service.HandleReaction(context.Background(), ReactionEvent{
		Reaction:  "thumbsup",
		UserID:    "U1",
		ChannelID: "C1",
		ItemType:  "file",
		ItemTS:    "1000.000100",
	})

	if platform.messageAtCalls != 0 || counting.calls != 0 {
		t.Error("reaction on a non-message item should be ignored entirely")
	}
}

func TestReactionIgnoresNonSubmissionMessages(t *testing.T) {
	platform := &fakePlatform{
		messageAtFn: func(string, string) (string, string, int64, error) {
			return "just chatting", "U1", 1000, nil
		},
	}
	counting := &fakeStore{}
	service := New(config.Config{}, counting, platform)

	service.HandleReaction(context.Background(), ReactionEvent{
		Reaction:  "thumbsup",
		UserID:    "U2",
		ChannelID: "C1",
		ItemType:  "message",
		ItemTS:    "1000.000100",
	})

	if counting.calls != 0 {
		t.Error("reaction on a non-submission message should not touch the store")
	}
}

func TestReactionCorrelationMismatchSwallowed(t *testing.T) {
	platform := &fakePlatform{
		displayNameFn: func(string) (string, error) { return "Alice", nil },
	}
	service, redisStore := newTestService(t, config.Config{}, platform)
	ctx := context.Background()

	service.HandleMessage(ctx, "pi: Dark mode | theme", "U1", "C1", 1000, "")

	// The fetched message claims a different author than the stored record.
	platform.messageAtFn = func(string, string) (string, string, int64, error) {
		return "pi: Dark mode | theme", "U9", 1000, nil
	}

	service.HandleReaction(ctx, ReactionEvent{
		Reaction:  "thumbsup",
		UserID:    "U2",
		ChannelID: "C1",
		ItemType:  "message",
		ItemTS:    "1000.000100",
	})

	ideas, err := redisStore.ListAll(ctx)
	if err != nil || len(ideas) != 1 {
		t.Fatalf("expected 1 idea, got %d (err %v)", len(ideas), err)
	}
	if ideas[0].Votes != (idea.Votes{}) {
		t.Errorf("mismatched correlation must not change votes, got %+v", ideas[0].Votes)
	}
}

func TestReactionDownvote(t *testing.T) {
	platform := &fakePlatform{
		displayNameFn: func(string) (string, error) { return "Alice", nil },
	}
	service, redisStore := newTestService(t, config.Config{}, platform)
	ctx := context.Background()

	service.HandleMessage(ctx, "pi: Dark mode", "U1", "C1", 1000, "")
	platform.messageAtFn = func(string, string) (string, string, int64, error) {
		return "pi: Dark mode", "U1", 1000, nil
	}

	service.HandleReaction(ctx, ReactionEvent{
		Reaction:  "thumbsdown",
		UserID:    "U2",
		ChannelID: "C1",
		ItemType:  "message",
		ItemTS:    "1000.000100",
	})

	ideas, _ := redisStore.ListAll(ctx)
	if len(ideas) != 1 || ideas[0].Votes.Downvotes != 1 || ideas[0].Votes.Upvotes != 0 {
		t.Fatalf("expected votes {0 1}, got %+v", ideas[0].Votes)
	}
}

func TestHelpCommand(t *testing.T) {
	platform := &fakePlatform{}
	service := New(config.Config{}, &fakeStore{}, platform)

	service.HandleSlashCommand(context.Background(), "help", "U1", "C1", "")

	sent := platform.lastEphemeral(t)
	if len(sent.blocks) == 0 || sent.blocks[0].Type != message.BlockHeader {
		t.Fatalf("expected help blocks starting with a header, got %+v", sent.blocks)
	}
	if sent.blocks[0].Text != "Fork This Idea - Help" {
		t.Errorf("unexpected help header: %q", sent.blocks[0].Text)
	}
}
