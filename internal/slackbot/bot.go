// Package slackbot connects the service to Slack over socket mode and
// adapts Slack's event types to the service's trigger handlers. It also
// implements the platform interface the service sends responses through.
package slackbot

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"forkthisidea/bot/internal/app"
	"forkthisidea/bot/internal/message"
)

const slashCommand = "/forkthisidea"

// submissionPattern mirrors the message matcher the bot registers: a PI
// prefix, optional colon, then whitespace before the idea text.
var submissionPattern = regexp.MustCompile(`^[Pp][Ii]:?\s+`)

// Bot owns the Slack clients. It satisfies app.Platform for outbound sends
// and feeds inbound socket-mode events to an app.Service.
type Bot struct {
	api    *slack.Client
	socket *socketmode.Client
	selfID string
}

func New(botToken, appToken string) *Bot {
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	return &Bot{
		api:    api,
		socket: socketmode.New(api),
	}
}

// Run starts the socket-mode loop and dispatches events to service until
// ctx is canceled.
func (b *Bot) Run(ctx context.Context, service *app.Service) error {
	auth, err := b.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("auth test: %w", err)
	}
	b.selfID = auth.UserID
	log.Printf("connected to Slack as %s (%s)", auth.User, b.selfID)

	go b.dispatchEvents(ctx, service)
	return b.socket.RunContext(ctx)
}

func (b *Bot) dispatchEvents(ctx context.Context, service *app.Service) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socket.Events:
			if !ok {
				return
			}
			b.handleEvent(ctx, service, evt)
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, service *app.Service, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return
		}
		b.socket.Ack(*evt.Request)
		if cmd.Command != slashCommand {
			return
		}
		service.HandleSlashCommand(ctx, cmd.Text, cmd.UserID, cmd.ChannelID, "")

	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.socket.Ack(*evt.Request)
		b.handleEventsAPI(ctx, service, apiEvent)

	case socketmode.EventTypeConnectionError:
		log.Printf("slack connection error: %v", evt.Data)
	}
}

func (b *Bot) handleEventsAPI(ctx context.Context, service *app.Service, apiEvent slackevents.EventsAPIEvent) {
	switch inner := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		if inner.BotID != "" || inner.SubType != "" {
			return
		}
		if !submissionPattern.MatchString(inner.Text) {
			return
		}
		threadTS := inner.ThreadTimeStamp
		if threadTS == "" {
			threadTS = inner.TimeStamp
		}
		service.HandleMessage(ctx, inner.Text, inner.User, inner.Channel, TimestampSeconds(inner.TimeStamp), threadTS)

	case *slackevents.ReactionAddedEvent:
		service.HandleReaction(ctx, app.ReactionEvent{
			Reaction:  inner.Reaction,
			UserID:    inner.User,
			ChannelID: inner.Item.Channel,
			ItemType:  inner.Item.Type,
			ItemTS:    inner.Item.Timestamp,
		})

	case *slackevents.ReactionRemovedEvent:
		service.HandleReaction(ctx, app.ReactionEvent{
			Reaction:  inner.Reaction,
			UserID:    inner.User,
			ChannelID: inner.Item.Channel,
			ItemType:  inner.Item.Type,
			ItemTS:    inner.Item.Timestamp,
			Removed:   true,
		})

	case *slackevents.MemberJoinedChannelEvent:
		if inner.User != b.selfID {
			return
		}
		name := inner.Channel
		info, err := b.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{ChannelID: inner.Channel})
		if err != nil {
			log.Printf("resolve channel name for %s: %v", inner.Channel, err)
		} else {
			name = "#" + info.Name
		}
		service.HandleBotJoinedChannel(ctx, inner.Channel, name)
	}
}

// SendEphemeral posts a message visible only to userID in channelID.
func (b *Bot) SendEphemeral(ctx context.Context, channelID, userID string, blocks []message.Block, fallback, threadTS string) error {
	opts := []slack.MsgOption{
		slack.MsgOptionBlocks(toSlackBlocks(blocks)...),
		slack.MsgOptionText(fallback, false),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}
	if _, err := b.api.PostEphemeralContext(ctx, channelID, userID, opts...); err != nil {
		return fmt.Errorf("post ephemeral: %w", err)
	}
	return nil
}

// SendChannelMessage posts a message to channelID.
func (b *Bot) SendChannelMessage(ctx context.Context, channelID string, blocks []message.Block, fallback, threadTS string) error {
	opts := []slack.MsgOption{
		slack.MsgOptionBlocks(toSlackBlocks(blocks)...),
		slack.MsgOptionText(fallback, false),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}
	if _, _, err := b.api.PostMessageContext(ctx, channelID, opts...); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

// UserDisplayName resolves a user's display name, preferring the profile
// display name over the real name.
func (b *Bot) UserDisplayName(ctx context.Context, userID string) (string, error) {
	user, err := b.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("users.info for %s: %w", userID, err)
	}
	if user.Profile.DisplayName != "" {
		return user.Profile.DisplayName, nil
	}
	if user.Profile.RealName != "" {
		return user.Profile.RealName, nil
	}
	return userID, nil
}

// MessageAt fetches the single message posted at ts in channelID.
func (b *Bot) MessageAt(ctx context.Context, channelID, ts string) (string, string, int64, error) {
	history, err := b.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    ts,
		Limit:     1,
		Inclusive: true,
	})
	if err != nil {
		return "", "", 0, fmt.Errorf("conversations.history for %s at %s: %w", channelID, ts, err)
	}
	if len(history.Messages) == 0 {
		return "", "", 0, fmt.Errorf("no message found in %s at %s", channelID, ts)
	}
	msg := history.Messages[0]
	return msg.Text, msg.User, TimestampSeconds(msg.Timestamp), nil
}

// TimestampSeconds converts a Slack message timestamp ("1700000000.123456")
// to whole Unix seconds, the precision ideas are stored with.
func TimestampSeconds(ts string) int64 {
	seconds, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return 0
	}
	return int64(seconds)
}
