package app

import (
	"fmt"
	"strings"
	"time"

	"forkthisidea/bot/internal/idea"
	"forkthisidea/bot/internal/message"
)

const invalidCommandFallback = "Invalid command. Type '/forkthisidea help' for more information."

func welcomeBlocks(channelName string) []message.Block {
	return message.NewBuilder().
		Section(fmt.Sprintf("Hello, people of %s! I'm the Fork This Idea app.\n"+
			"You can submit your ideas using the command 'PI: <title> | <description>'.\n"+
			"You can use /forkthisidea for more commands.\n"+
			"For more information, type '/forkthisidea help'.", channelName)).
		Blocks()
}

func helpBlocks(userID string) []message.Block {
	return message.NewBuilder().
		Header("Fork This Idea - Help", "").
		Section(fmt.Sprintf("Hello <@%s>! Here are the available commands:", userID)).
		Section("*Submit an idea:*\n`PI: <title> | <description>`\nYou can use 'Pi:' and 'pi:' as well.").
		Section("*Fetch ideas:*\n`/forkthisidea fetch [today|all|me]`\nRetrieve ideas by different criteria.").
		Section("*Count ideas:*\n`/forkthisidea count [me]`\nCount ideas for yourself or others.").
		Section("*Example:*\n`PI: My Idea | This is a description of my idea.`").
		Context("Ever need help? Type `/forkthisidea help`").
		Blocks()
}

func invalidCommandBlocks(userID string) []message.Block {
	return message.NewBuilder().
		Section(fmt.Sprintf("Hi <@%s>! That was an invalid command. Please use one of the following commands:\n"+
			"- '/forkthisidea fetch [today|all|me]': Fetch ideas by different criteria\n"+
			"- '/forkthisidea count [me]': Count ideas for yourself or others\n"+
			"- '/forkthisidea help': See detailed help information\n"+
			"Type '/forkthisidea help' for more information.", userID)).
		Blocks()
}

// appendIdeaDetails adds the display layout for one idea: title header,
// description section, submission context, a link button, and a divider.
func appendIdeaDetails(builder *message.Builder, item idea.Idea) {
	builder.
		Header(item.Title, fmt.Sprintf("header_block_%s", item.ID)).
		Section(item.Description).
		Context(fmt.Sprintf("Submitted by <@%s> on %s with %d upvotes and %d downvotes",
			item.UserID, formatTimestamp(item.Timestamp), item.Votes.Upvotes, item.Votes.Downvotes)).
		Actions(fmt.Sprintf("link_action_block_%s", item.ID), message.Button{
			Text: buttonLabel(item.Title),
			// TODO: link to the idea site with the idea ID as a query parameter.
			URL:      "https://google.com",
			ActionID: fmt.Sprintf("action_%s", item.ID),
		}).
		Divider()
}

func buttonLabel(title string) string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return "Untitled ..."
	}
	return words[0] + " ..."
}

func submissionDetailsText(userID, title, description string, timestamp int64) string {
	return fmt.Sprintf("<@%s> submitted an idea *%s: %s* at %s", userID, title, description, formatTimestamp(timestamp))
}

func submissionSuccessText(userID string) string {
	return fmt.Sprintf("Thank you <@%s>! Your idea has been submitted.", userID)
}

func submissionEmptyText(userID string) string {
	return fmt.Sprintf("Hello <@%s>! Please provide an idea with your command.", userID)
}

func noIdeasFoundText(userID string) string {
	return fmt.Sprintf("Sorry <@%s>, no ideas found.", userID)
}

func genericFailureText(userID string) string {
	return fmt.Sprintf("Sorry <@%s>, something went wrong. Please try again later.", userID)
}

func formatTimestamp(timestamp int64) string {
	return time.Unix(timestamp, 0).UTC().Format("2006-01-02 15:04:05 UTC")
}
