package slackbot

import (
	"github.com/slack-go/slack"

	"forkthisidea/bot/internal/message"
)

// toSlackBlocks translates the service's block variants into Slack block
// kit objects.
func toSlackBlocks(blocks []message.Block) []slack.Block {
	out := make([]slack.Block, 0, len(blocks))
	for _, block := range blocks {
		switch block.Type {
		case message.BlockHeader:
			text := slack.NewTextBlockObject(slack.PlainTextType, nonEmpty(block.Text), true, false)
			if block.BlockID != "" {
				out = append(out, slack.NewHeaderBlock(text, slack.HeaderBlockOptionBlockID(block.BlockID)))
			} else {
				out = append(out, slack.NewHeaderBlock(text))
			}

		case message.BlockSection:
			text := slack.NewTextBlockObject(slack.MarkdownType, nonEmpty(block.Text), false, false)
			out = append(out, slack.NewSectionBlock(text, nil, nil))

		case message.BlockContext:
			elements := make([]slack.MixedElement, 0, len(block.Elements))
			for _, element := range block.Elements {
				elements = append(elements, slack.NewTextBlockObject(slack.MarkdownType, nonEmpty(element), false, false))
			}
			out = append(out, slack.NewContextBlock(block.BlockID, elements...))

		case message.BlockActions:
			elements := make([]slack.BlockElement, 0, len(block.Buttons))
			for _, button := range block.Buttons {
				label := slack.NewTextBlockObject(slack.PlainTextType, nonEmpty(button.Text), false, false)
				element := slack.NewButtonBlockElement(button.ActionID, "", label)
				element.URL = button.URL
				elements = append(elements, element)
			}
			out = append(out, slack.NewActionBlock(block.BlockID, elements...))

		case message.BlockDivider:
			out = append(out, slack.NewDividerBlock())
		}
	}
	return out
}

// Slack rejects empty text objects; a single space renders as blank.
func nonEmpty(text string) string {
	if text == "" {
		return " "
	}
	return text
}
