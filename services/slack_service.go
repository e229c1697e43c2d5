package services

import (
	"context"

	"github.com/slack-go/slack"

	"paymenthook/logging"
)

// Notifier posts operator notifications. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

type SlackService struct {
	client    *slack.Client
	channelID string
}

// NewSlackService posts to channelID. apiURL overrides the Slack API endpoint when set and must end with a slash.
func NewSlackService(botToken, channelID, apiURL string) *SlackService {
	var opts []slack.Option
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &SlackService{
		client:    slack.New(botToken, opts...),
		channelID: channelID,
	}
}

// Notify never fails the caller; errors are logged
func (s *SlackService) Notify(ctx context.Context, text string) {
	_, ts, err := s.client.PostMessageContext(ctx, s.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		logging.For(ctx, "Slack").Error("error posting notification", "channel", s.channelID, "error", err)
		return
	}
	logging.For(ctx, "Slack").Debug("notification posted", "channel", s.channelID, "ts", ts)
}

// NopNotifier drops every notification. Used when no Slack token is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string) {}
