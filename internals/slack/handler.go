// Package slack is the chat surface: mention the bot or DM it a question
// about the course materials and it answers in the thread, citing sources.
package slack

import (
	"context"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/edudocs/coursebot/internals/tools"
)

// Assistant answers one question within a session.
type Assistant interface {
	Query(ctx context.Context, query, sessionID string) (string, []tools.Source, error)
}

type Handler struct {
	client    *slack.Client
	socket    *socketmode.Client
	botID     string
	assistant Assistant
	log       *slog.Logger
}

func NewHandler(botToken, appToken string, assistant Assistant, log *slog.Logger) (*Handler, error) {
	api := slack.New(
		botToken,
		slack.OptionAppLevelToken(appToken),
	)

	socket := socketmode.New(
		api,
		socketmode.OptionLog(slog.NewLogLogger(log.Handler(), slog.LevelDebug)),
	)

	// Resolve the bot's own user ID so we can strip mentions from message text.
	authResp, err := api.AuthTest()
	if err != nil {
		return nil, err
	}

	return &Handler{
		client:    api,
		socket:    socket,
		botID:     authResp.UserID,
		assistant: assistant,
		log:       log,
	}, nil
}

func (h *Handler) Run(ctx context.Context) error {
	go func() {
		if err := h.socket.RunContext(ctx); err != nil {
			h.log.Error("socket mode stopped", "err", err)
		}
	}()

	for evt := range h.socket.Events {
		switch evt.Type {
		case socketmode.EventTypeEventsAPI:
			h.socket.Ack(*evt.Request)
			h.handleEventsAPI(ctx, evt)
		case socketmode.EventTypeConnecting:
			h.log.Info("connecting to slack")
		case socketmode.EventTypeConnected:
			h.log.Info("connected to slack")
		case socketmode.EventTypeConnectionError:
			h.log.Error("slack connection error")
		}
	}
	return nil
}

func (h *Handler) handleEventsAPI(ctx context.Context, evt socketmode.Event) {
	payload, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}
	if payload.Type != slackevents.CallbackEvent {
		return
	}

	switch ev := payload.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		h.dispatch(ctx, ev.Channel, threadTS(ev.ThreadTimeStamp, ev.TimeStamp), h.stripMention(ev.Text))

	case *slackevents.MessageEvent:
		// Ignore bot messages to avoid feedback loops.
		if ev.BotID != "" || ev.SubType == "bot_message" {
			return
		}
		h.dispatch(ctx, ev.Channel, threadTS(ev.ThreadTimeStamp, ev.TimeStamp), ev.Text)
	}
}

// dispatch answers one question. The thread timestamp doubles as the
// session ID, so follow-ups in a thread share history.
func (h *Handler) dispatch(ctx context.Context, channelID, threadTS, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	h.log.Info("incoming question", "channel", channelID, "thread", threadTS)

	answer, sources, err := h.assistant.Query(ctx, text, "slack-"+threadTS)
	if err != nil {
		h.log.Error("query failed", "thread", threadTS, "err", err)
		h.postReply(channelID, threadTS, "Sorry, something went wrong. Please try again.")
		return
	}

	h.postReply(channelID, threadTS, formatReply(answer, sources))
}

func formatReply(answer string, sources []tools.Source) string {
	if len(sources) == 0 {
		return answer
	}
	var b strings.Builder
	b.WriteString(answer)
	b.WriteString("\n\n*Sources:*")
	for _, src := range sources {
		if src.Link != "" {
			b.WriteString("\n• <" + src.Link + "|" + src.Label + ">")
		} else {
			b.WriteString("\n• " + src.Label)
		}
	}
	return b.String()
}

func (h *Handler) postReply(channelID, threadTS, text string) {
	_, _, err := h.client.PostMessage(
		channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS), // reply in thread
	)
	if err != nil {
		h.log.Error("failed to post message", "err", err)
	}
}

func (h *Handler) stripMention(text string) string {
	mention := "<@" + h.botID + ">"
	return strings.TrimSpace(strings.TrimPrefix(text, mention))
}

func threadTS(threadTS, msgTS string) string {
	if threadTS != "" {
		return threadTS
	}
	return msgTS
}
