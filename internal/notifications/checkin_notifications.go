package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"confms/internal/domain/storage"

	"github.com/9ssi7/exponent"
)

// SendCheckinConfirmation notifies an attendee on every device that their
// badge scan was recorded.
func SendCheckinConfirmation(ctx context.Context, push PushSender, store *storage.Container, userID, conferenceID int64, conferenceName, status string) error {
	tokensMap, err := store.PushTokens.TokensForUsers(ctx, []int64{userID})
	if err != nil {
		return err
	}
	tokens := dedupe(tokensMap[userID])
	if len(tokens) == 0 {
		return errors.New("no push tokens")
	}

	title := "Checked in"
	body := fmt.Sprintf("Welcome to %s!", conferenceName)
	if status == "checked-out" {
		title = "Checked out"
		body = fmt.Sprintf("See you next time at %s.", conferenceName)
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":          "checkin",
				"status":        status,
				"conference_id": strconv.FormatInt(conferenceID, 10),
				"screen":        fmt.Sprintf("my-events/%d", conferenceID),
			},
		})
	}

	_, err = push.Publish(ctx, msgs)
	return err
}

// SendSessionReminder fans a session start reminder out to every registered
// attendee of the conference.
func SendSessionReminder(ctx context.Context, push PushSender, store *storage.Container, userIDs []int64, sessionTitle string, sessionID int64) error {
	tokensMap, err := store.PushTokens.TokensForUsers(ctx, userIDs)
	if err != nil {
		return err
	}

	var all []string
	for _, tokens := range tokensMap {
		all = append(all, tokens...)
	}
	all = dedupe(all)
	if len(all) == 0 {
		return nil
	}

	msgs := make([]*exponent.Message, 0, len(all))
	for _, t := range all {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: "Starting soon",
			Body:  fmt.Sprintf("%s starts in 15 minutes", sessionTitle),
			Data: map[string]string{
				"type":       "session_reminder",
				"session_id": strconv.FormatInt(sessionID, 10),
				"screen":     fmt.Sprintf("sessions/%d", sessionID),
			},
		})
	}

	_, err = push.Publish(ctx, msgs)
	return err
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
