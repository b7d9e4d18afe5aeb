package main

import (
	"context"
	"time"

	"confms/internal/notifications"
)

const (
	pushTokenMaxAge = 90 * 24 * time.Hour

	sessionReminderLead = 15 * time.Minute
	sessionReminderTick = time.Minute
)

func (app *application) pruneStalePushTokensDaily() {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		prune := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := app.store.PushTokens.PruneStale(ctx, pushTokenMaxAge); err != nil {
				app.logger.Errorf("Error pruning stale push tokens: %v", err)
			} else {
				app.logger.Infof("Pruned stale push tokens at %s", time.Now().Format(time.RFC1123))
			}
		}

		prune()
		for range ticker.C {
			prune()
		}
	}()
}

// remindUpcomingSessions polls for sessions starting sessionReminderLead from
// now and pushes a reminder to every registered attendee. Each tick covers a
// non-overlapping window so a session is reminded about once.
func (app *application) remindUpcomingSessions() {
	go func() {
		ticker := time.NewTicker(sessionReminderTick)
		defer ticker.Stop()

		last := time.Now().UTC().Add(sessionReminderLead)
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

			from := last
			to := time.Now().UTC().Add(sessionReminderLead)
			last = to

			sessions, err := app.store.Sessions.StartingBetween(ctx, from, to)
			if err != nil {
				app.logger.Errorw("listing upcoming sessions", "error", err)
				cancel()
				continue
			}

			for _, s := range sessions {
				userIDs, err := app.store.Registrations.UserIDsForConference(ctx, s.ConferenceID)
				if err != nil {
					app.logger.Errorw("listing session audience", "session_id", s.ID, "error", err)
					continue
				}
				if len(userIDs) == 0 {
					continue
				}
				if err := notifications.SendSessionReminder(ctx, app.push, app.store, userIDs, s.Title, s.ID); err != nil {
					app.logger.Errorw("sending session reminder", "session_id", s.ID, "error", err)
				}
			}
			cancel()
		}
	}()
}
