package scheduler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/pickup/internal/email"
	"github.com/codr1/pickup/internal/models"
)

const (
	reminderJobName    = "game_reminders"
	reminderJobWindow  = 15 * time.Minute
	reminderJobTimeout = 2 * time.Minute
)

// ReminderStore is the data the reminder job reads.
type ReminderStore interface {
	ListGamesStartingBetween(ctx context.Context, from, to time.Time) ([]models.Game, error)
	ListUsersByIDs(ctx context.Context, ids []string) ([]models.Account, error)
}

// ReminderJob emails every participant of games starting one lead time from
// now. Each run covers one window, so the cron interval should match
// reminderJobWindow or games are reminded twice or not at all.
type ReminderJob struct {
	Store    ReminderStore
	Sender   email.EmailSender
	Lead     time.Duration
	Location *time.Location
	BaseURL  string

	now func() time.Time
}

// RegisterReminderJobs schedules job on svc. A nil sender leaves the job
// registered but idle.
func RegisterReminderJobs(svc *Service, cronExpr string, job *ReminderJob) error {
	if job == nil || job.Store == nil {
		return fmt.Errorf("reminder jobs require a store")
	}

	jobLogger := log.With().
		Str("component", "game_reminders_job").
		Str("job_name", reminderJobName).
		Str("cron", cronExpr).
		Logger()

	_, err := svc.AddJob(reminderJobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if job.Sender == nil {
			jobLogger.Debug().Msg("Reminder job skipped: email not configured")
			return
		}
		if _, err := job.Run(ctx); err != nil {
			jobLogger.Error().Err(err).Msg("Reminder job failed")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add game reminder job: %w", err)
	}

	jobLogger.Info().Msg("Game reminder job registered")
	return nil
}

// Run sends reminders for games starting in [now+Lead, now+Lead+window) and
// returns the number of emails delivered.
func (j *ReminderJob) Run(ctx context.Context) (int, error) {
	logger := log.Ctx(ctx)
	nowFn := j.now
	if nowFn == nil {
		nowFn = time.Now
	}

	windowStart := nowFn().UTC().Add(j.Lead)
	windowEnd := windowStart.Add(reminderJobWindow)

	upcoming, err := j.Store.ListGamesStartingBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return 0, fmt.Errorf("load games for reminders: %w", err)
	}

	sent := 0
	for _, game := range upcoming {
		gameLogger := logger.With().Str("game_id", game.ID).Logger()
		n, err := j.remind(ctx, game, &gameLogger)
		if err != nil {
			gameLogger.Error().Err(err).Msg("Failed to send game reminders")
			continue
		}
		sent += n
	}

	logger.Info().
		Int("games", len(upcoming)).
		Int("sent", sent).
		Time("window_start", windowStart).
		Msg("Reminder job finished")
	return sent, nil
}

func (j *ReminderJob) remind(ctx context.Context, game models.Game, logger *zerolog.Logger) (int, error) {
	if len(game.PlayerIDs) == 0 {
		return 0, nil
	}

	participants, err := j.Store.ListUsersByIDs(ctx, game.PlayerIDs)
	if err != nil {
		return 0, fmt.Errorf("load participants: %w", err)
	}

	recipients := make([]string, 0, len(participants))
	seen := make(map[string]struct{}, len(participants))
	for _, participant := range participants {
		if _, dup := seen[participant.Email]; dup || participant.Email == "" {
			continue
		}
		seen[participant.Email] = struct{}{}
		recipients = append(recipients, participant.Email)
	}

	loc := j.Location
	if loc == nil {
		loc = time.Local
	}
	date, timeRange := email.FormatDateTimeRange(game.StartTime.In(loc), game.EndTime.In(loc))

	reminder := email.BuildGameReminder(email.GameReminderDetails{
		Sport:       game.Sport,
		Gym:         game.Gym,
		Date:        date,
		TimeRange:   timeRange,
		PlayerCount: len(game.PlayerIDs),
		Notes:       game.Notes,
		GameURL:     j.gameURL(game.ID),
	})

	return email.SendAll(ctx, j.Sender, recipients, reminder, logger), nil
}

func (j *ReminderJob) gameURL(id string) string {
	if j.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(j.BaseURL, "/") + "/games/" + url.PathEscape(id)
}
