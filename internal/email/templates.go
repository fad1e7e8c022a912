package email

import (
	"fmt"
	"strings"
	"time"
)

type Message struct {
	Subject string
	Body    string
}

type GameReminderDetails struct {
	Sport       string
	Gym         string
	Date        string
	TimeRange   string
	PlayerCount int
	Notes       string
	GameURL     string
}

func FormatDateTimeRange(start, end time.Time) (string, string) {
	date := start.Format("Monday, Jan 2, 2006")
	timeRange := fmt.Sprintf("%s - %s %s", start.Format("3:04 PM"), end.Format("3:04 PM"), start.Format("MST"))
	return date, timeRange
}

func BuildGameReminder(details GameReminderDetails) Message {
	sport := strings.TrimSpace(details.Sport)
	if sport == "" {
		sport = "pickup"
	}
	gym := strings.TrimSpace(details.Gym)
	if gym == "" {
		gym = "TBD"
	}

	lines := []string{
		fmt.Sprintf("Reminder: your %s game is coming up.", sport),
		"",
		fmt.Sprintf("Gym: %s", gym),
		fmt.Sprintf("Date: %s", strings.TrimSpace(details.Date)),
		fmt.Sprintf("Time: %s", strings.TrimSpace(details.TimeRange)),
		fmt.Sprintf("Players signed up: %d", details.PlayerCount),
	}
	if notes := strings.TrimSpace(details.Notes); notes != "" {
		lines = append(lines, fmt.Sprintf("Notes: %s", notes))
	}
	if details.GameURL != "" {
		lines = append(lines, "", details.GameURL)
	}

	return Message{
		Subject: fmt.Sprintf("Upcoming %s game at %s", sport, gym),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildWelcomeEmail(appName, baseURL string) Message {
	if appName == "" {
		appName = "Pickup"
	}
	lines := []string{
		fmt.Sprintf("Welcome to %s!", appName),
		"",
		"Your account is ready. Log in to find a game or host your own.",
	}
	if baseURL != "" {
		lines = append(lines, "", strings.TrimRight(baseURL, "/")+"/login")
	}

	return Message{
		Subject: fmt.Sprintf("Welcome to %s", appName),
		Body:    strings.Join(lines, "\n"),
	}
}
