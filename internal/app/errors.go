package app

import (
	"errors"

	"reblograffle/internal/announce"
	"reblograffle/internal/mastodon"
)

var (
	// ErrCancelled means the operator declined the confirmation prompt.
	ErrCancelled = errors.New("draw cancelled by operator")
	// ErrNoAnnouncer means neither a webhook nor Telegram is configured and this is not a dry run.
	ErrNoAnnouncer = errors.New("no announcement channel configured (webhook.url or telegram)")

	errScheduleWait = errors.New("waiting for raffle.draw_at")
)

const (
	StageSchedule = "schedule"
	StageFetch    = "fetch"
	StageConfirm  = "confirm"
	StageNotify   = "notify"
)

// stageOf classifies a Run error.
func stageOf(err error) string {
	var fe *mastodon.FetchError
	var ne *announce.NotifyError
	switch {
	case errors.As(err, &fe):
		return StageFetch
	case errors.As(err, &ne), errors.Is(err, ErrNoAnnouncer):
		return StageNotify
	case errors.Is(err, ErrCancelled):
		return StageConfirm
	case errors.Is(err, errScheduleWait):
		return StageSchedule
	default:
		return ""
	}
}

// ExitCode maps a Run error to the process exit code.
func ExitCode(err error, exitZeroOnFailure bool) int {
	if err == nil || errors.Is(err, ErrCancelled) || exitZeroOnFailure {
		return 0
	}
	return 1
}
