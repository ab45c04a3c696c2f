package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reblograffle/internal/announce"
	"reblograffle/internal/config"
	"reblograffle/internal/mastodon"
	"reblograffle/internal/raffle"
	"reblograffle/internal/storage"
	logx "reblograffle/pkg/logx"
)

// Fetcher returns the entrants of a draw.
type Fetcher interface {
	RebloggedBy(ctx context.Context, url string) ([]mastodon.Account, error)
}

// Options are per-invocation switches (CLI flags).
type Options struct {
	DryRun  bool
	Confirm bool
}

// Deps are the collaborators of a run. Fetcher is required; Announcer is
// required unless DryRun. Everything else is optional.
type Deps struct {
	Fetcher   Fetcher
	Announcer announce.Announcer
	Store     storage.Store
	Confirmer Confirmer
	Source    raffle.Source

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
	Log   logx.Logger
}

// App runs one raffle draw.
type App struct {
	cfg      *config.Config
	opts     Options
	deps     Deps
	schedule *drawSchedule
	log      logx.Logger
}

func New(cfg *config.Config, opts Options, deps Deps) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if deps.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if opts.Confirm && deps.Confirmer == nil {
		return nil, errors.New("confirm requested but no confirmer")
	}
	if deps.Source == nil {
		deps.Source = raffle.NewSource()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sleep == nil {
		deps.Sleep = sleepCtx
	}
	log := deps.Log
	if log.IsZero() {
		log = logx.Nop()
	}

	sched, err := parseDrawAt(cfg.Raffle.DrawAt, cfg.Raffle.Timezone)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		opts:     opts,
		deps:     deps,
		schedule: sched,
		log:      log.With(logx.String("comp", "app")),
	}, nil
}

// Run performs one draw. The returned Outcome is always meaningful; err is
// non-nil when the draw did not complete.
func (a *App) Run(ctx context.Context) (Outcome, error) {
	drawID := storage.NewDrawID()
	postURL := a.cfg.Source.URL
	log := a.log.With(logx.String("draw_id", drawID))

	if err := a.waitForSchedule(ctx, log); err != nil {
		return a.fail(ctx, log, drawID, nil, 0, err), err
	}

	accounts, err := a.deps.Fetcher.RebloggedBy(ctx, postURL)
	if err != nil {
		return a.fail(ctx, log, drawID, nil, 0, err), err
	}
	log.Info("entrants fetched", logx.Int("count", len(accounts)))

	entrants := accounts
	if a.cfg.Raffle.Dedupe {
		entrants = raffle.Dedupe(entrants)
	}
	entrants = raffle.Exclude(entrants, a.cfg.Raffle.Exclude)
	if dropped := len(accounts) - len(entrants); dropped > 0 {
		log.Info("entrants filtered", logx.Int("dropped", dropped))
	}

	picked := raffle.Select(a.deps.Source, entrants, a.cfg.Raffle.MaxWinners)
	winners := raffle.WinnersFrom(picked)
	log.Info("winners drawn", logx.Int("winners", len(winners)), logx.Int("entrants", len(entrants)))

	data := DrawData{
		DrawID:   drawID,
		PostURL:  postURL,
		Entrants: len(entrants),
		Winners:  winners,
		DryRun:   a.opts.DryRun,
	}

	if !a.opts.DryRun {
		if err := a.announce(ctx, winners); err != nil {
			return a.fail(ctx, log, drawID, winners, len(entrants), err), err
		}
	} else {
		log.Info("dry run: announcement skipped")
	}

	a.record(ctx, log, storage.Draw{
		ID:       drawID,
		PostURL:  postURL,
		Entrants: len(entrants),
		Winners:  winners,
		OK:       true,
		DryRun:   a.opts.DryRun,
	})
	return Outcome{Status: true, Message: a.cfg.Message.Done, Data: data}, nil
}

func (a *App) waitForSchedule(ctx context.Context, log logx.Logger) error {
	if a.schedule == nil {
		return nil
	}
	now := a.deps.Now()
	next := a.schedule.Next(now)
	if next.IsZero() {
		return fmt.Errorf("%w: raffle.draw_at never fires", errScheduleWait)
	}
	log.Info("waiting for scheduled draw", logx.String("draw_at", a.schedule.raw), logx.Time("next", next))
	if err := a.deps.Sleep(ctx, next.Sub(now)); err != nil {
		return fmt.Errorf("%w: %w", errScheduleWait, err)
	}
	return nil
}

func (a *App) announce(ctx context.Context, winners []raffle.Winner) error {
	if a.opts.Confirm {
		ok, err := a.deps.Confirmer.Confirm(winners)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCancelled
		}
	}
	if a.deps.Announcer == nil {
		return ErrNoAnnouncer
	}
	m := a.cfg.Message
	msg := announce.NewMessage(announce.Template{
		Username:    m.Username,
		Content:     m.Content,
		Title:       m.Title,
		URL:         m.URL,
		Description: m.Description,
	}, winners)
	return a.deps.Announcer.Announce(ctx, msg)
}

// fail logs err, records the failed draw and builds the failure outcome.
func (a *App) fail(ctx context.Context, log logx.Logger, drawID string, winners []raffle.Winner, entrants int, err error) Outcome {
	stage := stageOf(err)
	if errors.Is(err, ErrCancelled) {
		log.Warn("draw cancelled")
	} else {
		log.Error("draw failed", logx.String("stage", stage), logx.Err(err))
	}

	if winners == nil {
		winners = []raffle.Winner{}
	}
	a.record(ctx, log, storage.Draw{
		ID:       drawID,
		PostURL:  a.cfg.Source.URL,
		Entrants: entrants,
		Winners:  winners,
		OK:       false,
		DryRun:   a.opts.DryRun,
		Error:    err.Error(),
	})

	return Outcome{
		Status:  false,
		Message: a.failureMessage(stage),
		Data:    FailureData{DrawID: drawID, Stage: stage},
	}
}

func (a *App) failureMessage(stage string) string {
	switch stage {
	case StageFetch:
		return a.cfg.Message.FetchFailed
	case StageConfirm:
		return msgCancelled
	default:
		return a.cfg.Message.NotifyFailed
	}
}

const msgCancelled = "추첨이 취소되었습니다."

// record appends to history. History is best-effort and never fails a run.
func (a *App) record(ctx context.Context, log logx.Logger, d storage.Draw) {
	if a.deps.Store == nil {
		return
	}
	d.At = a.deps.Now()
	// Record even when ctx was cancelled mid-run.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := a.deps.Store.AppendDraw(rctx, d); err != nil {
		log.Warn("history append failed", logx.Err(err))
	}
}
