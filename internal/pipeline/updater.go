package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cardninja/cardsync/internal/fetch"
	"github.com/cardninja/cardsync/internal/model"
	"github.com/cardninja/cardsync/internal/store"
)

// Extractor is the completion-backed extraction step.
type Extractor interface {
	Extract(ctx context.Context, content, cardName, issuer string) (*model.ExtractionResult, error)
}

// Options wires an Updater.
type Options struct {
	Fetcher   *fetch.Fetcher
	Assembler *Assembler
	Extractor Extractor

	SourcesPath string
	CardsPath   string
	RunLogPath  string

	Provider string
	Model    string

	// CardDelay spaces successive card updates (rate-limit courtesy).
	CardDelay time.Duration
	// Force bypasses the refreshed-today skip.
	Force bool

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Updater processes the catalog strictly sequentially, one card at a time,
// checkpointing the full dataset to disk after every card so an interrupted
// run loses at most the in-flight card.
type Updater struct {
	opts Options
	now  func() time.Time
}

// NewUpdater creates an Updater.
func NewUpdater(opts Options) *Updater {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Updater{opts: opts, now: now}
}

// Summary reports the run's per-card outcomes.
type Summary struct {
	Total   int      `json:"total"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
	Cards   []Result `json:"cards"`
}

// Result is one card's outcome in the summary.
type Result struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
}

// Run updates every card in catalog order. Per-card failures degrade to
// fallback outcomes; only configuration and checkpoint-write errors abort
// the run.
func (u *Updater) Run(ctx context.Context) (*Summary, error) {
	sources, err := store.LoadCatalog(u.opts.SourcesPath)
	if err != nil {
		return nil, err
	}

	ds := store.LoadDataset(u.opts.CardsPath)
	existing := ds.Index()
	zap.L().Info("updater: starting run",
		zap.Int("sources", len(sources)),
		zap.Int("existing_cards", len(ds.Cards)),
		zap.String("provider", u.opts.Provider),
		zap.String("model", u.opts.Model),
	)

	// Slots in catalog order, seeded with prior records so an early crash
	// never drops data for cards not yet reached.
	slots := make([]*model.CardRecord, len(sources))
	for i, src := range sources {
		if rec, ok := existing[src.ID]; ok {
			r := rec
			slots[i] = &r
		}
	}

	var limiter *rate.Limiter
	if u.opts.CardDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(u.opts.CardDelay), 1)
	}

	summary := &Summary{Total: len(sources)}
	var updated, failed []model.CardSource

	for i, src := range sources {
		prior := slots[i]

		if !u.opts.Force && prior != nil && model.SameCalendarDay(prior.LastUpdated, u.now()) {
			advance(src.ID, statePending, stateSkipped)
			zap.L().Info("updater: already refreshed today, skipping",
				zap.String("card", src.ID),
			)
			summary.Skipped++
			summary.Cards = append(summary.Cards, Result{ID: src.ID, Outcome: model.OutcomeSkipped.String()})
			continue
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return summary, eris.Wrap(err, "updater: wait for card slot")
			}
		}

		outcome := u.updateCard(ctx, src, prior)
		rec := outcome.Record
		slots[i] = &rec

		switch outcome.Kind {
		case model.OutcomeUpdated:
			summary.Updated++
			updated = append(updated, src)
		default:
			summary.Failed++
			failed = append(failed, src)
		}
		summary.Cards = append(summary.Cards, Result{ID: src.ID, Outcome: outcome.Kind.String()})

		// Checkpoint after every card; a write failure must abort rather
		// than let the run continue believing progress was saved.
		ds.LastUpdated = u.now()
		ds.Cards = collect(slots)
		if err := store.SaveDataset(u.opts.CardsPath, ds); err != nil {
			return summary, err
		}
		zap.L().Info("updater: progress saved",
			zap.Int("updated", summary.Updated),
			zap.Int("failed", summary.Failed),
		)
	}

	// Final save covers the all-skipped case where no checkpoint ran.
	ds.Cards = collect(slots)
	if err := store.SaveDataset(u.opts.CardsPath, ds); err != nil {
		return summary, err
	}

	// The run log records only runs that attempted something.
	if len(updated)+len(failed) > 0 {
		entry := store.RunEntry{
			Timestamp: u.now(),
			Provider:  u.opts.Provider,
			Model:     u.opts.Model,
			Updated:   updated,
			Failed:    failed,
		}
		if err := store.AppendRunLog(u.opts.RunLogPath, entry); err != nil {
			zap.L().Warn("updater: run log write failed", zap.Error(err))
		}
	}

	zap.L().Info("updater: run complete",
		zap.Int("total", summary.Total),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// updateCard walks one card through the state machine. All errors are
// absorbed here and converted into a fallback outcome.
func (u *Updater) updateCard(ctx context.Context, src model.CardSource, prior *model.CardRecord) model.Outcome {
	zap.L().Info("updater: processing card",
		zap.String("card", src.ID),
		zap.String("issuer", src.Issuer),
		zap.String("url", src.URL),
	)

	state := advance(src.ID, statePending, stateFetching)
	content, links := u.opts.Fetcher.Fetch(ctx, src.URL, true)
	if content == "" {
		advance(src.ID, state, stateFallback)
		zap.L().Warn("updater: page fetch failed, keeping prior data",
			zap.String("card", src.ID),
		)
		return u.fallback(src, prior)
	}

	state = advance(src.ID, state, stateAssembling)
	content = u.opts.Assembler.Assemble(ctx, content, links)

	state = advance(src.ID, state, stateExtracting)
	result, err := u.opts.Extractor.Extract(ctx, content, src.Name, src.Issuer)
	if err != nil {
		advance(src.ID, state, stateFallback)
		zap.L().Warn("updater: extraction failed, keeping prior data",
			zap.String("card", src.ID),
			zap.Error(err),
		)
		return u.fallback(src, prior)
	}

	advance(src.ID, state, stateMerged)
	return model.Outcome{
		Kind:   model.OutcomeUpdated,
		Record: mergeRecord(src, result, u.now()),
	}
}

// fallback preserves the prior record verbatim (original timestamp
// included, so the card is retried next run) or synthesizes a placeholder
// when the card has never been captured.
func (u *Updater) fallback(src model.CardSource, prior *model.CardRecord) model.Outcome {
	if prior != nil {
		return model.Outcome{Kind: model.OutcomeFallback, Record: *prior}
	}
	return model.Outcome{Kind: model.OutcomeFallback, Record: model.PlaceholderRecord(src)}
}

// mergeRecord combines extracted reward data with the card's fixed catalog
// identity and the run timestamp.
func mergeRecord(src model.CardSource, res *model.ExtractionResult, now time.Time) model.CardRecord {
	return model.CardRecord{
		ID:                 src.ID,
		Name:               src.Name,
		Issuer:             src.Issuer,
		Color:              src.Color,
		Image:              src.Image,
		AnnualFee:          res.AnnualFee,
		Categories:         res.Categories,
		CategoryDetails:    res.CategoryDetails,
		RewardType:         res.RewardType,
		PointValue:         *res.PointValue,
		SpecialOffers:      res.SpecialOffers,
		Exclusions:         res.Exclusions,
		SpendingCaps:       res.SpendingCaps,
		RotatingCategories: res.RotatingCategories,
		Credits:            res.Credits,
		Notes:              res.Notes,
		SourceURL:          src.URL,
		LastUpdated:        now,
	}
}

func collect(slots []*model.CardRecord) []model.CardRecord {
	cards := make([]model.CardRecord, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			cards = append(cards, *s)
		}
	}
	return cards
}
