package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nagato/internal/boltstore"
	"nagato/internal/bot"
	"nagato/internal/cache"
	"nagato/internal/config"
	"nagato/internal/db"
	"nagato/internal/jobs"
	"nagato/internal/metrics"
	"nagato/internal/microblog"
	"nagato/internal/models"
	"nagato/internal/phrases"
	"nagato/internal/recommend"
	"nagato/internal/yahoo"
)

// replyStore is a reply log that can also list its history.
type replyStore interface {
	bot.ReplyLog
	RecentReplies(ctx context.Context, limit int) ([]models.ReplyRecord, error)
}

// app holds the collaborators built from the configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder *metrics.Recorder
	closers  []func()
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	return &app{cfg: cfg, logger: logger, recorder: metrics.New()}
}

// Close releases every opened resource, last opened first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// api builds the configured microblog backend.
func (a *app) api(ctx context.Context) (microblog.API, error) {
	switch a.cfg.Backend() {
	case config.BackendTwitter:
		hc := microblog.NewHTTPClient(ctx, a.cfg.TwitterAccessToken, a.cfg.HTTPTimeout)
		return microblog.NewTwitter(a.cfg.TwitterAPIBaseURL, hc, a.logger), nil
	case config.BackendMastodon:
		hc := microblog.NewHTTPClient(ctx, a.cfg.MastodonAccessToken, a.cfg.HTTPTimeout)
		return microblog.NewMastodon(a.cfg.MastodonAPIBaseURL, hc, a.logger), nil
	default:
		return nil, fmt.Errorf("%w: no microblog backend configured", config.ErrMissingCredentials)
	}
}

// replyStore opens Postgres when DATABASE_URL is set, else the bbolt state
// file when NAGATO_STATE_FILE is set. It returns nil when neither is.
func (a *app) replyStore(ctx context.Context) (replyStore, error) {
	switch {
	case a.cfg.DatabaseURL != "":
		database, err := db.New(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrations(a.cfg.DatabaseURL); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		a.closers = append(a.closers, database.Close)
		a.logger.Debug("reply log", "backend", "postgres")
		return database, nil
	case a.cfg.StateFile != "":
		store, err := boltstore.Open(a.cfg.StateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open state file: %w", err)
		}
		a.closers = append(a.closers, func() { store.Close() })
		a.logger.Debug("reply log", "backend", "bbolt", "path", a.cfg.StateFile)
		return store, nil
	default:
		return nil, nil
	}
}

// botOptions selects the optional parts of a Bot.
type botOptions struct {
	replies  bool // open the reply log
	refollow bool // reconcile followers at the end of a run
}

// bot wires a Bot for api with the Yahoo! services and optional cache.
func (a *app) bot(ctx context.Context, api microblog.API, opts botOptions) (*bot.Bot, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	file, err := config.LoadYAMLConfig(a.cfg.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", a.cfg.ConfigFile, err)
	}

	client := yahoo.NewClient(a.cfg.YahooApplicationID,
		yahoo.WithHTTPClient(&http.Client{Timeout: a.cfg.HTTPTimeout}),
		yahoo.WithRateLimit(a.cfg.YahooRateLimit))
	search := file.GetSearch()
	var oracle recommend.Oracle[models.Book] = yahoo.NewBookSearch(client, search.GenreCategoryID, search.Sort)

	if a.cfg.IsCacheEnabled() {
		store, err := cache.NewRedis(a.cfg.RedisURL)
		if err != nil {
			// The cache is an optimisation; run without it.
			a.logger.Warn("search cache disabled", "error", err)
		} else {
			a.closers = append(a.closers, func() { store.Close() })
			oracle = cache.NewOracle(oracle, store, a.cfg.SearchCacheTTL, a.logger)
		}
	}

	botCfg := bot.Config{
		API:            api,
		Search:         oracle,
		Extractor:      yahoo.NewKeyphraseExtractor(client),
		Phrases:        phrases.Default(),
		Recorder:       a.recorder,
		Logger:         a.logger,
		Location:       a.cfg.Location(),
		KeywordLimit:   a.cfg.KeywordLimit,
		RandomPostOdds: a.cfg.RandomPostOdds,
	}
	if lines := file.GetPhrases(); lines != nil {
		botCfg.Phrases = phrases.New(lines)
	}
	if opts.replies {
		store, err := a.replyStore(ctx)
		if err != nil {
			return nil, err
		}
		botCfg.Replies = store
	}
	if opts.refollow {
		botCfg.Refollower = jobs.NewRefollower(api, a.recorder, a.logger, time.Second)
	}
	return bot.New(botCfg)
}

// push sends metrics when a Pushgateway is configured. Failures only warn.
func (a *app) push() {
	if !a.cfg.IsPushEnabled() {
		return
	}
	if err := a.recorder.Push(a.cfg.PushgatewayURL, "nagato"); err != nil {
		a.logger.Warn("metrics push failed", "error", err)
	}
}

var errNoReplyStore = errors.New("no reply log configured: set DATABASE_URL or NAGATO_STATE_FILE")
