// Package bot answers mentions: greetings, timeline speed, random phrases,
// and book recommendations derived from the asker's own posts.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"nagato/internal/greeting"
	"nagato/internal/intent"
	"nagato/internal/jobs"
	"nagato/internal/metrics"
	"nagato/internal/microblog"
	"nagato/internal/models"
	"nagato/internal/phrases"
	"nagato/internal/recommend"
	"nagato/internal/validation"
)

// KeywordExtractor ranks the key phrases of a text, most relevant first.
type KeywordExtractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// ReplyLog remembers which statuses the bot has answered.
// LastRepliedStatusID returns db.ErrNoReplies when nothing is recorded.
type ReplyLog interface {
	LastRepliedStatusID(ctx context.Context) (string, error)
	RecordReply(ctx context.Context, rec models.ReplyRecord) error
}

// Config wires a Bot. API, Search and Extractor are required.
type Config struct {
	API       microblog.API
	Search    recommend.Oracle[models.Book]
	Extractor KeywordExtractor

	Replies    ReplyLog          // nil keeps no reply history
	Phrases    *phrases.Book     // nil uses the built-in phrases
	Refollower *jobs.Refollower  // nil skips follower reconciliation
	Recorder   *metrics.Recorder // nil discards metrics
	Logger     *slog.Logger
	Rand       *rand.Rand
	Clock      func() time.Time
	Location   *time.Location

	KeywordLimit   int // default 10
	RandomPostOdds int // 1 in N runs posts a random phrase; default 1440
}

// Bot runs one pass over the microblog account.
type Bot struct {
	cfg    Config
	logger *slog.Logger

	me            models.User
	timelineSpeed *int
}

// New validates cfg and fills defaults.
func New(cfg Config) (*Bot, error) {
	if cfg.API == nil || cfg.Search == nil || cfg.Extractor == nil {
		return nil, errors.New("bot: API, Search and Extractor are required")
	}
	if cfg.Phrases == nil {
		cfg.Phrases = phrases.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.KeywordLimit <= 0 {
		cfg.KeywordLimit = 10
	}
	if cfg.RandomPostOdds <= 0 {
		cfg.RandomPostOdds = 60 * 24
	}
	return &Bot{cfg: cfg, logger: cfg.Logger}, nil
}

// TimelineSpeed returns the home timeline speed in statuses per hour,
// computed once per Bot. An empty timeline has speed 0.
func (b *Bot) TimelineSpeed(ctx context.Context) (int, error) {
	if b.timelineSpeed != nil {
		return *b.timelineSpeed, nil
	}

	statuses, err := b.cfg.API.HomeTimeline(ctx)
	if err != nil {
		return 0, err
	}

	speed := 0
	if len(statuses) > 0 {
		oldest, newest := statuses[0].CreatedAt, statuses[0].CreatedAt
		for _, s := range statuses[1:] {
			if s.CreatedAt.Before(oldest) {
				oldest = s.CreatedAt
			}
			if s.CreatedAt.After(newest) {
				newest = s.CreatedAt
			}
		}
		spent := max(newest.Sub(oldest).Seconds(), 1)
		speed = int(float64(len(statuses)) * 3600 / spent)
	}

	b.timelineSpeed = &speed
	return speed, nil
}

// UserKeyphrases extracts the ranked key phrases of userID's recent posts,
// ignoring mentions and links, truncated to the keyword limit.
func (b *Bot) UserKeyphrases(ctx context.Context, userID string) ([]string, error) {
	statuses, err := b.cfg.API.UserTimeline(ctx, userID)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		texts = append(texts, s.Text)
	}
	words := validation.ExtractWords(texts)
	b.logger.Debug("words in statuses", "user_id", userID, "words", words)

	keyphrases, err := b.cfg.Extractor.Extract(ctx, words)
	if err != nil {
		return nil, fmt.Errorf("failed to extract key phrases: %w", err)
	}
	if len(keyphrases) > b.cfg.KeywordLimit {
		keyphrases = keyphrases[:b.cfg.KeywordLimit]
	}
	return keyphrases, nil
}

// RecommendBook picks the most specific book matching userID's key phrases.
// It returns nil when nothing matched. If ctx ends mid-search, the best book
// found so far is returned.
func (b *Bot) RecommendBook(ctx context.Context, userID string) (*models.Book, error) {
	keyphrases, err := b.UserKeyphrases(ctx, userID)
	if err != nil {
		b.cfg.Recorder.RecordRecommendation(metrics.RecommendationError)
		return nil, err
	}
	b.logger.Info("book recommendation key phrases", "user_id", userID, "keyphrases", keyphrases)

	debug := recommend.ObserverFunc(func(s recommend.Step) {
		b.logger.Debug("book search step", "path", s.Path, "terms", s.Terms, "count", s.Count, "improved", s.Improved)
	})
	best, err := recommend.Search(ctx, keyphrases, b.cfg.Search,
		recommend.WithObserver(debug),
		recommend.WithObserver(b.cfg.Recorder))
	switch {
	case errors.Is(err, recommend.ErrInterrupted) && best.Found():
		b.logger.Warn("book search interrupted, using best so far", "user_id", userID, "count", best.Count, "error", err)
	case err != nil:
		b.cfg.Recorder.RecordRecommendation(metrics.RecommendationError)
		return nil, fmt.Errorf("failed to recommend a book: %w", err)
	}

	if !best.Found() {
		b.cfg.Recorder.RecordRecommendation(metrics.RecommendationNone)
		b.logger.Info("no book to recommend", "user_id", userID)
		return nil, nil
	}
	b.cfg.Recorder.RecordRecommendation(metrics.RecommendationFound)
	b.logger.Info("recommend", "user_id", userID, "book", best.Item.String(), "count", best.Count)
	return best.Item, nil
}

// Response returns what to say to userID, who wrote text.
func (b *Bot) Response(ctx context.Context, userID, text string) (models.Response, error) {
	kind := intent.Classify(validation.StripHTML(text))
	resp := models.Response{Intent: kind}

	switch kind {
	case models.IntentBook:
		book, err := b.RecommendBook(ctx, userID)
		if err != nil {
			return resp, err
		}
		if book == nil {
			resp.Text = models.UnknownBook
			return resp, nil
		}
		resp.Text = book.Name
		if ok, msg := validation.ValidateURL(book.URL); ok {
			resp.URL = book.URL
		} else {
			b.logger.Warn("dropping book URL", "url", book.URL, "reason", msg)
		}
	case models.IntentGreeting:
		resp.Text = greeting.Text(b.cfg.Clock().In(b.cfg.Location), b.cfg.Rand.IntN(5))
	case models.IntentTimelineSpeed:
		speed, err := b.TimelineSpeed(ctx)
		if err != nil {
			return resp, fmt.Errorf("failed to get timeline speed: %w", err)
		}
		resp.Text = fmt.Sprintf("流速 %d", speed)
	default:
		resp.Text = b.cfg.Phrases.Random(b.cfg.Rand)
	}
	return resp, nil
}
