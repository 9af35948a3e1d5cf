package bot

import (
	"context"
	"errors"
	"fmt"

	"nagato/internal/db"
	"nagato/internal/jobs"
	"nagato/internal/models"
)

// RunResult summarises a pass.
type RunResult struct {
	RepliedTo     *models.Status
	Response      *models.Response
	PostedRandom  bool
	TimelineSpeed int
	Refollow      *jobs.RefollowResult
}

// Run executes one pass: answer the oldest unanswered mention, maybe post a
// random phrase, report the timeline speed and optionally refollow.
func (b *Bot) Run(ctx context.Context) (RunResult, error) {
	var result RunResult
	b.logger.Debug("executing")

	me, err := b.cfg.API.VerifyCredentials(ctx)
	if err != nil {
		return result, err
	}
	b.me = me

	mention, err := b.NewMention(ctx)
	if err != nil {
		return result, err
	}
	if mention != nil {
		resp, err := b.reply(ctx, mention)
		if err != nil {
			return result, err
		}
		result.RepliedTo, result.Response = mention, &resp
	}

	if b.cfg.Rand.IntN(b.cfg.RandomPostOdds) == 0 {
		phrase := b.cfg.Phrases.Random(b.cfg.Rand)
		if err := b.cfg.API.Post(ctx, phrase, "", nil); err != nil {
			return result, fmt.Errorf("failed to post random phrase: %w", err)
		}
		b.logger.Info("posted random phrase", "text", phrase)
		result.PostedRandom = true
	}

	speed, err := b.TimelineSpeed(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to get timeline speed: %w", err)
	}
	b.cfg.Recorder.SetTimelineSpeed(speed)
	b.logger.Info("home timeline speed", "statuses_per_hour", speed)
	result.TimelineSpeed = speed

	if b.cfg.Refollower != nil {
		rf, err := b.cfg.Refollower.Run(ctx)
		result.Refollow = &rf
		if err != nil {
			return result, fmt.Errorf("refollow failed: %w", err)
		}
	}

	b.logger.Debug("terminating")
	return result, nil
}

// LastRepliedStatusID returns the cursor below which mentions are answered:
// the greater of the reply log's last entry and what the bot's latest own
// status shows (the status it replied to, else itself).
func (b *Bot) LastRepliedStatusID(ctx context.Context) (string, error) {
	cursor, err := b.ownCursor(ctx)
	if err != nil {
		return "", err
	}
	if b.cfg.Replies == nil {
		return cursor, nil
	}

	logged, err := b.cfg.Replies.LastRepliedStatusID(ctx)
	if errors.Is(err, db.ErrNoReplies) {
		return cursor, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read reply log: %w", err)
	}
	b.logger.Debug("last reply from log", "status_id", logged)
	if models.CompareIDs(logged, cursor) > 0 {
		return logged, nil
	}
	return cursor, nil
}

func (b *Bot) ownCursor(ctx context.Context) (string, error) {
	own, err := b.cfg.API.UserTimeline(ctx, b.me.ID)
	if err != nil {
		return "", fmt.Errorf("failed to get own timeline: %w", err)
	}
	if len(own) == 0 {
		b.logger.Debug("no status sent yet", "screen_name", b.me.ScreenName)
		return "", nil
	}
	latest := own[0]
	if latest.IsReply() {
		b.logger.Debug("replied most recently", "screen_name", b.me.ScreenName, "status_id", latest.InReplyToStatusID)
		return latest.InReplyToStatusID, nil
	}
	b.logger.Debug("sent status most recently", "screen_name", b.me.ScreenName, "status_id", latest.ID)
	return latest.ID, nil
}

// NewMention returns the oldest mention newer than the cursor that the bot
// did not write itself, or nil.
func (b *Bot) NewMention(ctx context.Context) (*models.Status, error) {
	cursor, err := b.LastRepliedStatusID(ctx)
	if err != nil {
		return nil, err
	}

	mentions, err := b.cfg.API.Mentions(ctx, cursor)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("received mentions", "count", len(mentions), "since_id", cursor)

	models.SortStatuses(mentions)
	for _, m := range mentions {
		if cursor != "" && models.CompareIDs(m.ID, cursor) <= 0 {
			continue
		}
		if m.User.ID == b.me.ID {
			continue
		}
		b.logger.Debug("found a new mention", "status_id", m.ID, "screen_name", m.User.ScreenName, "text", m.Text)
		return &m, nil
	}
	return nil, nil
}

func (b *Bot) reply(ctx context.Context, mention *models.Status) (models.Response, error) {
	resp, err := b.Response(ctx, mention.User.ID, mention.Text)
	if err != nil {
		return resp, err
	}
	if err := b.cfg.API.Post(ctx, resp.Text, resp.URL, mention); err != nil {
		return resp, fmt.Errorf("failed to reply to %s: %w", mention.ID, err)
	}
	b.cfg.Recorder.RecordResponse(resp.Intent)
	b.logger.Info("sent a reply", "screen_name", mention.User.ScreenName, "text", resp.Text, "intent", resp.Intent)

	if b.cfg.Replies != nil {
		rec := models.ReplyRecord{
			StatusID:  mention.ID,
			UserID:    mention.User.ID,
			Intent:    resp.Intent,
			Text:      resp.Text,
			URL:       resp.URL,
			RepliedAt: b.cfg.Clock().UTC(),
		}
		// The reply is already out.
		if err := b.cfg.Replies.RecordReply(ctx, rec); err != nil {
			b.logger.Error("failed to record reply", "status_id", mention.ID, "error", err)
		}
	}
	return resp, nil
}
