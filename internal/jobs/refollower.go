package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nagato/internal/metrics"
	"nagato/internal/models"
)

// FollowAPI is the part of microblog.API the refollower needs.
type FollowAPI interface {
	FollowerIDs(ctx context.Context) (models.IDSet, error)
	FriendIDs(ctx context.Context) (models.IDSet, error)
	PendingFriendIDs(ctx context.Context) (models.IDSet, error)
	Follow(ctx context.Context, userID string) error
	Unfollow(ctx context.Context, userID string) error
}

// RefollowResult lists the accounts a pass acted on successfully.
type RefollowResult struct {
	Followed   []string
	Unfollowed []string
	Failed     int
}

// Refollower makes the bot follow exactly its followers: it unfollows
// accounts that do not follow back and follows back new followers.
type Refollower struct {
	api      FollowAPI
	recorder *metrics.Recorder
	logger   *slog.Logger
	delay    time.Duration
}

// NewRefollower creates a refollower. delay is the pause between follow
// changes; recorder may be nil.
func NewRefollower(api FollowAPI, recorder *metrics.Recorder, logger *slog.Logger, delay time.Duration) *Refollower {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refollower{api: api, recorder: recorder, logger: logger, delay: delay}
}

// Run performs one reconciliation pass. A failed follow change is logged and
// skipped; the first such error is returned once the pass completes.
func (r *Refollower) Run(ctx context.Context) (RefollowResult, error) {
	var result RefollowResult

	followers, err := r.api.FollowerIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to get followers: %w", err)
	}
	friends, err := r.api.FriendIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to get friends: %w", err)
	}
	pending, err := r.api.PendingFriendIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to get pending follow requests: %w", err)
	}

	toUnfollow := friends.Difference(followers)
	toFollow := followers.Difference(friends, pending)
	r.logger.Info("refollow pass",
		"followers", len(followers),
		"friends", len(friends),
		"pending", len(pending),
		"unfollow", len(toUnfollow),
		"follow", len(toFollow))

	var firstErr error
	apply := func(action string, ids []string, call func(context.Context, string) error, done *[]string) error {
		for _, id := range ids {
			// Check context before each change
			if err := ctx.Err(); err != nil {
				return err
			}

			err := call(ctx, id)
			r.recorder.RecordFollowChange(action, err)
			if err != nil {
				r.logger.Warn("follow change failed", "action", action, "user_id", id, "error", err)
				result.Failed++
				if firstErr == nil {
					firstErr = err
				}
			} else {
				r.logger.Debug("follow change", "action", action, "user_id", id)
				*done = append(*done, id)
			}

			if r.delay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(r.delay):
				}
			}
		}
		return nil
	}

	if err := apply(metrics.ActionUnfollow, toUnfollow, r.api.Unfollow, &result.Unfollowed); err != nil {
		return result, err
	}
	if err := apply(metrics.ActionFollow, toFollow, r.api.Follow, &result.Followed); err != nil {
		return result, err
	}
	return result, firstErr
}
