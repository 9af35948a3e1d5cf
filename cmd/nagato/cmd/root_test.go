package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nagato/internal/boltstore"
	"nagato/internal/config"
	"nagato/internal/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TWITTER_ACCESS_TOKEN", "MASTODON_ACCESS_TOKEN", "MASTODON_API_BASE_URL",
		"YAHOO_APPLICATION_ID", "DATABASE_URL", "NAGATO_STATE_FILE", "SLACK_WEBHOOK_URL",
		"NAGATO_LOG_STREAM", "PUSHGATEWAY_URL", "REDIS_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestRootCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"run", "recommend", "refollow", "migrate", "replies"} {
		assert.Contains(t, names, want)
	}
}

func TestRun_MissingBackend(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "run")
	assert.ErrorIs(t, err, config.ErrMissingCredentials)
}

func TestRun_MissingYahooID(t *testing.T) {
	clearEnv(t)
	t.Setenv("TWITTER_ACCESS_TOKEN", "token")

	_, err := execute(t, "run")
	assert.ErrorIs(t, err, config.ErrMissingCredentials)
}

func TestRecommend_RequiresUserID(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "recommend")
	assert.Error(t, err)
}

func TestMigrate_RequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestReplies_NoStore(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "replies")
	assert.ErrorIs(t, err, errNoReplyStore)
}

func TestReplies_StateFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nagato.db")

	store, err := boltstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.RecordReply(context.Background(), models.ReplyRecord{
		StatusID:  "101",
		UserID:    "7",
		Intent:    models.IntentBook,
		Text:      "Cute nagato book",
		URL:       "https://www.example.com/#cute_nagato_book",
		RepliedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.Close())

	t.Setenv("NAGATO_STATE_FILE", path)
	out, err := execute(t, "replies", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "101")
	assert.Contains(t, out, "Cute nagato book https://www.example.com/#cute_nagato_book")
}
