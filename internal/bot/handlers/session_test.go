package handlers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telearr/telearr/internal/media"
)

func TestSessionStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	assert.Nil(t, store.Get(100))

	store.Set(100, &Session{Action: "add", Kind: media.KindMovie})
	require.NotNil(t, store.Get(100))
	assert.Equal(t, media.KindMovie, store.Get(100).Kind)

	// One session per chat; a new conversation replaces the old one.
	store.Set(100, &Session{Action: "delete"})
	assert.Equal(t, "delete", store.Get(100).Action)

	store.Clear(100)
	assert.Nil(t, store.Get(100))
	store.Clear(100)
}

func TestSessionCurrent(t *testing.T) {
	t.Parallel()

	sess := &Session{Results: []media.Item{{Title: "a"}, {Title: "b"}}}
	require.NotNil(t, sess.Current())
	assert.Equal(t, "a", sess.Current().Title)

	sess.Index = 1
	assert.Equal(t, "b", sess.Current().Title)

	sess.Index = 2
	assert.Nil(t, sess.Current())
}

func TestResultTextIncludesNavigationPosition(t *testing.T) {
	t.Parallel()

	sess := &Session{
		Action: "add",
		Kind:   media.KindMovie,
		Results: []media.Item{
			{Kind: media.KindMovie, Title: "Dune", Year: 2021, Overview: "Desert planet.", PosterURL: "https://example.com/p.jpg"},
			{Kind: media.KindMovie, Title: "Dune: Part Two", Year: 2024},
		},
	}

	text := resultText(sess)
	assert.Contains(t, text, "Dune (2021)")
	assert.Contains(t, text, "Result 1 of 2")
	assert.Contains(t, text, "Desert planet.")
	assert.Contains(t, text, "https://example.com/p.jpg")
}

func TestResultKeyboardHidesUnusableNavigation(t *testing.T) {
	t.Parallel()

	sess := &Session{Action: "add", Results: []media.Item{{Title: "only"}}}
	kb := resultKeyboard(sess)

	// Single result: no prev/next row, just select and cancel.
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "media:select", kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "media:cancel", kb.InlineKeyboard[1][0].CallbackData)

	sess = &Session{Action: "delete", Results: []media.Item{{Title: "a"}, {Title: "b"}}, Index: 1}
	kb = resultKeyboard(sess)
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "media:prev", kb.InlineKeyboard[0][0].CallbackData)
	assert.Contains(t, kb.InlineKeyboard[1][0].Text, "Delete")
}

func TestExternalID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "438631", externalID(&media.Item{Kind: media.KindMovie, TMDBID: 438631}))
	assert.Equal(t, "371980", externalID(&media.Item{Kind: media.KindSeries, TVDBID: 371980}))
	assert.Equal(t, "abc-123", externalID(&media.Item{Kind: media.KindArtist, ForeignArtistID: "abc-123"}))
}

func TestUpdateOrigin(t *testing.T) {
	t.Parallel()

	userID, chatID, ok := updateOrigin(&models.Update{
		Message: &models.Message{
			From: &models.User{ID: 7},
			Chat: models.Chat{ID: 100},
		},
	})
	require.True(t, ok)
	assert.Equal(t, int64(7), userID)
	assert.Equal(t, int64(100), chatID)

	_, _, ok = updateOrigin(&models.Update{})
	assert.False(t, ok)
}

func TestTruncateOverviewKeepsValidUTF8(t *testing.T) {
	t.Parallel()

	short := "Ein kurzer Überblick."
	assert.Equal(t, short, truncateOverview(short))

	long := strings.Repeat("ü", maxOverviewLen+50)
	got := truncateOverview(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxOverviewLen, utf8.RuneCountInString(got)-1, "truncated text plus ellipsis")
	assert.True(t, strings.HasSuffix(got, "…"))

	exact := strings.Repeat("界", maxOverviewLen)
	assert.Equal(t, exact, truncateOverview(exact))
}
