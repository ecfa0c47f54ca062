package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "✅ ", KindSuccess.prefix())
	assert.Equal(t, "⚠️ ", KindWarning.prefix())
	assert.Equal(t, "❌ ", KindError.prefix())
	assert.Equal(t, "🔔 ", KindAdmin.prefix())
	assert.Equal(t, "ℹ️ ", KindInfo.prefix())
	assert.Equal(t, "ℹ️ ", Kind("unknown").prefix())
}

func TestSendWithoutBotDoesNotPanic(t *testing.T) {
	t.Parallel()

	n := New(nil, nil, 42, nil)
	n.Send(context.Background(), Notification{
		Kind:        KindError,
		Message:     "Radarr is down",
		ChatIDs:     []int64{1, 2},
		NotifyAdmin: true,
	})
	n.NotifyAdmin(context.Background(), "still here")
}
