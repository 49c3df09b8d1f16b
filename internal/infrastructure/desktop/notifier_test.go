package desktop

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-sync/pkg/logger"
)

type sent struct {
	title, message, icon string
}

func newTestNotifier(answers ...bool) (*Notifier, *int, *[]sent) {
	asked := 0
	var out []sent
	n := NewNotifier(func(context.Context) (bool, error) {
		answer := answers[asked%len(answers)]
		asked++
		return answer, nil
	}, "icon.png", logger.NewNop())
	n.send = func(title, message, icon string) error {
		out = append(out, sent{title, message, icon})
		return nil
	}
	return n, &asked, &out
}

func TestPermissionRequestedOnce(t *testing.T) {
	n, asked, out := newTestNotifier(true)

	require.NoError(t, n.Notify(context.Background(), "Outbid", "Someone bid 150000"))
	require.NoError(t, n.Notify(context.Background(), "Won", "Auction 42"))

	assert.Equal(t, 1, *asked)
	assert.Equal(t, []sent{
		{"Outbid", "Someone bid 150000", "icon.png"},
		{"Won", "Auction 42", "icon.png"},
	}, *out)
}

func TestDenialIsSticky(t *testing.T) {
	n, asked, out := newTestNotifier(false, true)

	assert.ErrorIs(t, n.Notify(context.Background(), "a", "b"), ErrPermissionDenied)
	assert.ErrorIs(t, n.Notify(context.Background(), "a", "b"), ErrPermissionDenied)

	assert.Equal(t, 1, *asked)
	assert.Empty(t, *out)
}

func TestResetAsksAgain(t *testing.T) {
	n, asked, out := newTestNotifier(false, true)
	assert.ErrorIs(t, n.Notify(context.Background(), "a", "b"), ErrPermissionDenied)

	n.Reset()

	require.NoError(t, n.Notify(context.Background(), "a", "b"))
	assert.Equal(t, 2, *asked)
	assert.Len(t, *out, 1)
}

func TestRequestErrorIsNotRemembered(t *testing.T) {
	calls := 0
	n := NewNotifier(func(context.Context) (bool, error) {
		calls++
		if calls == 1 {
			return false, errors.New("no display")
		}
		return true, nil
	}, "", logger.NewNop())
	n.send = func(string, string, string) error { return nil }

	assert.Error(t, n.Notify(context.Background(), "a", "b"))
	assert.NoError(t, n.Notify(context.Background(), "a", "b"))
}
