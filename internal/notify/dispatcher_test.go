package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/topupbot/internal/engine"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []int64
	fail  map[int64]bool
	calls chan struct{}
}

func newRecordingSender(capacity int) *recordingSender {
	return &recordingSender{
		fail:  make(map[int64]bool),
		calls: make(chan struct{}, capacity),
	}
}

func (r *recordingSender) Send(userID int64, _ string, _ [][]engine.Button) error {
	r.mu.Lock()
	r.sent = append(r.sent, userID)
	fail := r.fail[userID]
	r.mu.Unlock()
	r.calls <- struct{}{}
	if fail {
		return errors.New("boom")
	}
	return nil
}

func (r *recordingSender) recipients() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.sent...)
}

func waitCalls(t *testing.T, snd *recordingSender, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-snd.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d of %d", i+1, n)
		}
	}
}

func TestNotifyAdminsFansOut(t *testing.T) {
	snd := newRecordingSender(4)
	d := New([]int64{10, 20}, nil)
	d.SetSender(snd)

	d.NotifyAdmins(context.Background(), "new order", nil)
	waitCalls(t, snd, 2)

	assert.ElementsMatch(t, []int64{10, 20}, snd.recipients())
}

func TestOneFailingAdminDoesNotStopOthers(t *testing.T) {
	snd := newRecordingSender(4)
	snd.fail[10] = true
	d := New([]int64{10, 20}, nil)
	d.SetSender(snd)

	d.NotifyAdmins(context.Background(), "new order", nil)
	waitCalls(t, snd, 2)

	assert.ElementsMatch(t, []int64{10, 20}, snd.recipients())
}

func TestNotifyUserDelivers(t *testing.T) {
	snd := newRecordingSender(1)
	d := New(nil, nil)
	d.SetSender(snd)

	d.NotifyUser(context.Background(), 77, "order accepted")
	waitCalls(t, snd, 1)

	require.Len(t, snd.recipients(), 1)
	assert.Equal(t, int64(77), snd.recipients()[0])
}

func TestNoSenderDropsQuietly(t *testing.T) {
	d := New([]int64{10}, nil)

	// Must not panic or block before the transport is wired.
	d.NotifyAdmins(context.Background(), "new order", nil)
	d.NotifyUser(context.Background(), 77, "order accepted")
}
