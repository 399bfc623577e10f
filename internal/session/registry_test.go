package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryDefaultsToIdle(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, StateIdle, r.State(7))
	assert.False(t, r.InProgress(7))
}

func TestTransitionMutatesInPlace(t *testing.T) {
	r := NewRegistry()
	r.Transition(7, func(s *Session) {
		s.State = StateOrderWaitQty
		s.ProductID = 3
		s.ProductName = "UC PUBG"
	})

	got := r.Get(7)
	assert.Equal(t, StateOrderWaitQty, got.State)
	assert.Equal(t, int64(3), got.ProductID)
	assert.True(t, r.InProgress(7))

	// Get hands out a copy; mutating it must not leak back.
	got.State = StateIdle
	assert.Equal(t, StateOrderWaitQty, r.State(7))
}

func TestResetClearsData(t *testing.T) {
	r := NewRegistry()
	r.Transition(7, func(s *Session) {
		s.State = StateOrderConfirm
		s.Qty = 5
		s.Total = 4.95
	})
	r.Reset(7)

	got := r.Get(7)
	assert.Equal(t, StateIdle, got.State)
	assert.Zero(t, got.Qty)
	assert.Zero(t, got.Total)
}

func TestTransitionSerializesPerUser(t *testing.T) {
	r := NewRegistry()
	const workers = 32

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Transition(7, func(s *Session) {
				s.Qty++
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, r.Get(7).Qty)
}

func TestUsersAreIndependent(t *testing.T) {
	r := NewRegistry()
	r.Transition(1, func(s *Session) { s.State = StateTrackWaitID })
	r.Transition(2, func(s *Session) { s.State = StateProofWaitMedia })

	assert.Equal(t, StateTrackWaitID, r.State(1))
	assert.Equal(t, StateProofWaitMedia, r.State(2))

	r.Reset(1)
	assert.Equal(t, StateIdle, r.State(1))
	assert.Equal(t, StateProofWaitMedia, r.State(2))
}
