package locker_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/SscSPs/fund_reconciliation/internal/platform/locker"
	"github.com/stretchr/testify/assert"
)

func TestGoalLocker_TryLock(t *testing.T) {
	l := locker.New()

	assert.True(t, l.TryLock("G1"))
	assert.True(t, l.IsLocked("G1"))
	assert.False(t, l.TryLock("G1"), "a held goal cannot be taken twice")
	assert.True(t, l.TryLock("G2"), "goals are independent")

	l.Unlock("G1")
	assert.False(t, l.IsLocked("G1"))
	assert.True(t, l.TryLock("G1"))
}

func TestGoalLocker_SingleWinnerUnderContention(t *testing.T) {
	l := locker.New()
	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryLock("G1") {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners)
}
