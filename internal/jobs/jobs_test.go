package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePurger struct {
	calls atomic.Int32
	err   error
}

func (f *fakePurger) PurgeSessions(context.Context, time.Time) (int64, error) {
	f.calls.Add(1)
	return 3, f.err
}

type fakeGauge struct{ calls atomic.Int32 }

func (f *fakeGauge) RefreshUnpaidGauge(context.Context) error {
	f.calls.Add(1)
	return nil
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&fakePurger{}, &fakeGauge{}, zap.NewNop())
	assert.Error(t, s.Register(Specs{SessionPurge: "every tuesday"}))
	assert.NoError(t, s.Register(Specs{SessionPurge: "*/30 * * * *"}))
	assert.NoError(t, s.Register(Specs{}))
}

func TestJobsSwallowErrors(t *testing.T) {
	p := &fakePurger{err: errors.New("db down")}
	s := NewScheduler(p, &fakeGauge{}, zap.NewNop())

	s.PurgeSessions()
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestRunRefreshesGaugeAndStops(t *testing.T) {
	g := &fakeGauge{}
	s := NewScheduler(&fakePurger{}, g, zap.NewNop())
	require.NoError(t, s.Register(Specs{UnpaidGauge: "*/5 * * * *"}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return g.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
