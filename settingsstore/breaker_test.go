package settingsstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	failNext int
	saved    map[string][]byte
}

func newFlakyStore() *flakyStore { return &flakyStore{saved: map[string][]byte{}} }

func (f *flakyStore) Save(_ context.Context, key string, data []byte) error {
	if f.failNext > 0 {
		f.failNext--
		return errors.New("boom")
	}
	f.saved[key] = data
	return nil
}

func (f *flakyStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	if f.failNext > 0 {
		f.failNext--
		return nil, false, errors.New("boom")
	}
	data, ok := f.saved[key]
	return data, ok, nil
}

func TestCircuitBreakerOpensAfterThresholdFailures(t *testing.T) {
	inner := newFlakyStore()
	inner.failNext = 10
	breaker := NewCircuitBreaker(inner, 3, time.Minute)

	for i := 0; i < 3; i++ {
		err := breaker.Save(context.Background(), "k", []byte("v"))
		assert.Error(t, err)
		assert.False(t, IsBreakerOpen(err))
	}

	err := breaker.Save(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.True(t, IsBreakerOpen(err))
}

func TestCircuitBreakerClosesAfterResetTimeoutAndSuccess(t *testing.T) {
	inner := newFlakyStore()
	inner.failNext = 2
	breaker := NewCircuitBreaker(inner, 2, time.Millisecond)

	assert.Error(t, breaker.Save(context.Background(), "k", []byte("v")))
	assert.Error(t, breaker.Save(context.Background(), "k", []byte("v")))

	err := breaker.Save(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.True(t, IsBreakerOpen(err))

	time.Sleep(5 * time.Millisecond)

	require.NoError(t, breaker.Save(context.Background(), "k", []byte("v")))

	data, found, err := breaker.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), data)
}

func TestCircuitBreakerRecoversAfterSingleSuccess(t *testing.T) {
	inner := newFlakyStore()
	breaker := NewCircuitBreaker(inner, 2, time.Minute)

	inner.failNext = 1
	assert.Error(t, breaker.Save(context.Background(), "k", []byte("v")))

	require.NoError(t, breaker.Save(context.Background(), "k", []byte("v2")))

	inner.failNext = 1
	assert.Error(t, breaker.Save(context.Background(), "k", []byte("v3")))
	err := breaker.Save(context.Background(), "k", []byte("v4"))
	assert.NoError(t, err)
}
