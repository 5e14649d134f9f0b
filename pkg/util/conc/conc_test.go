package conc

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAwait(t *testing.T) {
	p := NewPool[int](2)
	defer p.Release()

	f := p.Submit(func() (int, error) { return 42, nil })
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, f.Done())

	boom := errors.New("boom")
	f = p.Submit(func() (int, error) { return 0, boom })
	assert.ErrorIs(t, f.Err(), boom)
}

func TestNonblockingPoolFull(t *testing.T) {
	p := NewPool[struct{}](1, WithNonblocking(true))
	defer p.Release()

	release := make(chan struct{})
	busy := p.Submit(func() (struct{}, error) {
		<-release
		return struct{}{}, nil
	})
	require.Eventually(t, func() bool { return p.Running() == 1 }, time.Second, 5*time.Millisecond)

	rejected := p.Submit(func() (struct{}, error) { return struct{}{}, nil })
	assert.True(t, rejected.Done())
	assert.ErrorIs(t, rejected.Err(), ErrPoolFull)

	close(release)
	assert.NoError(t, busy.Err())
}

func TestPanicHandler(t *testing.T) {
	caught := make(chan any, 1)
	p := NewPool[int](1, WithPanicHandler(func(v any) { caught <- v }))
	defer p.Release()

	f := p.Submit(func() (int, error) { panic("loop exploded") })
	_, err := f.Await()
	assert.NoError(t, err)
	select {
	case v := <-caught:
		assert.Equal(t, "loop exploded", v)
	case <-time.After(time.Second):
		t.Fatal("panic handler not called")
	}
}

func TestGo(t *testing.T) {
	f := Go(func() (string, error) { return "done", nil })
	<-f.Inner()
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}
