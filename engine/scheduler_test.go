package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/gridseq"
	"github.com/vsariola/gridseq/samples"
)

func newBank(t *testing.T, rows int, empty ...int) *samples.Bank {
	t.Helper()
	bank := samples.NewBank(testFormat, rows)
	for i := 0; i < rows; i++ {
		require.NoError(t, bank.Set(i, samples.Constant("c", testFormat, 0.5, 10)))
	}
	for _, i := range empty {
		require.NoError(t, bank.Set(i, nil))
	}
	return bank
}

func newTestGrid(t *testing.T, rows, steps int) *gridseq.Grid {
	t.Helper()
	sounds := make([]string, rows)
	for i := range sounds {
		sounds[i] = "row"
	}
	g, err := gridseq.NewGrid(sounds, steps)
	require.NoError(t, err)
	return g
}

func TestSchedulerSubmitsActiveRowsInOrder(t *testing.T) {
	t.Parallel()
	g := newTestGrid(t, 3, 16)
	require.NoError(t, g.Set(0, 5, true))
	require.NoError(t, g.Set(2, 5, true))
	require.NoError(t, g.Set(1, 6, true))
	b := NewBroker(8)
	s := NewScheduler(g, newBank(t, 3), b)

	r := s.OnStepFired(5)
	assert.Equal(t, Report{Step: 5, Submitted: []int{0, 2}}, r)
	require.Len(t, b.ToMixer, 2)
	first, second := <-b.ToMixer, <-b.ToMixer
	assert.Equal(t, 0, first.Row)
	assert.Equal(t, 2, second.Row)
	assert.Equal(t, 5, first.Step)
	assert.Equal(t, 0, first.FramesEmitted())
	assert.Equal(t, SchedulerStats{Submitted: 2}, s.Stats())
}

func TestSchedulerSubmitsNothingForSilentStep(t *testing.T) {
	t.Parallel()
	g := newTestGrid(t, 3, 16)
	b := NewBroker(8)
	s := NewScheduler(g, newBank(t, 3), b)
	assert.Equal(t, Report{Step: 3}, s.OnStepFired(3))
	assert.Empty(t, b.ToMixer)
}

func TestSchedulerOpensFreshCursorPerTrigger(t *testing.T) {
	t.Parallel()
	g := newTestGrid(t, 1, 4)
	require.NoError(t, g.Set(0, 0, true))
	b := NewBroker(8)
	s := NewScheduler(g, newBank(t, 1), b)
	s.OnStepFired(0)
	s.OnStepFired(0)
	first, second := <-b.ToMixer, <-b.ToMixer
	assert.NotSame(t, first, second)
	assert.NotSame(t, first.source, second.source)
}

func TestSchedulerCountsMissedTriggers(t *testing.T) {
	t.Parallel()
	g := newTestGrid(t, 3, 4)
	for row := 0; row < 3; row++ {
		require.NoError(t, g.Set(row, 1, true))
	}
	b := NewBroker(1)
	s := NewScheduler(g, newBank(t, 3), b)
	r := s.OnStepFired(1)
	assert.Equal(t, []int{0}, r.Submitted)
	assert.Equal(t, []int{1, 2}, r.Missed)
	assert.Equal(t, SchedulerStats{Submitted: 1, Missed: 2}, s.Stats())
	assert.Len(t, b.ToMixer, 1)
}

func TestSchedulerSkipsUnavailableSounds(t *testing.T) {
	t.Parallel()
	g := newTestGrid(t, 3, 4)
	for row := 0; row < 3; row++ {
		require.NoError(t, g.Set(row, 2, true))
	}
	b := NewBroker(8)
	s := NewScheduler(g, newBank(t, 3, 1), b)
	r := s.OnStepFired(2)
	assert.Equal(t, []int{0, 2}, r.Submitted)
	assert.Equal(t, []int{1}, r.Unavailable)
	assert.Equal(t, uint64(1), s.Stats().Unavailable)
}

type brokenFactory struct{}

func (brokenFactory) Open() (gridseq.AudioSource, error) {
	return nil, errors.New("device lost")
}

func TestSchedulerOpenWrapsErrors(t *testing.T) {
	t.Parallel()
	g := newTestGrid(t, 1, 4)
	b := NewBroker(8)
	registries := map[string]gridseq.Registry{
		"registry error": gridseq.RegistryFunc(func(int) (gridseq.SourceFactory, error) {
			return nil, errors.New("not loaded")
		}),
		"nil factory": gridseq.RegistryFunc(func(int) (gridseq.SourceFactory, error) {
			return nil, nil
		}),
		"open error": gridseq.RegistryFunc(func(int) (gridseq.SourceFactory, error) {
			return brokenFactory{}, nil
		}),
		"no registry": nil,
	}
	for name, reg := range registries {
		s := NewScheduler(g, reg, b)
		_, err := s.open(0, 0)
		assert.ErrorIs(t, err, gridseq.ErrSourceUnavailable, name)
	}
}
