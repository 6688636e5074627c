package game

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsAndClamping(t *testing.T) {
	t.Run("default bound", func(t *testing.T) {
		g := New()
		assert.Equal(t, DefaultMax, g.Max())
		assert.Equal(t, 0, g.Attempts())
		assert.Equal(t, StateActive, g.State())
	})

	for _, in := range []int{0, -1, math.MinInt} {
		g := New(WithMax(in))
		assert.Equal(t, 1, g.Max(), "max %d", in)

		out, err := g.Guess(1)
		require.NoError(t, err)
		assert.Equal(t, Outcome{Result: ResultCorrect, Attempts: 1}, out)
	}

	t.Run("explicit bound", func(t *testing.T) {
		assert.Equal(t, 7, New(WithMax(7)).Max())
	})
}

func TestGuess_Scenario(t *testing.T) {
	g := New(WithMax(10), WithSource(FixedSource(7)))

	steps := []struct {
		value int
		want  Outcome
	}{
		{3, Outcome{ResultLow, 1}},
		{9, Outcome{ResultHigh, 2}},
		{7, Outcome{ResultCorrect, 3}},
		{1, Outcome{ResultCorrect, 3}},
	}
	for _, st := range steps {
		got, err := g.Guess(st.value)
		require.NoError(t, err)
		assert.Equal(t, st.want, got, "guess %d", st.value)
	}
	assert.True(t, g.Finished())
	assert.Equal(t, StateWon, g.State())
}

func TestGuess_OutOfRange(t *testing.T) {
	for _, max := range []int{1, 2, 10, 100} {
		g := New(WithMax(max), WithSource(FixedSource(max)))
		for _, v := range []int{0, -5, max + 1} {
			_, err := g.Guess(v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOutOfRange))

			var oor *OutOfRangeError
			require.True(t, errors.As(err, &oor))
			assert.Equal(t, v, oor.Value)
			assert.Equal(t, max, oor.Max)
		}
		assert.Equal(t, 0, g.Attempts())
		assert.False(t, g.Finished())
	}
}

func TestGuess_OutOfRangeAfterWin(t *testing.T) {
	g := New(WithMax(5), WithSource(FixedSource(2)))
	_, err := g.Guess(2)
	require.NoError(t, err)

	_, err = g.Guess(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = g.Guess(6)
	assert.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, 1, g.Attempts())
	assert.True(t, g.Finished())
}

func TestGuess_BoundsInvariant(t *testing.T) {
	src := NewRandSource(42)
	for _, max := range []int{1, 2, 3, 10, 100, 500} {
		for round := 0; round < 5; round++ {
			g := New(WithMax(max), WithSource(src))
			correct := 0
			seenCorrect := false
			for v := 1; v <= max; v++ {
				fresh := New(WithMax(max), WithSource(FixedSource(secretOf(g))))
				out, err := fresh.Guess(v)
				require.NoError(t, err)
				switch out.Result {
				case ResultCorrect:
					correct++
					seenCorrect = true
				case ResultLow:
					assert.False(t, seenCorrect, "low after correct for max %d", max)
				case ResultHigh:
					assert.True(t, seenCorrect, "high before correct for max %d", max)
				}
			}
			assert.Equal(t, 1, correct, "max %d", max)
		}
	}
}

func TestGuess_MonotonicAttempts(t *testing.T) {
	g := New(WithMax(100), WithSource(FixedSource(100)))
	for i := 1; i < 100; i++ {
		out, err := g.Guess(i)
		require.NoError(t, err)
		assert.Equal(t, ResultLow, out.Result)
		assert.Equal(t, i, out.Attempts)
		assert.Equal(t, i, g.Attempts())
	}
	out, err := g.Guess(100)
	require.NoError(t, err)
	assert.Equal(t, Outcome{ResultCorrect, 100}, out)

	for _, v := range []int{1, 50, 100} {
		out, err := g.Guess(v)
		require.NoError(t, err)
		assert.Equal(t, Outcome{ResultCorrect, 100}, out)
	}
}

func TestGuess_AttemptsSaturate(t *testing.T) {
	g := New(WithMax(10), WithSource(FixedSource(10)))
	g.attempts = math.MaxInt - 1

	out, err := g.Guess(1)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, out.Attempts)

	out, err = g.Guess(2)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, out.Attempts)
}

func TestReset(t *testing.T) {
	t.Run("clears state and keeps bound", func(t *testing.T) {
		g := New(WithMax(10), WithSource(FixedSource(4)))
		for _, v := range []int{1, 9, 4} {
			_, err := g.Guess(v)
			require.NoError(t, err)
		}
		require.True(t, g.Finished())

		g.Reset()
		assert.Equal(t, 0, g.Attempts())
		assert.Equal(t, 10, g.Max())
		assert.Equal(t, StateActive, g.State())

		out, err := g.Guess(1)
		require.NoError(t, err)
		assert.Equal(t, Outcome{ResultLow, 1}, out)
	})

	t.Run("new bound is clamped", func(t *testing.T) {
		g := New(WithMax(10))
		g.Reset(WithMax(0))
		assert.Equal(t, 1, g.Max())
		out, err := g.Guess(1)
		require.NoError(t, err)
		assert.Equal(t, ResultCorrect, out.Result)

		g.Reset(WithMax(50))
		assert.Equal(t, 50, g.Max())
		assert.False(t, g.Finished())
	})

	t.Run("replaces source", func(t *testing.T) {
		g := New(WithMax(10), WithSource(FixedSource(1)))
		g.Reset(WithSource(FixedSource(9)))
		out, err := g.Guess(9)
		require.NoError(t, err)
		assert.Equal(t, ResultCorrect, out.Result)
	})
}

type brokenSource struct{ v int }

func (b brokenSource) Draw(int) int { return b.v }

func TestNew_PinsMisbehavingSource(t *testing.T) {
	g := New(WithMax(5), WithSource(brokenSource{v: 99}))
	assert.Equal(t, 5, secretOf(g))

	g.Reset(WithSource(brokenSource{v: -3}))
	assert.Equal(t, 1, secretOf(g))
}

func secretOf(g *Session) int { return g.secret }
