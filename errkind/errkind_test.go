package errkind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByKindIgnoringContext(t *testing.T) {
	a := New(Diverged, "integrator overflowed")
	b := New(Diverged, "completely different context")
	assert.True(t, errors.Is(a, b), "expected two errors of the same kind to match via errors.Is")

	c := New(NonConvergent, "integrator overflowed")
	assert.False(t, errors.Is(a, c), "expected errors of different kinds not to match")
}

func TestWrapUnwrapsUnderlyingCause(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(BrokerMismatch, "reading subset", cause)
	require.ErrorIs(t, wrapped, cause)
}

func TestStringCoversEveryKind(t *testing.T) {
	for k := Undefined; k <= InvalidConfiguration; k++ {
		assert.NotEqual(t, "unknown", k.String(), "Kind %d has no String() case", k)
	}
}
