package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("store unavailable")

func TestClassifyKeepsCauseAndSentinel(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	err := Classify(Wrap(cause, "ping"), errSentinel)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errSentinel))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "store unavailable: ping: dial tcp 127.0.0.1:5432: connect: connection refused", err.Error())
	assert.NoError(t, Classify(nil, errSentinel))
}

func TestWrapfPrefixesMessage(t *testing.T) {
	t.Parallel()

	err := Wrapf(errSentinel, "lock room %s", "101")
	assert.True(t, errors.Is(err, errSentinel))
	assert.Equal(t, "lock room 101: store unavailable", err.Error())
	assert.NoError(t, Wrap(nil, "ignored"))
}

func TestClassifiedErrorSurvivesFurtherWrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("canceling statement due to lock timeout")
	err := Wrapf(Classify(Wrap(cause, "lock room"), errSentinel), "book room %s", "101")

	assert.ErrorIs(t, err, errSentinel)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "book room 101: store unavailable: lock room: canceling statement due to lock timeout", err.Error())
}
