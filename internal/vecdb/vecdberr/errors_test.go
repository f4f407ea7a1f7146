package vecdberr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ErrorsIs_MatchesByKindNotMessage(t *testing.T) {
	// Given: an error built with a specific message
	err := New(DimensionMismatch, "expected %d got %d", 4, 8)

	// Then: errors.Is matches the sentinel of the same kind regardless of message
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
	assert.False(t, errors.Is(err, ErrDuplicateID))
}

func TestError_Wrap_PreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("truncated read")
	err := Wrap(Deserialization, cause, "corrupt header")

	require.ErrorIs(t, err, ErrDeserialization)
	assert.Same(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "corrupt header")
	assert.Contains(t, err.Error(), "truncated read")
}

func TestKindOf_NonVecdbError_ReturnsEmpty(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, DuplicateID, KindOf(New(DuplicateID, "id 5 exists")))
}

func TestIs_HelperMatchesKind(t *testing.T) {
	err := New(InvalidArgument, "k must be >= 1")
	assert.True(t, Is(err, InvalidArgument))
	assert.False(t, Is(err, CollectionExists))
	assert.False(t, Is(errors.New("plain"), InvalidArgument))
}
