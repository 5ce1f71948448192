package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesKindSentinel(t *testing.T) {
	nf := NotFoundf("a debt with id=%d not found", 999)
	assert.Equal(t, "a debt with id=999 not found", nf.Error())
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.NotErrorIs(t, nf, ErrInvalidInput)

	inv := InvalidInput("Invalid input data")
	assert.ErrorIs(t, inv, ErrInvalidInput)
	assert.NotErrorIs(t, inv, ErrNotFound)
}

func TestAsError(t *testing.T) {
	wrapped := fmt.Errorf("update: %w", NotFoundf("missing"))
	e := AsError(wrapped)
	require.NotNil(t, e)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Equal(t, "missing", e.Msg)

	assert.Nil(t, AsError(errors.New("disk full")))
	assert.Nil(t, AsError(nil))
}
