package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = errors.New("sentinel")

func TestWrapKeepsCodeAndChain(t *testing.T) {
	base := ConfigInvalid("batch size must be positive")
	wrapped := Wrap(base, "failed to load generation configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, "failed to load generation configuration: batch size must be positive", wrapped.Error())
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	wrapped := Wrapf(errSentinel, "step %d", 2)
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, errSentinel)
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestCatalogNonCompliantUnwrapsJoinedCauses(t *testing.T) {
	err := CatalogNonCompliant(errors.Join(errSentinel, errors.New("other")))
	assert.Equal(t, CodeCatalogNonCompliant, GetCode(err))
	assert.ErrorIs(t, err, errSentinel)
	assert.Equal(t, "UNKNOWN", GetCode(errSentinel))
}
