package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedFee(t *testing.T) {
	assert.Equal(t, int64(30), FixedFee("USD"))
	assert.Equal(t, int64(25), FixedFee("GBP"))
	assert.Equal(t, int64(50000), FixedFee("MWK"))
}

func TestFixedFeeUnknownCurrencyFallsBack(t *testing.T) {
	assert.Equal(t, DefaultFixedFee, FixedFee("XXX"))
	assert.Equal(t, DefaultFixedFee, FixedFee(""))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("USD"))
	assert.False(t, Supported("XXX"))
}
