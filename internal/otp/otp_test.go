package otp_test

import (
	"testing"

	"github.com/finsight/gateway/internal/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		code, err := otp.NewCode()
		require.NoError(t, err)

		assert.Len(t, code, otp.Digits)

		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "non-digit %q in code %q", r, code)
		}

		seen[code] = true
	}

	// 200 draws from a million-value space colliding down to a handful
	// would mean the randomness source is broken
	assert.Greater(t, len(seen), 150)
}
