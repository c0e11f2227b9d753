package orders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTicketCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateTicketCode()
		require.NoError(t, err)
		assert.Len(t, code, codeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected character %q in code %s", r, code)
		}
	}
}

func TestGenerateTicketCodeDispersion(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := GenerateTicketCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "unexpected collision in 1000 draws from a 36^10 space")
		seen[code] = true
	}
}

func TestGenerateOrderReference(t *testing.T) {
	ref, err := generateOrderReference()
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-\d{8}-[A-Z]{6}$`, ref)
}

func TestGenerateTransactionID(t *testing.T) {
	txn := generateTransactionID()
	assert.Regexp(t, `^TXN_\d+_[A-Z0-9]{8}$`, txn)
}
