package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEd25519Verifier(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	address := hex.EncodeToString(pub)
	message := "Sign this message to verify your wallet: abc"
	signature := hex.EncodeToString(ed25519.Sign(priv, []byte(message)))

	v := NewEd25519Verifier()

	ok, err := v.Verify(address, message, signature)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify("0x"+address, message, "0x"+signature)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(address, "another message", signature)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.Verify(address, message, "zz")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = v.Verify("abcd", message, signature)
	assert.Error(t, err)
}
