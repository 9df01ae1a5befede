package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenEncryptionRoundTrip(t *testing.T) {
	t.Setenv("TOKEN_ENCRYPTION_SECRET", "unit-test-secret")

	plaintext := "IGQVJYeXAMPLElongLIVEDtoken123"
	encrypted, err := EncryptToken(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, encrypted)

	decrypted, err := DecryptToken(encrypted)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)

	// Two encryptions of the same token differ because the nonce is random.
	again, err := EncryptToken(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, again)
}

func TestDecryptTokenRejectsTampering(t *testing.T) {
	t.Setenv("TOKEN_ENCRYPTION_SECRET", "unit-test-secret")

	encrypted, err := EncryptToken("token")
	require.NoError(t, err)

	_, err = DecryptToken("not-base64!!!")
	assert.Error(t, err)

	_, err = DecryptToken("c2hvcnQ=")
	assert.Error(t, err)

	t.Setenv("TOKEN_ENCRYPTION_SECRET", "a-different-secret")
	_, err = DecryptToken(encrypted)
	assert.Error(t, err)
}
