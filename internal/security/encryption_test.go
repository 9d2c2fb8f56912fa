package security

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"testing"

	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
)

func newTestService(t *testing.T) EncryptionService {
	t.Helper()
	key, err := GenerateRandomKey()
	require.NoError(t, err)
	raw, err := hex.DecodeString(key)
	require.NoError(t, err)
	svc, err := NewEncryptionServiceWithKey(raw)
	require.NoError(t, err)
	return svc
}

func TestSealOpenRoundTrip(t *testing.T) {
	svc := newTestService(t)

	for _, plaintext := range []string{"certificate-password", "", "šumnik ž"} {
		envelope, err := svc.Seal(plaintext)
		require.NoError(t, err)

		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(envelope), &env))
		assert.NotEmpty(t, env.Nonce)
		assert.NotEmpty(t, env.Tag)

		got, err := svc.Open(envelope)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	envelope, err := newTestService(t).Seal("secret")
	require.NoError(t, err)

	_, err = newTestService(t).Open(envelope)
	require.Error(t, err)
	assert.True(t, ierr.IsDecryption(err))
}

func TestOpenWithCorruptedTagFails(t *testing.T) {
	svc := newTestService(t)
	envelope, err := svc.Seal("secret")
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(envelope), &env))
	tag, err := base64.StdEncoding.DecodeString(env.Tag)
	require.NoError(t, err)
	tag[0] ^= 0xff
	env.Tag = base64.StdEncoding.EncodeToString(tag)
	corrupted, err := json.Marshal(env)
	require.NoError(t, err)

	_, err = svc.Open(string(corrupted))
	require.Error(t, err)
	assert.True(t, ierr.IsDecryption(err))
}

func TestOpenMalformedEnvelope(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		envelope string
	}{
		{"not json", "plain-password"},
		{"missing tag", `{"nonce":"AAAAAAAAAAAAAAAA","ciphertext":"AAAA"}`},
		{"bad base64", `{"nonce":"***","ciphertext":"AAAA","tag":"AAAA"}`},
		{"odd nonce size", `{"nonce":"AAAA","ciphertext":"AAAA","tag":"AAAAAAAAAAAAAAAAAAAAAA=="}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Open(tt.envelope)
			require.Error(t, err)
			assert.True(t, ierr.IsDecryption(err))
		})
	}
}

func TestOpenExtendedNonceEnvelope(t *testing.T) {
	raw := make([]byte, KeySize)
	svc, err := NewEncryptionServiceWithKey(raw)
	require.NoError(t, err)

	aead, err := chacha20poly1305.NewX(raw)
	require.NoError(t, err)
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	sealed := aead.Seal(nil, nonce, []byte("xpass"), nil)
	split := len(sealed) - aead.Overhead()

	envelope, err := json.Marshal(Envelope{
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:split]),
		Tag:        base64.StdEncoding.EncodeToString(sealed[split:]),
	})
	require.NoError(t, err)

	got, err := svc.Open(string(envelope))
	require.NoError(t, err)
	assert.Equal(t, "xpass", got)
}

func TestNewEncryptionServiceRejectsShortKey(t *testing.T) {
	_, err := NewEncryptionServiceWithKey([]byte("short"))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
