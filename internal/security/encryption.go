package security

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/flexprice/fiscal/internal/config"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the size of the master key in bytes
const KeySize = chacha20poly1305.KeySize

// EncryptionService seals and opens the certificate password envelopes
// stored alongside each company
type EncryptionService interface {
	// Seal encrypts plaintext and returns the JSON envelope
	Seal(plaintext string) (string, error)

	// Open verifies and decrypts a JSON envelope
	Open(envelope string) (string, error)
}

// Envelope is the stored form of an encrypted certificate password.
// Every field is standard base64.
type Envelope struct {
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

type chachaEncryptionService struct {
	key []byte
}

// NewEncryptionService creates a new encryption service using the vault master key from config
func NewEncryptionService(cfg *config.Configuration) (EncryptionService, error) {
	key, err := cfg.Vault.MasterKeyBytes()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Vault master key must be hex encoded").
			Mark(ierr.ErrValidation)
	}
	return NewEncryptionServiceWithKey(key)
}

// NewEncryptionServiceWithKey creates a new encryption service from raw key bytes
func NewEncryptionServiceWithKey(key []byte) (EncryptionService, error) {
	if len(key) != KeySize {
		return nil, ierr.NewErrorf("master key must be %d bytes, got %d", KeySize, len(key)).
			WithHint("Vault master key has the wrong length").
			Mark(ierr.ErrValidation)
	}

	k := make([]byte, KeySize)
	copy(k, key)
	return &chachaEncryptionService{key: k}, nil
}

func (s *chachaEncryptionService) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.New(s.key)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to create cipher").
			Mark(ierr.ErrSystem)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to generate nonce").
			Mark(ierr.ErrSystem)
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	split := len(sealed) - aead.Overhead()

	out, err := json.Marshal(Envelope{
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:split]),
		Tag:        base64.StdEncoding.EncodeToString(sealed[split:]),
	})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to encode envelope").
			Mark(ierr.ErrSystem)
	}
	return string(out), nil
}

func (s *chachaEncryptionService) Open(envelope string) (string, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(envelope), &env); err != nil {
		return "", decryptionError(err, "envelope is not valid JSON")
	}
	if env.Nonce == "" || env.Tag == "" {
		return "", decryptionError(nil, "envelope is missing fields")
	}

	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return "", decryptionError(err, "nonce is not valid base64")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return "", decryptionError(err, "ciphertext is not valid base64")
	}
	tag, err := base64.StdEncoding.DecodeString(env.Tag)
	if err != nil {
		return "", decryptionError(err, "tag is not valid base64")
	}

	aead, err := s.aeadFor(len(nonce))
	if err != nil {
		return "", err
	}
	if len(tag) != aead.Overhead() {
		return "", decryptionError(nil, "tag has the wrong length")
	}

	plaintext, err := aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", decryptionError(err, "authentication failed")
	}
	return string(plaintext), nil
}

// aeadFor picks the construction matching the nonce size. 12 byte nonces
// are ChaCha20-Poly1305, 24 byte nonces are XChaCha20-Poly1305.
func (s *chachaEncryptionService) aeadFor(nonceSize int) (cipher.AEAD, error) {
	var (
		aead cipher.AEAD
		err  error
	)
	switch nonceSize {
	case chacha20poly1305.NonceSize:
		aead, err = chacha20poly1305.New(s.key)
	case chacha20poly1305.NonceSizeX:
		aead, err = chacha20poly1305.NewX(s.key)
	default:
		return nil, decryptionError(nil, fmt.Sprintf("unsupported nonce size %d", nonceSize))
	}
	if err != nil {
		return nil, decryptionError(err, "failed to create cipher")
	}
	return aead, nil
}

func decryptionError(cause error, reason string) error {
	if cause == nil {
		return ierr.NewError(reason).
			WithHint("Certificate key could not be decrypted").
			Mark(ierr.ErrDecryption)
	}
	return ierr.WithError(cause).
		WithMessage(reason).
		WithHint("Certificate key could not be decrypted").
		Mark(ierr.ErrDecryption)
}

// GenerateRandomKey generates a random 32-byte master key, hex encoded
func GenerateRandomKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate random key: %w", err)
	}
	return hex.EncodeToString(key), nil
}
