package application

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/ericfisherdev/graduates/internal/domain/model"
)

// EncryptionKeySize is the required key length: AES-256.
const EncryptionKeySize = 32

// gcmNonceSize is the standard GCM nonce length; it is the envelope IV length.
const gcmNonceSize = 12

// CredentialCipher encrypts credentials with AES-256-GCM. The envelope is the
// nonce followed by the sealed ciphertext and tag, so tampering fails loudly
// on Decrypt instead of yielding garbage.
type CredentialCipher struct {
	rand io.Reader
}

// NewCredentialCipher creates a cipher that draws nonces from crypto/rand.
func NewCredentialCipher() *CredentialCipher {
	return &CredentialCipher{rand: rand.Reader}
}

// IVLength returns the nonce length carried at the front of every envelope.
func (c *CredentialCipher) IVLength() int {
	return gcmNonceSize
}

// Encrypt seals plaintext under key with a fresh random nonce. The empty
// string yields the empty envelope without touching the cipher.
func (c *CredentialCipher) Encrypt(plaintext string, key []byte) (model.Envelope, error) {
	if plaintext == "" {
		return model.Envelope{}, nil
	}

	gcm, err := newGCM(key)
	if err != nil {
		return model.Envelope{}, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return model.Envelope{}, fmt.Errorf("%w: rand nonce: %v", model.ErrCipherFailure, err)
	}

	return model.Envelope{
		IV:         nonce,
		Ciphertext: gcm.Seal(nil, nonce, []byte(plaintext), nil),
	}, nil
}

// Decrypt opens env under key. The empty envelope decrypts to "".
func (c *CredentialCipher) Decrypt(env model.Envelope, key []byte) (string, error) {
	if env.IsEmpty() {
		return "", nil
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	if len(env.IV) != gcm.NonceSize() {
		return "", fmt.Errorf("%w: nonce is %d bytes, want %d", model.ErrCipherFailure, len(env.IV), gcm.NonceSize())
	}

	plaintext, err := gcm.Open(nil, env.IV, env.Ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: gcm.Open: %v", model.ErrCipherFailure, err)
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != EncryptionKeySize {
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", model.ErrCipherFailure, len(key), EncryptionKeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: aes.NewCipher: %v", model.ErrCipherFailure, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: cipher.NewGCM: %v", model.ErrCipherFailure, err)
	}
	return gcm, nil
}
