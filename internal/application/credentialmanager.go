package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ericfisherdev/graduates/internal/domain/model"
	"github.com/ericfisherdev/graduates/internal/metrics"
)

// credentialRandomBytes is the entropy behind each credential (32 hex chars).
const credentialRandomBytes = 16

// CredentialManager owns the API key lifecycle: generate, encrypt on save,
// decrypt on read, and the enabled switch.
type CredentialManager struct {
	store  *SecretStore
	cipher *CredentialCipher
	logger *slog.Logger
	rand   io.Reader
}

// NewCredentialManager creates a CredentialManager with the required dependencies.
func NewCredentialManager(store *SecretStore, cipher *CredentialCipher, logger *slog.Logger) *CredentialManager {
	return &CredentialManager{
		store:  store,
		cipher: cipher,
		logger: logger,
		rand:   rand.Reader,
	}
}

// IsEnabled reports whether API key security is switched on.
func (m *CredentialManager) IsEnabled(ctx context.Context) (bool, error) {
	return m.store.Enabled(ctx)
}

// SetEnabled switches API key security on or off. Enabling creates the
// encryption key before the flag flips so no reader ever sees the feature
// enabled without a key. Disabling also clears the stored credential; a new
// one must be generated after re-enabling.
func (m *CredentialManager) SetEnabled(ctx context.Context, enabled bool) error {
	if enabled {
		if _, err := m.store.GetOrCreateEncryptionKey(ctx); err != nil {
			return fmt.Errorf("prepare encryption key: %w", err)
		}
		return m.store.SetEnabled(ctx, true)
	}

	if err := m.store.SetEnabled(ctx, false); err != nil {
		return err
	}
	return m.store.SaveEncryptedCredential(ctx, "")
}

// Generate returns a new credential of the form grad_<32 hex chars>. It has
// no side effects.
func (m *CredentialManager) Generate() (string, error) {
	b := make([]byte, credentialRandomBytes)
	if _, err := io.ReadFull(m.rand, b); err != nil {
		return "", fmt.Errorf("generate credential: %w", err)
	}
	return model.CredentialPrefix + "_" + hex.EncodeToString(b), nil
}

// Credential returns the decrypted stored credential, or "" when none is
// stored. A credential that cannot be decrypted is logged and reported as "".
// It only reads settings, so it is safe on the request path.
func (m *CredentialManager) Credential(ctx context.Context) (string, error) {
	encoded, err := m.store.EncryptedCredential(ctx)
	if err != nil {
		return "", err
	}
	if encoded == "" {
		return "", nil
	}

	key, ok, err := m.store.EncryptionKey(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		m.logger.WarnContext(ctx, "stored API key has no encryption key; treating as unset")
		metrics.CipherFailures.WithLabelValues("missing_key").Inc()
		return "", nil
	}

	env := model.DecodeEnvelope(encoded, m.cipher.IVLength())
	if env.IsEmpty() {
		m.logger.WarnContext(ctx, "stored API key envelope is malformed; treating as unset")
		metrics.CipherFailures.WithLabelValues("decode").Inc()
		return "", nil
	}

	plaintext, err := m.cipher.Decrypt(env, key)
	if errors.Is(err, model.ErrCipherFailure) {
		m.logger.ErrorContext(ctx, "failed to decrypt API key", "error", err)
		metrics.CipherFailures.WithLabelValues("decrypt").Inc()
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return plaintext, nil
}

// SaveCredential encrypts and stores credential, replacing any previous one.
// The empty string clears the stored credential. Encryption failures leave
// the stored value untouched and are returned to the caller.
func (m *CredentialManager) SaveCredential(ctx context.Context, credential string) error {
	if credential == "" {
		return m.store.SaveEncryptedCredential(ctx, "")
	}

	key, err := m.store.GetOrCreateEncryptionKey(ctx)
	if err != nil {
		return err
	}

	env, err := m.cipher.Encrypt(credential, key)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to encrypt API key", "error", err)
		metrics.CipherFailures.WithLabelValues("encrypt").Inc()
		return fmt.Errorf("encrypt credential: %w", err)
	}

	return m.store.SaveEncryptedCredential(ctx, env.Encode())
}

// Regenerate issues a new credential and stores it. The previous credential
// stops validating as soon as this returns successfully.
func (m *CredentialManager) Regenerate(ctx context.Context) (string, error) {
	credential, err := m.Generate()
	if err != nil {
		return "", err
	}
	if err := m.SaveCredential(ctx, credential); err != nil {
		return "", err
	}
	m.logger.InfoContext(ctx, "API key regenerated")
	return credential, nil
}
