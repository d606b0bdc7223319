package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/ericfisherdev/graduates/internal/domain/model"
	"github.com/ericfisherdev/graduates/internal/domain/port/driven"
)

// ErrCorruptEncryptionKey is returned when the stored encryption key cannot be
// decoded. The key is never regenerated in that case: a new key would make
// every stored credential undecryptable.
var ErrCorruptEncryptionKey = errors.New("stored encryption key is corrupt")

// keyDerivationInfo binds derived keys to their purpose.
const keyDerivationInfo = "graduates credential encryption key v1"

// SecretStore persists the three security settings (enabled flag, encrypted
// credential, encryption key) through the settings port. Every read goes to
// the store; nothing is cached across calls.
type SecretStore struct {
	settings driven.SettingsStore
	salt     string // installation salt; generated and persisted when empty
	rand     io.Reader

	mu sync.Mutex // serializes writes to the three values
}

// NewSecretStore creates a SecretStore. installSalt mixes an installation
// specific value into key derivation; pass "" to use a per-database salt that
// is generated on first use.
func NewSecretStore(settings driven.SettingsStore, installSalt string) *SecretStore {
	return &SecretStore{
		settings: settings,
		salt:     installSalt,
		rand:     rand.Reader,
	}
}

// Enabled reports whether API key security is switched on.
func (s *SecretStore) Enabled(ctx context.Context) (bool, error) {
	v, ok, err := s.settings.Get(ctx, model.OptionAPIEnabled)
	if err != nil {
		return false, fmt.Errorf("read enabled flag: %w", err)
	}
	if !ok || v == "" {
		return false, nil
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse enabled flag %q: %w", v, err)
	}
	return enabled, nil
}

// SetEnabled stores the enabled flag.
func (s *SecretStore) SetEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.settings.Set(ctx, model.OptionAPIEnabled, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("write enabled flag: %w", err)
	}
	return nil
}

// EncryptedCredential returns the encoded envelope, or "" when none is stored.
func (s *SecretStore) EncryptedCredential(ctx context.Context) (string, error) {
	v, _, err := s.settings.Get(ctx, model.OptionAPIKey)
	if err != nil {
		return "", fmt.Errorf("read encrypted credential: %w", err)
	}
	return v, nil
}

// SaveEncryptedCredential stores the encoded envelope. An empty value deletes
// the stored credential instead of writing an empty string.
func (s *SecretStore) SaveEncryptedCredential(ctx context.Context, encoded string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if encoded == "" {
		if err := s.settings.Delete(ctx, model.OptionAPIKey); err != nil {
			return fmt.Errorf("delete encrypted credential: %w", err)
		}
		return nil
	}
	if err := s.settings.Set(ctx, model.OptionAPIKey, encoded); err != nil {
		return fmt.Errorf("write encrypted credential: %w", err)
	}
	return nil
}

// GetOrCreateEncryptionKey returns the installation's encryption key, deriving
// and persisting one on first use. Later calls return the identical bytes
// until Purge removes the key.
func (s *SecretStore) GetOrCreateEncryptionKey(ctx context.Context) ([]byte, error) {
	v, ok, err := s.settings.Get(ctx, model.OptionEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("read encryption key: %w", err)
	}
	if ok && v != "" {
		return decodeKey(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	salt, err := s.installSalt(ctx)
	if err != nil {
		return nil, err
	}
	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	// Another writer may have stored a key since the read above; the stored
	// value wins.
	stored, err := s.settings.SetIfAbsent(ctx, model.OptionEncryptionKey, hex.EncodeToString(key))
	if err != nil {
		return nil, fmt.Errorf("write encryption key: %w", err)
	}
	return decodeKey(stored)
}

// Purge deletes the enabled flag, the encrypted credential, and the encryption
// key. The installation salt is kept.
func (s *SecretStore) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range model.SecurityOptions {
		if err := s.settings.Delete(ctx, name); err != nil {
			return fmt.Errorf("purge %s: %w", name, err)
		}
	}
	return nil
}

// Snapshot reads all three settings without creating the encryption key.
func (s *SecretStore) Snapshot(ctx context.Context) (model.SecuritySettings, error) {
	enabled, err := s.Enabled(ctx)
	if err != nil {
		return model.SecuritySettings{}, err
	}
	encoded, err := s.EncryptedCredential(ctx)
	if err != nil {
		return model.SecuritySettings{}, err
	}

	key, _, err := s.EncryptionKey(ctx)
	if err != nil {
		return model.SecuritySettings{}, err
	}

	return model.SecuritySettings{Enabled: enabled, EncryptedCredential: encoded, EncryptionKey: key}, nil
}

// EncryptionKey returns the stored key without ever creating one. ok is
// false when no key is stored.
func (s *SecretStore) EncryptionKey(ctx context.Context) (key []byte, ok bool, err error) {
	v, ok, err := s.settings.Get(ctx, model.OptionEncryptionKey)
	if err != nil {
		return nil, false, fmt.Errorf("read encryption key: %w", err)
	}
	if !ok || v == "" {
		return nil, false, nil
	}
	if key, err = decodeKey(v); err != nil {
		return nil, false, err
	}
	return key, true, nil
}

// installSalt returns the configured salt, or the per-database salt, creating
// it if needed. Callers hold s.mu.
func (s *SecretStore) installSalt(ctx context.Context) (string, error) {
	if s.salt != "" {
		return s.salt, nil
	}
	salt, err := s.settings.SetIfAbsent(ctx, model.OptionInstallSalt, uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("install salt: %w", err)
	}
	return salt, nil
}

// deriveKey expands a fresh random seed mixed with salt into an AES-256 key.
func (s *SecretStore) deriveKey(salt string) ([]byte, error) {
	seed := make([]byte, EncryptionKeySize)
	if _, err := io.ReadFull(s.rand, seed); err != nil {
		return nil, fmt.Errorf("read key seed: %w", err)
	}

	key := make([]byte, EncryptionKeySize)
	r := hkdf.New(sha256.New, seed, []byte(salt), []byte(keyDerivationInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

func decodeKey(encoded string) ([]byte, error) {
	key, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEncryptionKey, err)
	}
	if len(key) != EncryptionKeySize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrCorruptEncryptionKey, len(key), EncryptionKeySize)
	}
	return key, nil
}
