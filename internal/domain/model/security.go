package model

import (
	"encoding/base64"
	"errors"
)

// Option names under which the security settings are persisted.
const (
	OptionAPIEnabled     = "graduates_api_enabled"
	OptionAPIKey         = "graduates_api_key"
	OptionEncryptionKey  = "graduates_encryption_key"
	OptionInstallSalt    = "graduates_install_salt"
	CredentialPrefix     = "grad"
	CredentialHeaderName = "X-Graduates-API-Key"
)

// SecurityOptions lists the options removed on teardown.
var SecurityOptions = []string{OptionAPIEnabled, OptionAPIKey, OptionEncryptionKey}

var (
	// ErrMissingCredential is returned when the feature is enabled and the
	// caller supplied no credential.
	ErrMissingCredential = errors.New("missing API key")

	// ErrInvalidCredential is returned when the supplied credential does not
	// match the stored one.
	ErrInvalidCredential = errors.New("invalid API key")

	// ErrCipherFailure wraps any failure of the symmetric cipher.
	ErrCipherFailure = errors.New("cipher failure")

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// SecuritySettings is a point-in-time view of the persisted security options.
type SecuritySettings struct {
	Enabled             bool
	EncryptedCredential string
	EncryptionKey       []byte
}

// HasCredential reports whether an encrypted credential is stored.
func (s SecuritySettings) HasCredential() bool {
	return s.EncryptedCredential != ""
}

// Envelope is an encrypted credential: the nonce followed by the sealed bytes.
type Envelope struct {
	IV         []byte
	Ciphertext []byte
}

// IsEmpty reports whether the envelope carries no ciphertext.
func (e Envelope) IsEmpty() bool {
	return len(e.IV) == 0 && len(e.Ciphertext) == 0
}

// Encode returns base64(IV || Ciphertext). The empty envelope encodes to "".
func (e Envelope) Encode() string {
	if e.IsEmpty() {
		return ""
	}
	buf := make([]byte, 0, len(e.IV)+len(e.Ciphertext))
	buf = append(buf, e.IV...)
	buf = append(buf, e.Ciphertext...)
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeEnvelope splits an encoded envelope using the cipher's IV length.
// Empty input, invalid base64, and payloads shorter than ivLen all decode to
// the empty envelope.
func DecodeEnvelope(encoded string, ivLen int) Envelope {
	if encoded == "" {
		return Envelope{}
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) < ivLen || len(data) == 0 {
		return Envelope{}
	}
	return Envelope{IV: data[:ivLen], Ciphertext: data[ivLen:]}
}
