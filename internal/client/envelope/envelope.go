// Package envelope implements the client-side encryption envelope: a
// symmetric key derived from a user passphrase and a stored salt, used to
// encrypt and decrypt note fields. A verification ciphertext persisted with
// the profile lets the client validate the passphrase at login without ever
// storing the key.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrInvalidKey is returned when a ciphertext fails authentication:
	// wrong passphrase or corrupted data. It is distinguishable from remote
	// errors so the caller can degrade to a safe display state.
	ErrInvalidKey = errors.New("invalid encryption key")

	// ErrMalformedCiphertext is returned when a stored value is not a valid
	// envelope ciphertext at all.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// ErrPassphraseTooShort is returned at setup for passphrases below the
	// minimum length.
	ErrPassphraseTooShort = fmt.Errorf("passphrase must be at least %d characters", MinPassphraseLen)
)

// MinPassphraseLen is the minimum accepted passphrase length at setup.
const MinPassphraseLen = 8

const saltSize = 32

// verificationValue is the known constant whose encryption is stored with
// the profile. Decrypting it back proves the derived key is right.
const verificationValue = "chalkboard-envelope-v1"

// Envelope holds a derived key for one session. It lives only in memory.
type Envelope struct {
	aead cipher.AEAD
}

// deriveKey stretches the passphrase with Argon2id.
func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return aead, nil
}

// Setup creates a fresh envelope for a new account: it generates a random
// salt, derives the key, and produces the verification ciphertext to persist
// alongside the salt in the identity's profile.
func Setup(passphrase []byte) (env *Envelope, salt, verifier []byte, err error) {
	if len(passphrase) < MinPassphraseLen {
		return nil, nil, nil, ErrPassphraseTooShort
	}

	salt = make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, nil, fmt.Errorf("generate salt: %w", err)
	}

	aead, err := newAEAD(deriveKey(passphrase, salt))
	if err != nil {
		return nil, nil, nil, err
	}
	env = &Envelope{aead: aead}

	verifier, err = env.seal([]byte(verificationValue))
	if err != nil {
		return nil, nil, nil, err
	}
	return env, salt, verifier, nil
}

// Unlock re-derives the key from the passphrase and the stored salt and
// validates it against the stored verification ciphertext. A wrong
// passphrase yields ErrInvalidKey; the caller must abort the session rather
// than proceed unencrypted.
func Unlock(passphrase, salt, verifier []byte) (*Envelope, error) {
	aead, err := newAEAD(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	env := &Envelope{aead: aead}

	plain, err := env.open(verifier)
	if err != nil {
		return nil, ErrInvalidKey
	}
	if subtle.ConstantTimeCompare(plain, []byte(verificationValue)) == 0 {
		return nil, ErrInvalidKey
	}
	return env, nil
}

// seal encrypts plaintext and returns nonce||ciphertext.
func (e *Envelope) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts nonce||ciphertext produced by seal.
func (e *Envelope) open(data []byte) ([]byte, error) {
	if len(data) < e.aead.NonceSize() {
		return nil, ErrMalformedCiphertext
	}
	nonce, ct := data[:e.aead.NonceSize()], data[e.aead.NonceSize():]
	plain, err := e.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return plain, nil
}

// EncryptField encrypts one string field into base64(nonce||ciphertext).
func (e *Envelope) EncryptField(plaintext string) (string, error) {
	sealed, err := e.seal([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptField reverses EncryptField. Decryption with a wrong key or a
// corrupted value always fails with a distinguishable error, never returns
// a plausible-looking wrong string.
func (e *Envelope) DecryptField(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	plain, err := e.open(data)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
