// Package crypto seals the subscription state before it leaves the machine.
//
// Sealed payloads carry their own salt and nonce, so one passphrase can decrypt every
// revision. Content without the sealed prefix is passed through unchanged so that state
// written before encryption was enabled keeps loading.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	iterations = 100000
	keySize    = 32 // AES-256
)

// sealedPrefix marks encrypted content
var sealedPrefix = []byte("subwatch:v1:")

// ErrDecrypt is returned when sealed content cannot be opened with the configured passphrase
var ErrDecrypt = errors.New("cannot decrypt sealed state")

// Encryptor seals and opens payloads with a passphrase. A nil Encryptor passes data through.
type Encryptor struct {
	passphrase []byte
}

// NewEncryptor creates an encryptor for passphrase. An empty passphrase returns nil.
func NewEncryptor(passphrase string) *Encryptor {
	if passphrase == "" {
		return nil
	}
	return &Encryptor{passphrase: []byte(passphrase)}
}

// IsSealed reports whether data was produced by Seal
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, sealedPrefix)
}

func (e *Encryptor) gcm(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(e.passphrase, salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM under a fresh salt and nonce
func (e *Encryptor) Seal(plaintext []byte) ([]byte, error) {
	if e == nil {
		return plaintext, nil
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.Wrap(err, "generating salt")
	}
	gcm, err := e.gcm(salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(err, "generating nonce")
	}

	raw := append(salt, nonce...)
	raw = gcm.Seal(raw, nonce, plaintext, nil)

	out := make([]byte, len(sealedPrefix)+base64.StdEncoding.EncodedLen(len(raw)))
	copy(out, sealedPrefix)
	base64.StdEncoding.Encode(out[len(sealedPrefix):], raw)
	return out, nil
}

// Open decrypts data produced by Seal. Unsealed data is returned as is.
func (e *Encryptor) Open(data []byte) ([]byte, error) {
	if !IsSealed(data) {
		return data, nil
	}
	if e == nil {
		return nil, errors.Wrap(ErrDecrypt, "no encryption key configured")
	}

	raw, err := base64.StdEncoding.DecodeString(string(data[len(sealedPrefix):]))
	if err != nil {
		return nil, errors.Wrap(ErrDecrypt, err.Error())
	}
	if len(raw) < saltSize {
		return nil, errors.Wrap(ErrDecrypt, "ciphertext too short")
	}

	salt, rest := raw[:saltSize], raw[saltSize:]
	gcm, err := e.gcm(salt)
	if err != nil {
		return nil, err
	}
	if len(rest) < gcm.NonceSize() {
		return nil, errors.Wrap(ErrDecrypt, "ciphertext too short")
	}

	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(ErrDecrypt, "wrong key or tampered data")
	}
	return plaintext, nil
}
