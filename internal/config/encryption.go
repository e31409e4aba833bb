// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// SealedPrefix marks a config value stored as base64(nonce || ciphertext || tag).
const SealedPrefix = "enc:"

const (
	secretSalt  = "filmvault-config-secrets"
	secretInfo  = "mirror-credentials-v1"
	aesKeySize  = 32
	gcmNonceLen = 12
)

var (
	// ErrEmptySecret is returned when no JWT secret is available to derive the key.
	ErrEmptySecret = errors.New("JWT secret cannot be empty")

	// ErrEmptyPlaintext is returned when attempting to seal an empty value.
	ErrEmptyPlaintext = errors.New("plaintext cannot be empty")

	// ErrDecryptionFailed is returned for tampered data or a different JWT secret.
	ErrDecryptionFailed = errors.New("decryption failed: invalid ciphertext or authentication tag")

	// ErrInvalidCiphertext is returned when the sealed value is malformed.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
)

// CredentialEncryptor seals config secrets with AES-256-GCM under a key
// derived from the JWT secret with HKDF-SHA256.
type CredentialEncryptor struct {
	aead cipher.AEAD
}

// NewCredentialEncryptor derives the sealing key from jwtSecret.
func NewCredentialEncryptor(jwtSecret string) (*CredentialEncryptor, error) {
	if jwtSecret == "" {
		return nil, ErrEmptySecret
	}

	key := make([]byte, aesKeySize)
	kdf := hkdf.New(sha256.New, []byte(jwtSecret), []byte(secretSalt), []byte(secretInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &CredentialEncryptor{aead: aead}, nil
}

// Seal encrypts plaintext and returns it with SealedPrefix.
func (e *CredentialEncryptor) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPlaintext
	}
	nonce := make([]byte, gcmNonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (e *CredentialEncryptor) Open(value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(raw) < gcmNonceLen+1+e.aead.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrInvalidCiphertext)
	}
	plain, err := e.aead.Open(nil, raw[:gcmNonceLen], raw[gcmNonceLen:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

// IsSealed reports whether value carries SealedPrefix.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, SealedPrefix)
}

// SealSecret is a convenience wrapper used by the CLI's encrypt-secret command.
func SealSecret(plaintext, jwtSecret string) (string, error) {
	enc, err := NewCredentialEncryptor(jwtSecret)
	if err != nil {
		return "", err
	}
	return enc.Seal(plaintext)
}

// OpenSecret decrypts a sealed value.
func OpenSecret(value, jwtSecret string) (string, error) {
	enc, err := NewCredentialEncryptor(jwtSecret)
	if err != nil {
		return "", err
	}
	return enc.Open(value)
}

// MaskCredential shows only the last 4 characters of a credential.
func MaskCredential(credential string) string {
	if credential == "" {
		return ""
	}
	if len(credential) <= 4 {
		return "****"
	}
	return "****..." + credential[len(credential)-4:]
}
