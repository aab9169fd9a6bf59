package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"shopify-integration-service/internal/models"
)

const algorithm = "AES-256-GCM"

// ErrNoKey is returned when no encryption key is configured
var ErrNoKey = errors.New("credentials encryption key not configured")

// EncryptedData is the envelope stored in the shop row
type EncryptedData struct {
	Ciphertext  string `json:"ciphertext"` // base64
	Nonce       string `json:"nonce"`      // base64
	Algorithm   string `json:"algorithm"`
	EncryptedAt int64  `json:"encryptedAt"`
}

// CredentialEncryptor seals shop credentials with AES-GCM under a key derived
// from a configured passphrase
type CredentialEncryptor struct {
	key []byte
}

// NewCredentialEncryptor derives a 256-bit key from passphrase
func NewCredentialEncryptor(passphrase string) (*CredentialEncryptor, error) {
	if passphrase == "" {
		return nil, ErrNoKey
	}
	sum := sha256.Sum256([]byte(passphrase))
	return &CredentialEncryptor{key: sum[:]}, nil
}

func (e *CredentialEncryptor) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt seals credentials and returns the JSON envelope
func (e *CredentialEncryptor) Encrypt(creds *models.Credentials) (string, error) {
	plaintext, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("failed to serialize credentials: %w", err)
	}

	gcm, err := e.gcm()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	envelope, err := json.Marshal(&EncryptedData{
		Ciphertext:  base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plaintext, nil)),
		Nonce:       base64.StdEncoding.EncodeToString(nonce),
		Algorithm:   algorithm,
		EncryptedAt: time.Now().Unix(),
	})
	if err != nil {
		return "", err
	}
	return string(envelope), nil
}

// Decrypt opens an envelope produced by Encrypt
func (e *CredentialEncryptor) Decrypt(envelope string) (*models.Credentials, error) {
	var data EncryptedData
	if err := json.Unmarshal([]byte(envelope), &data); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}
	if data.Algorithm != algorithm {
		return nil, fmt.Errorf("unsupported algorithm %q", data.Algorithm)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(data.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(data.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	gcm, err := e.gcm()
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	var creds models.Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("failed to deserialize credentials: %w", err)
	}
	return &creds, nil
}

// MaskSecret keeps the last four characters of a secret for display
func MaskSecret(secret string) string {
	if len(secret) < 8 {
		return "***"
	}
	return "***" + secret[len(secret)-4:]
}
