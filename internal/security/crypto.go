package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// keySize is the AES-256 key length in bytes.
	keySize = 32
	// obfuscatedNameLen is the hex-digit length of obfuscated filenames.
	obfuscatedNameLen = 12
)

// keyDerivationInfo is the HKDF context string binding derived keys to
// trial record encryption.
var keyDerivationInfo = []byte("ticketzero-trial-record-v1")

// TrialCipher converts plaintext trial records to machine-bound opaque
// blobs and back. The symmetric key is derived from the machine
// identifier and a deployment salt with HKDF-SHA256, so a blob copied
// to another machine cannot be decrypted there.
type TrialCipher struct {
	salt []byte
}

// NewTrialCipher creates a cipher using the given deployment salt. The
// salt is not secret on its own; it separates key material between
// deployments so records from one product build are useless to another.
func NewTrialCipher(salt string) (*TrialCipher, error) {
	if salt == "" {
		return nil, fmt.Errorf("derivation salt cannot be empty")
	}
	return &TrialCipher{salt: []byte(salt)}, nil
}

// deriveKey produces the per-machine AES-256 key.
func (c *TrialCipher) deriveKey(machineID string) ([]byte, error) {
	reader := hkdf.New(sha256.New, []byte(machineID), c.salt, keyDerivationInfo)
	key := make([]byte, keySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	return key, nil
}

// EncryptTrialData seals plaintext under the key derived for machineID.
// The returned blob is nonce-prefixed AES-256-GCM ciphertext.
func (c *TrialCipher) EncryptTrialData(plaintext []byte, machineID string) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("plaintext cannot be empty")
	}
	if machineID == "" {
		return nil, fmt.Errorf("machine identifier cannot be empty")
	}

	key, err := c.deriveKey(machineID)
	if err != nil {
		return nil, err
	}
	defer wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptTrialData opens a blob sealed by EncryptTrialData. The second
// return value is false on ANY failure (wrong machine, corrupted or
// truncated data); callers treat that as "no usable record", never as
// an error to propagate.
func (c *TrialCipher) DecryptTrialData(blob []byte, machineID string) ([]byte, bool) {
	key, err := c.deriveKey(machineID)
	if err != nil {
		return nil, false
	}
	defer wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, false
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, false
	}

	if len(blob) < gcm.NonceSize() {
		return nil, false
	}

	nonce, ciphertext := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, false
	}

	return plaintext, true
}

// ObfuscateFilename produces a short, non-obvious filename for a stored
// record: "." plus the first 12 hex digits of MD5(base+machineID) plus
// ".dat". Deterministic per (base, machineID). This reduces casual
// discoverability only; it is NOT a security boundary.
func ObfuscateFilename(base, machineID string) string {
	sum := md5.Sum([]byte(base + machineID))
	return fmt.Sprintf(".%s.dat", hex.EncodeToString(sum[:])[:obfuscatedNameLen])
}

// wipe zeroes key material after use.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
