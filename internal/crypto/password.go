package crypto

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrDecryptFailed covers every way an encrypted password blob can be bad:
// broken base64, wrong key, mangled padding. Callers must not leak which.
var ErrDecryptFailed = errors.New("unable to decrypt payload")

// Decryptor unwraps password blobs the browser encrypted with the server's
// public key (PKCS#1 v1.5 padding).
type Decryptor struct {
	key *rsa.PrivateKey
}

func NewDecryptor(key *rsa.PrivateKey) *Decryptor {
	return &Decryptor{key: key}
}

func (d *Decryptor) Decrypt(encoded string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecryptFailed
	}

	plaintext, err := rsa.DecryptPKCS1v15(nil, d.key, ciphertext)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

// LoadPrivateKey reads an RSA private key from a PEM file, accepting both
// PKCS#1 and PKCS#8 encodings.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key in %s is not RSA", path)
	}
	return key, nil
}
