package crypto_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/WidodoTrh/api-exordium/internal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func encrypt(t *testing.T, pub *rsa.PublicKey, plaintext string) string {
	t.Helper()
	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(plaintext))
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(ciphertext)
}

func TestDecryptor_RoundTrip(t *testing.T) {
	key := newTestKey(t)
	decryptor := crypto.NewDecryptor(key)

	encoded := encrypt(t, &key.PublicKey, "hunter2hunter2")

	plaintext, err := decryptor.Decrypt(encoded)
	require.NoError(t, err)
	assert.Equal(t, "hunter2hunter2", plaintext)
}

func TestDecryptor_BadInput(t *testing.T) {
	key := newTestKey(t)
	decryptor := crypto.NewDecryptor(key)

	otherKey := newTestKey(t)

	tests := []struct {
		name    string
		encoded string
	}{
		{name: "not base64", encoded: "%%%not-base64%%%"},
		{name: "base64 but not ciphertext", encoded: base64.StdEncoding.EncodeToString([]byte("junk"))},
		{name: "encrypted with wrong key", encoded: encrypt(t, &otherKey.PublicKey, "password123")},
		{name: "empty", encoded: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decryptor.Decrypt(tt.encoded)
			assert.ErrorIs(t, err, crypto.ErrDecryptFailed)
		})
	}
}

func TestLoadPrivateKey(t *testing.T) {
	key := newTestKey(t)
	dir := t.TempDir()

	pkcs1Path := filepath.Join(dir, "pkcs1.pem")
	pkcs1 := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(pkcs1Path, pkcs1, 0o600))

	pkcs8Bytes, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pkcs8Path := filepath.Join(dir, "pkcs8.pem")
	pkcs8 := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: pkcs8Bytes,
	})
	require.NoError(t, os.WriteFile(pkcs8Path, pkcs8, 0o600))

	t.Run("pkcs1", func(t *testing.T) {
		loaded, err := crypto.LoadPrivateKey(pkcs1Path)
		require.NoError(t, err)
		assert.True(t, loaded.Equal(key))
	})

	t.Run("pkcs8", func(t *testing.T) {
		loaded, err := crypto.LoadPrivateKey(pkcs8Path)
		require.NoError(t, err)
		assert.True(t, loaded.Equal(key))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := crypto.LoadPrivateKey(filepath.Join(dir, "nope.pem"))
		assert.Error(t, err)
	})

	t.Run("not pem", func(t *testing.T) {
		badPath := filepath.Join(dir, "bad.pem")
		require.NoError(t, os.WriteFile(badPath, []byte("not a key"), 0o600))
		_, err := crypto.LoadPrivateKey(badPath)
		assert.Error(t, err)
	})
}
