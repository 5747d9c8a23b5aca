package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	a := GenerateSalt()
	b := GenerateSalt()

	assert.Len(t, a, SaltSize)
	assert.Len(t, b, SaltSize)
	assert.NotEqual(t, a, b, "two salts should differ")
}

func TestGenerateNonce(t *testing.T) {
	a := GenerateNonce()
	b := GenerateNonce()

	assert.Len(t, a, NonceSize)
	assert.NotEqual(t, a, b)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0x42}, SaltSize)

	k1, err := DeriveKey([]byte("correct horse battery staple"), salt)
	require.NoError(t, err)
	defer k1.Destroy()

	k2, err := DeriveKey([]byte("correct horse battery staple"), salt)
	require.NoError(t, err)
	defer k2.Destroy()

	assert.Equal(t, KeySize, k1.Size())
	assert.True(t, ConstantTimeCompare(k1.Bytes(), k2.Bytes()))
}

func TestDeriveKeyDependsOnInputs(t *testing.T) {
	salt1 := bytes.Repeat([]byte{0x01}, SaltSize)
	salt2 := bytes.Repeat([]byte{0x02}, SaltSize)

	base, err := DeriveKey([]byte("secret"), salt1)
	require.NoError(t, err)
	defer base.Destroy()

	otherSalt, err := DeriveKey([]byte("secret"), salt2)
	require.NoError(t, err)
	defer otherSalt.Destroy()

	otherPass, err := DeriveKey([]byte("secret2"), salt1)
	require.NoError(t, err)
	defer otherPass.Destroy()

	assert.False(t, ConstantTimeCompare(base.Bytes(), otherSalt.Bytes()))
	assert.False(t, ConstantTimeCompare(base.Bytes(), otherPass.Bytes()))
}

func TestDeriveKeyRejectsShortSalt(t *testing.T) {
	_, err := DeriveKey([]byte("secret"), []byte("short"))
	assert.ErrorIs(t, err, ErrKeyDerivation)
}

func TestDeriveKeyEmptyPassphrase(t *testing.T) {
	key, err := DeriveKey(nil, GenerateSalt())
	require.NoError(t, err)
	defer key.Destroy()

	assert.Equal(t, KeySize, key.Size())
}

func TestEncryptDecrypt(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, KeySize)
	nonce := GenerateNonce()
	plaintext := []byte("clipboard contents")

	ciphertext, err := Encrypt(key, nonce, plaintext)
	require.NoError(t, err)
	assert.Len(t, ciphertext, len(plaintext)+TagSize)

	decrypted, err := Decrypt(key, nonce, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptEmptyPlaintext(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, KeySize)
	nonce := GenerateNonce()

	ciphertext, err := Encrypt(key, nonce, nil)
	require.NoError(t, err)
	assert.Len(t, ciphertext, TagSize)

	decrypted, err := Decrypt(key, nonce, ciphertext)
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestDecryptFailures(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, KeySize)
	nonce := GenerateNonce()
	ciphertext, err := Encrypt(key, nonce, []byte("payload"))
	require.NoError(t, err)

	wrongKey := bytes.Repeat([]byte{0x08}, KeySize)
	_, err = Decrypt(wrongKey, nonce, ciphertext)
	assert.ErrorIs(t, err, ErrDecryption, "wrong key")

	_, err = Decrypt(key, GenerateNonce(), ciphertext)
	assert.ErrorIs(t, err, ErrDecryption, "wrong nonce")

	tampered := append([]byte(nil), ciphertext...)
	tampered[0] ^= 0x01
	_, err = Decrypt(key, nonce, tampered)
	assert.ErrorIs(t, err, ErrDecryption, "tampered ciphertext")

	_, err = Decrypt(key, nonce, ciphertext[:TagSize-1])
	assert.ErrorIs(t, err, ErrDecryption, "truncated ciphertext")
}

func TestDecryptErrorCarriesNoDetail(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, KeySize)
	nonce := GenerateNonce()
	ciphertext, err := Encrypt(key, nonce, []byte("payload"))
	require.NoError(t, err)
	ciphertext[len(ciphertext)-1] ^= 0x80

	_, err = Decrypt(key, nonce, ciphertext)
	require.Error(t, err)
	assert.Equal(t, ErrDecryption.Error(), err.Error())
}

func TestInvalidNonce(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, KeySize)

	_, err := Encrypt(key, make([]byte, 11), []byte("x"))
	var nonceErr *InvalidNonceError
	require.True(t, errors.As(err, &nonceErr))
	assert.Equal(t, 11, nonceErr.Length)

	_, err = Decrypt(key, make([]byte, 13), make([]byte, 32))
	require.True(t, errors.As(err, &nonceErr))
	assert.Equal(t, 13, nonceErr.Length)
}

func TestInvalidKeySize(t *testing.T) {
	_, err := Encrypt(make([]byte, 16), GenerateNonce(), []byte("x"))
	assert.ErrorIs(t, err, ErrEncryption)
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = Decrypt(make([]byte, 16), GenerateNonce(), make([]byte, 32))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestClearBytes(t *testing.T) {
	b := []byte("sensitive")
	ClearBytes(b)
	assert.Equal(t, make([]byte, len("sensitive")), b)
}
