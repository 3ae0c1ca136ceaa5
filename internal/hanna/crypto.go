package hanna

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
)

// The AES key shipped inside the Hanna Cloud web client bundle. It is public
// by construction (every browser downloads it), so treating it as a constant
// is fine. The server only accepts credentials encrypted under this exact
// key/mode/padding, so none of it can be changed.
const credentialKeyBase64 = "MzJmODBmMDU0ZTAyNDFjYWM0YTVhOGQxY2ZlZTkwMDM="

// IVs are 16 characters drawn from letters and digits, matching the vendor's
// own client. The IV doubles as the CBC initialization vector and travels in
// clear before the ':' separator.
const ivAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const ivLength = 16

// credentialCipher encrypts plaintext credentials into the
// "<16-char-iv>:<hex-ciphertext>" wire format expected by /api/auth.
type credentialCipher struct {
	block cipher.Block
}

func newCredentialCipher() (*credentialCipher, error) {
	key, err := base64.StdEncoding.DecodeString(credentialKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("decode credential key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init credential cipher: %w", err)
	}
	return &credentialCipher{block: block}, nil
}

// Encrypt encrypts plaintext under AES-256-CBC with a fresh random IV and
// PKCS#7 padding. Two calls with the same plaintext produce different output.
func (c *credentialCipher) Encrypt(plaintext string) string {
	iv := randomIV()
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, []byte(iv)).CryptBlocks(out, padded)
	return iv + ":" + hex.EncodeToString(out)
}

// decrypt reverses Encrypt. Only used by tests to verify round-trips; the
// live protocol never decrypts on our side.
func (c *credentialCipher) decrypt(encoded string) (string, error) {
	iv, hexPart, ok := strings.Cut(encoded, ":")
	if !ok || len(iv) != ivLength {
		return "", fmt.Errorf("malformed credential ciphertext %q", encoded)
	}
	data, err := hex.DecodeString(hexPart)
	if err != nil {
		return "", err
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d not a block multiple", len(data))
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(c.block, []byte(iv)).CryptBlocks(out, data)
	return string(pkcs7Unpad(out)), nil
}

// randomIV uses math/rand on purpose: the vendor's client does the same, and
// the IV is not load-bearing for secrecy here. See DESIGN.md.
func randomIV() string {
	b := make([]byte, ivLength)
	for i := range b {
		b[i] = ivAlphabet[rand.Intn(len(ivAlphabet))]
	}
	return string(b)
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	n := int(b[len(b)-1])
	if n == 0 || n > len(b) {
		return b
	}
	return b[:len(b)-n]
}
