// Package encoding provides the signed codec used for session snapshots.
//
// Snapshots round-trip through storage the engine does not control
// (files, key-value stores, client-side storage), so they are signed:
// visible, but tamper-proof. They carry no secrets, so they are not
// encrypted.
package encoding

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec errors.
var (
	ErrFormat    = errors.New("encoding: invalid format")
	ErrSignature = errors.New("encoding: signature verification failed")
)

// Codec signs and verifies msgpack-serialized values.
type Codec struct {
	key []byte
}

// NewCodec creates a codec with the given signing key. Keys shorter than
// 32 bytes are stretched through SHA-256.
func NewCodec(key []byte) *Codec {
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}
	return &Codec{key: key}
}

// Encode serializes v and returns a signed, URL-safe string.
func (c *Codec) Encode(v any) (string, error) {
	packed, err := msgpack.Marshal(v)
	if err != nil {
		return "", err
	}
	return c.sign(packed), nil
}

// Decode verifies a signed string and deserializes it into v.
func (c *Codec) Decode(encoded string, v any) error {
	packed, err := c.verify(encoded)
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(packed, v)
}

// sign produces base64(data).base64(signature).
func (c *Codec) sign(data []byte) string {
	b64 := base64.RawURLEncoding.EncodeToString(data)
	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
	return b64 + "." + sig
}

func (c *Codec) verify(encoded string) ([]byte, error) {
	payload, sigPart, found := strings.Cut(encoded, ".")
	if !found {
		return nil, ErrFormat
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrFormat
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return nil, ErrFormat
	}
	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	expected := mac.Sum(nil)[:16]
	if !hmac.Equal(sig, expected) {
		return nil, ErrSignature
	}
	return data, nil
}
