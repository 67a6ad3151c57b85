package docpager

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var _encoder = base64.RawURLEncoding

// Payload is the content of a cursor token: the token values of a pivot and
// the scheme of the ordering it was produced under. Decoded integers are
// int64 and other numbers float64.
type Payload struct {
	Scheme string         `json:"k,omitempty"`
	Values map[string]any `json:"v"`
}

// DecodeStatus tags the outcome of Codec.Decode.
type DecodeStatus int

const (
	// CursorAbsent means no token was supplied.
	CursorAbsent DecodeStatus = iota
	// CursorDecoded means the token was verified and parsed.
	CursorDecoded
	// CursorInvalid covers malformed, tampered and foreign tokens alike.
	CursorInvalid
)

func (s DecodeStatus) String() string {
	switch s {
	case CursorAbsent:
		return "absent"
	case CursorDecoded:
		return "decoded"
	case CursorInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("DecodeStatus(%d)", int(s))
	}
}

// DecodeResult is returned by Codec.Decode. Payload is only meaningful when
// Status is CursorDecoded; Err carries the reason of CursorInvalid.
type DecodeResult struct {
	Status  DecodeStatus
	Payload Payload
	Err     error
}

func invalid(err error) DecodeResult {
	return DecodeResult{Status: CursorInvalid, Err: err}
}

var errEmptyPayload = errors.New("cursor carries no values")

// Codec turns payloads into opaque tokens and back.
//
// With a secret, tokens are HS256 signed JWTs: they cannot be forged or
// altered without the secret, and they never expire. Without a secret, tokens
// are base64url encoded JSON. A nil *Codec is a valid plain codec.
type Codec struct {
	secret []byte
}

// NewCodec returns a codec signing with secret. An empty secret selects plain
// encoding.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Signed reports whether tokens are authenticated.
func (c *Codec) Signed() bool {
	return c != nil && len(c.secret) > 0
}

type cursorClaims struct {
	Payload
	jwt.RegisteredClaims
}

// Encode serializes the payload into a token.
func (c *Codec) Encode(p Payload) (string, error) {
	if c.Signed() {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cursorClaims{Payload: p}).SignedString(c.secret)
		if err != nil {
			return "", fmt.Errorf("cannot sign cursor: %w", err)
		}

		return token, nil
	}

	jTok, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("cannot marshal cursor value: %w", err)
	}

	return _encoder.EncodeToString(jTok), nil
}

// Decode verifies and parses a token. It never fails: every problem with the
// token results in CursorInvalid.
func (c *Codec) Decode(token string) DecodeResult {
	if token == "" {
		return DecodeResult{Status: CursorAbsent}
	}

	var (
		p   Payload
		err error
	)
	if c.Signed() {
		p, err = c.verify(token)
	} else {
		p, err = parsePlain(token)
	}

	if err != nil {
		return invalid(err)
	}
	if len(p.Values) == 0 {
		return invalid(errEmptyPayload)
	}
	nativeNumbers(p.Values)

	return DecodeResult{Status: CursorDecoded, Payload: p}
}

func (c *Codec) verify(token string) (Payload, error) {
	claims := new(cursorClaims)
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithJSONNumber(),
	)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to verify signed cursor: %w", err)
	}

	return claims.Payload, nil
}

func parsePlain(token string) (Payload, error) {
	jsonData, err := _encoder.DecodeString(token)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to decode base64 encoded cursor: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()

	var p Payload
	if err = dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("failed to unmarshal json encoded cursor: %w", err)
	}
	if dec.More() {
		return Payload{}, errors.New("trailing data after json encoded cursor")
	}

	return p, nil
}

// nativeNumbers replaces json.Number values with int64 when the number is
// integral, float64 otherwise.
func nativeNumbers(values map[string]any) {
	for field, v := range values {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}

		if i, err := n.Int64(); err == nil {
			values[field] = i
		} else if f, err := n.Float64(); err == nil {
			values[field] = f
		}
	}
}
