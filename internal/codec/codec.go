// Package codec maps a ticket's identifying fields to and from the portable
// token string embedded in the QR code on the holder's pass. The token is a
// field-keyed JSON object wrapped in URL-safe base64: lossless, order
// independent and safe to carry in a URL. It is an encoding, not a signature;
// the validation engine re-checks state server-side regardless of content.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// ErrMalformed indicates the scanned text is not a valid ticket token.
var ErrMalformed = errors.New("malformed ticket token")

// TokenPayload is the subset of ticket fields carried inside the token.
// JSON keys match the payload rendered into existing QR codes, so tokens
// produced before this service remain decodable.
type TokenPayload struct {
	ID             string `json:"id"`
	EventID        string `json:"eventId"`
	HolderName     string `json:"name"`
	HolderPhone    string `json:"phone"`
	HolderDocument string `json:"document,omitempty"`
}

// Encode serializes the payload into a transportable token string.
func Encode(p TokenPayload) string {
	raw, err := json.Marshal(p)
	if err != nil {
		// A struct of plain strings cannot fail to marshal.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode reverses Encode. It returns ErrMalformed when the text transform
// cannot be reversed, the payload is not a JSON object, or the required id
// field is missing. Unknown fields are ignored so newer encoders keep working
// against this decoder.
func Decode(token string) (TokenPayload, error) {
	raw, err := decodeBase64(token)
	if err != nil {
		return TokenPayload{}, ErrMalformed
	}

	var p TokenPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return TokenPayload{}, ErrMalformed
	}
	if p.ID == "" {
		return TokenPayload{}, ErrMalformed
	}
	return p, nil
}

// decodeBase64 accepts the URL-safe alphabet used by Encode as well as
// standard padded base64 emitted by older pass renderers.
func decodeBase64(token string) ([]byte, error) {
	if raw, err := base64.RawURLEncoding.DecodeString(token); err == nil {
		return raw, nil
	}
	if raw, err := base64.URLEncoding.DecodeString(token); err == nil {
		return raw, nil
	}
	return base64.StdEncoding.DecodeString(token)
}
