package domain

import "encoding/json"

// Claims is the decoded, unverified payload of a JWT
type Claims map[string]interface{}

// DecodedPayload is the outcome of decoding one token: either Claims or Err is set.
type DecodedPayload struct {
	Claims Claims
	Err    error
}

// OK reports whether the payload decoded successfully
func (d *DecodedPayload) OK() bool {
	return d != nil && d.Err == nil
}

// MarshalJSON renders the claims on success and {"error": "..."} on failure.
func (d *DecodedPayload) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	if d.Err != nil {
		return json.Marshal(map[string]string{"error": d.Err.Error()})
	}
	return json.Marshal(d.Claims)
}
