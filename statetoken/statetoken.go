package statetoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Payload is the continuation state carried through a provider's consent
// redirect. It is tamper-evident but not confidential: anything placed here
// is visible to the user agent.
type Payload struct {
	OrgID     string `json:"org_id"`
	MailboxID string `json:"mailbox_id"`
	Provider  string `json:"provider,omitempty"`
	IssuedAt  int64  `json:"ts,omitempty"`
}

// Codec signs and verifies state tokens using a server-held HMAC secret.
// Tokens are two dot-separated base64url segments (body, tag) and are safe
// to place in a URL query string. No expiry is encoded in the token itself;
// staleness is bounded by the session TTL.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Sign serializes the payload and appends a keyed authentication tag
// computed over the encoded body.
func (c *Codec) Sign(p Payload) string {
	body, err := json.Marshal(p)
	if err != nil {
		// Payload contains only strings and an int64; Marshal cannot fail.
		panic("statetoken: marshal payload: " + err.Error())
	}
	encoded := base64.RawURLEncoding.EncodeToString(body)
	return encoded + "." + c.tag(encoded)
}

// Verify recomputes the tag over the received body and compares it in
// constant time. Callers only learn that the token is invalid, never
// whether the cause was tampering or malformed input.
func (c *Codec) Verify(token string) (Payload, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return Payload{}, false
	}

	if !hmac.Equal([]byte(parts[1]), []byte(c.tag(parts[0]))) {
		return Payload{}, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return Payload{}, false
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, false
	}
	if p.OrgID == "" || p.MailboxID == "" {
		return Payload{}, false
	}
	return p, true
}

func (c *Codec) tag(encodedBody string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encodedBody))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
