package auth

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Audience represents the JWT aud claim, which may be a single string or a
// list of strings on the wire. The two shapes are folded into one type with a
// uniform Contains check so call sites never branch on the wire format.
type Audience struct {
	values []string
	isList bool
	set    bool
}

// UnmarshalJSON accepts either a JSON string or an array of strings
func (a *Audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		a.values = []string{single}
		a.isList = false
		a.set = true
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		a.values = list
		a.isList = true
		a.set = true
		return nil
	}

	return fmt.Errorf("aud claim must be a string or array of strings")
}

// MarshalJSON preserves the original wire shape
func (a Audience) MarshalJSON() ([]byte, error) {
	if !a.set {
		return []byte("null"), nil
	}
	if !a.isList && len(a.values) == 1 {
		return json.Marshal(a.values[0])
	}
	return json.Marshal(a.values)
}

// Present reports whether the claim appeared in the token at all
func (a Audience) Present() bool {
	return a.set
}

// Contains reports whether any audience element equals value exactly
func (a Audience) Contains(value string) bool {
	for _, v := range a.values {
		if v == value {
			return true
		}
	}
	return false
}

// Values returns the audience elements (empty when the claim was absent)
func (a Audience) Values() []string {
	return a.values
}

// Claims holds the JWT claims this server cares about: the registered claims
// plus Miro's team_id and the space-separated scope string. Claims are parsed
// once per uncached validation and discarded after extraction into UserInfo.
type Claims struct {
	Subject   string   `json:"sub"`
	Aud       Audience `json:"aud,omitempty"`
	ExpiresAt int64    `json:"exp"`
	IssuedAt  int64    `json:"iat,omitempty"`
	Issuer    string   `json:"iss,omitempty"`
	Scope     string   `json:"scope,omitempty"`
	TeamID    string   `json:"team_id,omitempty"`
}

// The jwt.Claims interface is implemented so the golang-jwt parser can decode
// directly into this type. The parser's own claim validation is not used; the
// validator applies expiry and audience checks itself.

// GetExpirationTime implements jwt.Claims
func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.ExpiresAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(unixTime(c.ExpiresAt)), nil
}

// GetIssuedAt implements jwt.Claims
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	if c.IssuedAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(unixTime(c.IssuedAt)), nil
}

// GetNotBefore implements jwt.Claims
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims
func (c *Claims) GetIssuer() (string, error) {
	return c.Issuer, nil
}

// GetSubject implements jwt.Claims
func (c *Claims) GetSubject() (string, error) {
	return c.Subject, nil
}

// GetAudience implements jwt.Claims
func (c *Claims) GetAudience() (jwt.ClaimStrings, error) {
	return jwt.ClaimStrings(c.Aud.Values()), nil
}
