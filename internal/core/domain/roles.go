package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	RoleAdmin  = "ROLE_ADMIN"
	RoleSeller = "ROLE_SELLER"
	RoleUser   = "ROLE_USER"

	rolePrefix = "ROLE_"
)

// CanonicalRole upper-cases a role label and adds the ROLE_ prefix.
func CanonicalRole(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	if !strings.HasPrefix(name, rolePrefix) {
		name = rolePrefix + name
	}
	return name
}

// ShortRole strips the ROLE_ prefix and lower-cases the label, which is the
// form the sign-up endpoint expects ("admin", "seller", "user").
func ShortRole(name string) string {
	return strings.ToLower(strings.TrimPrefix(CanonicalRole(name), rolePrefix))
}

// Roles is a canonical set of role names.
//
// The backend serializes roles either as bare strings or as small records
// ({"id":1,"name":"ROLE_ADMIN"}); UnmarshalJSON accepts both and normalizes
// once so predicates only ever compare strings.
type Roles []string

// NewRoles canonicalizes and de-duplicates the given labels.
func NewRoles(names ...string) Roles {
	out := make(Roles, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		c := CanonicalRole(n)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Has reports membership of the canonicalized name.
func (r Roles) Has(name string) bool {
	c := CanonicalRole(name)
	for _, role := range r {
		if role == c {
			return true
		}
	}
	return false
}

// roleRecord is a structured role entry. Backends have named the field
// name, roleName and authority.
type roleRecord struct {
	Name      string `json:"name"`
	RoleName  string `json:"roleName"`
	Authority string `json:"authority"`
}

func (r roleRecord) name() string {
	for _, n := range []string{r.Name, r.RoleName, r.Authority} {
		if strings.TrimSpace(n) != "" {
			return n
		}
	}
	return ""
}

func (r *Roles) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = nil
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		// A single role is occasionally sent without the surrounding array.
		entries = []json.RawMessage{data}
	}

	names := make([]string, 0, len(entries))
	for _, raw := range entries {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			names = append(names, s)
			continue
		}
		var rec roleRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("roles: unsupported entry %s", raw)
		}
		name := rec.name()
		if name == "" {
			return fmt.Errorf("roles: entry %s has no role name", raw)
		}
		names = append(names, name)
	}

	*r = NewRoles(names...)
	return nil
}

// FlexID decodes an identifier sent either as a JSON string or a number.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = FlexID(n.String())
	return nil
}
