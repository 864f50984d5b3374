package identity

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ParseUser decodes and validates a user payload from the server.
// Role strings outside the closed enumeration are rejected; grants with an
// empty code are dropped and duplicate codes keep their first occurrence.
func ParseUser(data json.RawMessage) (User, error) {
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, fmt.Errorf("identity: decode user: %w", err)
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return User{}, err
	}
	if err := validate.Struct(u); err != nil {
		return User{}, fmt.Errorf("identity: validate user: %w", err)
	}
	u.Permissions = NormalizeGrants(u.Permissions)
	return u, nil
}

// NormalizeGrants enforces code uniqueness over a grant set, preserving the
// first grant seen for each code and dropping grants without a code.
func NormalizeGrants(grants []PermissionGrant) []PermissionGrant {
	if len(grants) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(grants))
	out := make([]PermissionGrant, 0, len(grants))
	for _, g := range grants {
		if g.Code == "" {
			continue
		}
		if _, ok := seen[g.Code]; ok {
			continue
		}
		seen[g.Code] = struct{}{}
		out = append(out, g)
	}
	return out
}
