package domain

import "fmt"

// Role is the trading capability granted to a participant at registration.
type Role uint8

const (
	// RoleUnset is the role of an identity that has never registered.
	RoleUnset Role = iota
	// RoleProsumer may list and sell energy.
	RoleProsumer
	// RoleConsumer may buy energy.
	RoleConsumer
)

var roleNames = map[Role]string{
	RoleUnset:    "unset",
	RoleProsumer: "prosumer",
	RoleConsumer: "consumer",
}

// IsValid reports whether r is one of the declared roles.
func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

// IsRegistered reports whether r was granted by a registration.
func (r Role) IsRegistered() bool {
	return r == RoleProsumer || r == RoleConsumer
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// ParseRole parses the textual form produced by String.
func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RoleUnset, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
