package entity

import (
	"fmt"
	"strings"
)

// Policy is the execution permission tier attached to a request.
type Policy string

const (
	// PolicySafe permits read-only inspection only.
	PolicySafe Policy = "safe"

	// PolicyRestricted permits user-scoped changes.
	PolicyRestricted Policy = "restricted"

	// PolicyStandard is the default tier for routine automation.
	PolicyStandard Policy = "standard"

	// PolicyElevated permits administrative operations.
	PolicyElevated Policy = "elevated"
)

// ParsePolicy normalizes a user-supplied policy name. Empty means standard.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PolicyStandard, nil
	case "safe":
		return PolicySafe, nil
	case "restricted":
		return PolicyRestricted, nil
	case "standard":
		return PolicyStandard, nil
	case "elevated":
		return PolicyElevated, nil
	default:
		return "", fmt.Errorf("unknown policy %q", s)
	}
}

// Rank orders policies from most to least restrictive.
func (p Policy) Rank() int {
	switch p {
	case PolicySafe:
		return 0
	case PolicyRestricted:
		return 1
	case PolicyStandard:
		return 2
	case PolicyElevated:
		return 3
	default:
		return 2
	}
}

// Permits reports whether this policy grants at least the given tier.
func (p Policy) Permits(required Policy) bool {
	return p.Rank() >= required.Rank()
}
