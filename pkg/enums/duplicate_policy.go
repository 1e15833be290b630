package enums

import "fmt"

// DuplicatePolicy selects what happens when an ingredient is added under a
// name that already exists in the pantry or shopping list.
type DuplicatePolicy string

const (
	DuplicatePolicyReject    DuplicatePolicy = "reject"
	DuplicatePolicyOverwrite DuplicatePolicy = "overwrite"
)

var validDuplicatePolicies = []DuplicatePolicy{
	DuplicatePolicyReject,
	DuplicatePolicyOverwrite,
}

// IsValid reports whether the value matches a supported duplicate policy.
func (p DuplicatePolicy) IsValid() bool {
	for _, candidate := range validDuplicatePolicies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseDuplicatePolicy converts the raw string to DuplicatePolicy.
func ParseDuplicatePolicy(value string) (DuplicatePolicy, error) {
	for _, candidate := range validDuplicatePolicies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid duplicate policy %q", value)
}
