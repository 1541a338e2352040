package session

import "fmt"

// Type classifies the intent of a conversation session.
type Type string

const (
	TypeStandard    Type = "standard"
	TypeInitial     Type = "initial"
	TypeFollowup    Type = "followup"
	TypeAssessment  Type = "assessment"
	TypeCrisis      Type = "crisis"
	TypeTermination Type = "termination"
)

// ParseType converts a string into a known session Type. The empty string
// resolves to TypeStandard.
func ParseType(s string) (Type, error) {
	if s == "" {
		return TypeStandard, nil
	}
	switch t := Type(s); t {
	case TypeStandard, TypeInitial, TypeFollowup, TypeAssessment, TypeCrisis, TypeTermination:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown session type %q", ErrValidation, s)
}
