package validator

import (
	"fmt"

	"github.com/c360/flowcore/errors"
)

// Profile selects which rule categories run during validation and how their
// findings are reported.
//
//	minimal      required-field presence only; errors only
//	runtime      + type checks + execution-correctness rules; stylistic warnings suppressed
//	ai-friendly  runtime + explanatory examples and next-step suggestions
//	strict       all rule categories; stylistic issues promoted to errors
type Profile string

const (
	ProfileMinimal    Profile = "minimal"
	ProfileRuntime    Profile = "runtime"
	ProfileAIFriendly Profile = "ai-friendly"
	ProfileStrict     Profile = "strict"
)

// DefaultProfile is used when the caller supplies no profile.
const DefaultProfile = ProfileRuntime

// ParseProfile validates a profile name. An empty name yields DefaultProfile.
func ParseProfile(name string) (Profile, error) {
	switch Profile(name) {
	case "":
		return DefaultProfile, nil
	case ProfileMinimal, ProfileRuntime, ProfileAIFriendly, ProfileStrict:
		return Profile(name), nil
	default:
		return "", errors.WrapStructural(
			fmt.Errorf("unknown validation profile %q", name),
			"Profile", "ParseProfile", "profile lookup")
	}
}

// typeChecks reports whether type and expression checks run under this profile.
func (p Profile) typeChecks() bool {
	return p != ProfileMinimal
}

// executionRules reports whether node-type-specific execution-correctness
// rules run under this profile.
func (p Profile) executionRules() bool {
	return p != ProfileMinimal
}

// stylisticChecks reports whether stylistic rules run under this profile.
func (p Profile) stylisticChecks() bool {
	return p == ProfileStrict
}

// stylisticSeverity returns the severity of stylistic findings. Under strict
// they are promoted to errors.
func (p Profile) stylisticSeverity() Severity {
	if p == ProfileStrict {
		return SeverityError
	}
	return SeverityWarning
}

// warningsReported reports whether warning-level findings appear in the
// report at all. The minimal profile reports errors only.
func (p Profile) warningsReported() bool {
	return p != ProfileMinimal
}

// suggestions reports whether issues carry explanatory examples and next-step
// suggestions.
func (p Profile) suggestions() bool {
	return p == ProfileAIFriendly
}
