package condition

import (
	"fmt"
	"strings"
)

// MissingValueKind enumerates the missing-value policies.
type MissingValueKind uint8

const (
	// MissingThrowError fails the evaluation. It is the default.
	MissingThrowError MissingValueKind = iota
	// MissingIgnore drops the condition for the document.
	MissingIgnore
	// MissingUseDefault substitutes a default value.
	MissingUseDefault
)

// String returns the wire name of the kind.
func (k MissingValueKind) String() string {
	switch k {
	case MissingThrowError:
		return "ThrowError"
	case MissingIgnore:
		return "Ignore"
	case MissingUseDefault:
		return "UseDefault"
	default:
		return "Unknown"
	}
}

// ParseMissingValueKind parses a wire name case-insensitively. The empty
// string selects MissingThrowError.
func ParseMissingValueKind(s string) (MissingValueKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "throwerror":
		return MissingThrowError, nil
	case "ignore":
		return MissingIgnore, nil
	case "usedefault":
		return MissingUseDefault, nil
	}
	return MissingThrowError, fmt.Errorf("unknown missing value option %q", s)
}

// MissingValue is the policy applied when a document lacks a field.
//
// The zero value is ThrowError. A MissingValue built with UseDefault always
// carries its substitute; one decoded from the wire form may defer to the
// condition params instead, which Bind resolves.
type MissingValue struct {
	kind     MissingValueKind
	value    string
	hasValue bool
}

// ThrowError fails the whole evaluation with a *MissingFieldError.
func ThrowError() MissingValue { return MissingValue{kind: MissingThrowError} }

// Ignore makes the condition contribute nothing for the document.
func Ignore() MissingValue { return MissingValue{kind: MissingIgnore} }

// UseDefault evaluates the condition as if the field held v.
func UseDefault(v string) MissingValue {
	return MissingValue{kind: MissingUseDefault, value: v, hasValue: true}
}

// MissingValueOf returns the policy of the given kind. A UseDefault policy
// built this way is unbound: its substitute is taken from the condition
// params during validation.
func MissingValueOf(kind MissingValueKind) MissingValue {
	return MissingValue{kind: kind}
}

// Kind returns the policy kind.
func (m MissingValue) Kind() MissingValueKind { return m.kind }

// Default returns the substitute value of a bound UseDefault policy.
func (m MissingValue) Default() (string, bool) {
	return m.value, m.kind == MissingUseDefault && m.hasValue
}

func (m MissingValue) String() string {
	if v, ok := m.Default(); ok {
		return fmt.Sprintf("UseDefault(%q)", v)
	}
	return m.kind.String()
}

// Bind resolves a deferred UseDefault from params, trying key first and
// then "default". Other policies are returned unchanged.
func (m MissingValue) Bind(params map[string]string, key string) (MissingValue, error) {
	if m.kind != MissingUseDefault || m.hasValue {
		return m, nil
	}
	for _, k := range []string{key, "default"} {
		if k == "" {
			continue
		}
		if v, ok := params[k]; ok {
			return UseDefault(v), nil
		}
	}
	return m, fmt.Errorf("UseDefault requires a %q param", firstNonEmpty(key, "default"))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Outcome is the result of resolving a field lookup against a policy.
type Outcome uint8

const (
	// OutcomePresent means a value is available for evaluation.
	OutcomePresent Outcome = iota
	// OutcomeAbsent means the condition is dropped for the document.
	OutcomeAbsent
	// OutcomeFail means evaluation must abort.
	OutcomeFail
)

func (o Outcome) String() string {
	switch o {
	case OutcomePresent:
		return "Present"
	case OutcomeAbsent:
		return "Absent"
	case OutcomeFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// Resolve applies the policy to a field lookup. value and ok are the
// result of looking the field up in a document. An unbound UseDefault
// fails.
func (m MissingValue) Resolve(value string, ok bool) (string, Outcome) {
	if ok {
		return value, OutcomePresent
	}
	switch m.kind {
	case MissingIgnore:
		return "", OutcomeAbsent
	case MissingUseDefault:
		if m.hasValue {
			return m.value, OutcomePresent
		}
	}
	return "", OutcomeFail
}
