package typesystem

import (
	"fmt"
	"strings"
)

// MismatchError reports two types that do not unify.
type MismatchError struct {
	Expected Type
	Actual   Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected `%s`, found `%s`", e.Expected, e.Actual)
}

func NewMismatchError(expected, actual Type) *MismatchError {
	return &MismatchError{Expected: expected, Actual: actual}
}

// JoinError reports a candidate set with no common type. Candidates are
// distinct and sorted, so the error does not depend on join order.
type JoinError struct {
	Candidates []string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("incompatible types: `%s`", strings.Join(e.Candidates, "`, `"))
}
