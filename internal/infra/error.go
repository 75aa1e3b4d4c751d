package infra

import (
	"errors"

	"admin-console/internal/pkg/errs"
)

type InfraErrorKind string

// Infrastructure-specific error kinds
const (
	KindNotFound        InfraErrorKind = "NOT_FOUND"
	KindDBFailure       InfraErrorKind = "DB_FAILURE"
	KindUpstreamFailure InfraErrorKind = "UPSTREAM_FAILURE"
	KindUnauthorized    InfraErrorKind = "UNAUTHORIZED"
	KindConfig          InfraErrorKind = "CONFIG"
)

type InfraError struct {
	Kind InfraErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e InfraError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e InfraError) Unwrap() error {
	return e.err
}

// WrapInfraErr tags a low-level failure with a kind. Kind defaults to
// UPSTREAM_FAILURE when omitted.
func WrapInfraErr(msg string, err error, kinds ...InfraErrorKind) error {
	kind := KindUpstreamFailure
	if len(kinds) > 0 {
		kind = kinds[0]
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return InfraError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind InfraErrorKind) bool {
	var e InfraError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
