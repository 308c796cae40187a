package types

import (
	"errors"
	"fmt"
)

// Reason classifies why an upstream could not provide a value.
type Reason string

const (
	ReasonNetwork   Reason = "network"
	ReasonStatus    Reason = "status"
	ReasonMalformed Reason = "malformed"
	ReasonEmpty     Reason = "empty"
)

// Unavailable is returned by every component that talks to an external provider.
// Boundary wrappers turn it into an empty slice, nil or a fallback string.
type Unavailable struct {
	Source string
	Reason Reason
	Err    error
}

func (u *Unavailable) Error() string {
	if u.Err == nil {
		return fmt.Sprintf("%s unavailable (%s)", u.Source, u.Reason)
	}
	return fmt.Sprintf("%s unavailable (%s): %v", u.Source, u.Reason, u.Err)
}

func (u *Unavailable) Unwrap() error {
	return u.Err
}

func NewUnavailable(source string, reason Reason, err error) *Unavailable {
	return &Unavailable{Source: source, Reason: reason, Err: err}
}

// ReasonOf extracts the reason code from err, defaulting to ReasonNetwork.
func ReasonOf(err error) Reason {
	var u *Unavailable
	if errors.As(err, &u) {
		return u.Reason
	}
	return ReasonNetwork
}
