package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthorizationDenied means the caller lacks the role or ownership
	// required for the operation.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrNdaRequired means contact exchange was attempted before the NDA
	// was signed.
	ErrNdaRequired = errors.New("nda must be signed first")
	// ErrNdaAlreadySigned means the NDA signature is already recorded.
	ErrNdaAlreadySigned = errors.New("nda already signed")
	// ErrAlreadyRequested means a contact-exchange request is already pending.
	ErrAlreadyRequested = errors.New("contact exchange already requested")
	// ErrAlreadyApproved means the contact exchange was already approved.
	ErrAlreadyApproved = errors.New("contact exchange already approved")
	// ErrNoRequestPending means approval was attempted without a request.
	ErrNoRequestPending = errors.New("no contact exchange request pending")
	// ErrTerminalState means a transition was attempted on a closed submission.
	ErrTerminalState = errors.New("submission is in a terminal state")
	// ErrDeleteRequestPending means a delete request was filed twice.
	ErrDeleteRequestPending = errors.New("delete request already pending")
	// ErrNoDeleteRequest means delete approval without a pending request.
	ErrNoDeleteRequest = errors.New("no delete request pending")
	// ErrInvalidBuyers means one or more target buyers do not exist or are
	// not active buyer accounts.
	ErrInvalidBuyers = errors.New("one or more target buyers are invalid")
)

// InvalidStateTransitionError reports an attempted transition that is not in
// the lifecycle table, together with the actions legal from the current state.
type InvalidStateTransitionError struct {
	Current string
	Action  string
	Allowed []string
}

func (e *InvalidStateTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("cannot %s from status %q: no actions permitted", e.Action, e.Current)
	}
	return fmt.Sprintf("cannot %s from status %q: legal actions are %s",
		e.Action, e.Current, strings.Join(e.Allowed, ", "))
}

// FieldError is one field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full list of field failures for one request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
