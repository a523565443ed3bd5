package routing

import "errors"

// Routing failures surfaced to callers. Handlers map these onto HTTP codes;
// the engine never retries them on its own.
var (
	// ErrDocumentNotFound - the document id does not resolve
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidRecipient - a supplied user id does not resolve to an active user
	ErrInvalidRecipient = errors.New("recipient does not resolve to an active user")

	// ErrNoRecipients - a for_info send carried an empty recipient list
	ErrNoRecipients = errors.New("broadcast requires at least one recipient")

	// ErrNoPrimaryRecipient - a chain send carried no initial recipient
	ErrNoPrimaryRecipient = errors.New("initial recipient is required")

	// ErrNotAuthorizedHolder - the acting user has no active ledger entry
	// (never in the chain, or already responded)
	ErrNotAuthorizedHolder = errors.New("user is not the active holder of this document")

	// ErrChainAlreadyActive - a concurrent mutation won; another entry is active
	ErrChainAlreadyActive = errors.New("another recipient already holds this document")

	// ErrNotOwner - an owner-only transition was attempted by someone else
	ErrNotOwner = errors.New("only the document owner may perform this action")

	// ErrNotRoutable - the document is in a state that accepts no chain mutations
	ErrNotRoutable = errors.New("document is not routable in its current status")

	// ErrConflict - the transaction kept failing on transient database errors
	ErrConflict = errors.New("conflicting concurrent update, refetch and retry")
)

// ValidationError reports a malformed request (missing comments, bad decision,
// forwarding to yourself). Distinct from the sentinel errors above so handlers
// can echo the message back to the form.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(msg string) error {
	return &ValidationError{Msg: msg}
}
