package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz does not exist or is inactive.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUserNotFound indicates the user has no account record.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidSubmission is returned for malformed submissions (e.g. an
	// empty answer list or a negative time).
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrQuizUnscorable indicates catalog inconsistency: the quiz has no
	// question with a correct option, so no score can be computed.
	ErrQuizUnscorable = errors.New("quiz has no scorable questions")
	// ErrVersionConflict signals a concurrent update to the same user's
	// aggregate; the caller re-runs the aggregate-and-commit span.
	ErrVersionConflict = errors.New("aggregate version conflict")
	// ErrConcurrencyExhausted is surfaced after the bounded retry budget for
	// version conflicts is spent. Retriable by the client.
	ErrConcurrencyExhausted = errors.New("too many concurrent submissions, retry")
	// ErrUnauthorized is returned when the identity collaborator rejects a
	// credential.
	ErrUnauthorized = errors.New("unauthorized")
)
