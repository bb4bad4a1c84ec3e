package indexer

import (
	"errors"
)

// Domain errors: the request is well-formed but the data cannot support it.
var (
	ErrInsufficientCorpus    = errors.New("insufficient corpus: weighting requires at least 2 documents")
	ErrEmptyVocabulary       = errors.New("empty vocabulary: no terms registered")
	ErrFactorization         = errors.New("singular value decomposition failed to converge")
	ErrSingularFactorization = errors.New("singular factorization: a fitted singular value is zero")
	ErrSnapshotInvalid       = errors.New("invalid model snapshot")
)

// Usage errors: the caller asked for something the indexer's current state
// does not allow.
var (
	ErrNotFitted          = errors.New("corpus has not been fit yet")
	ErrAlreadyFitted      = errors.New("corpus has already been fit and is read-only")
	ErrProjectionMismatch = errors.New("latent projection does not match the one the model was fit with")
)

var (
	domainErrors = []error{ErrInsufficientCorpus, ErrEmptyVocabulary, ErrFactorization, ErrSingularFactorization, ErrSnapshotInvalid}
	usageErrors  = []error{ErrNotFitted, ErrAlreadyFitted, ErrProjectionMismatch}
)

// IsDomainError returns true when err is, or wraps, one of the domain errors.
func IsDomainError(err error) bool {
	return isAny(err, domainErrors)
}

// IsUsageError returns true when err is, or wraps, one of the usage errors.
func IsUsageError(err error) bool {
	return isAny(err, usageErrors)
}

func isAny(err error, targets []error) bool {
	if err == nil {
		return false
	}
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
