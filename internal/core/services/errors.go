package services

import (
	"errors"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, apperrors.ErrDuplicate)
}

func isValidation(err error) bool {
	return errors.Is(err, apperrors.ErrValidation)
}

// isRejection reports whether a save failed on a ledger rule rather than on storage.
func isRejection(err error) bool {
	for _, target := range []error{domain.ErrDuplicatePosting, domain.ErrAlreadyReversed, domain.ErrPeriodClosed, domain.ErrUnknownAccount} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
