package domain

import (
	"errors"
	"fmt"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
)

// Ledger error taxonomy. Each wraps an apperrors category so transports can map it.
var (
	ErrUnbalancedEntry       = fmt.Errorf("%w: journal entry debits and credits do not balance", apperrors.ErrValidation)
	ErrInvalidLine           = fmt.Errorf("%w: invalid journal line", apperrors.ErrValidation)
	ErrPeriodClosed          = fmt.Errorf("%w: date falls inside a closed period", apperrors.ErrConflict)
	ErrUnknownAccount        = fmt.Errorf("%w: account does not exist for this company", apperrors.ErrNotFound)
	ErrDuplicateAccountCode  = fmt.Errorf("%w: account code already exists for this company", apperrors.ErrDuplicate)
	ErrAlreadyDecided        = fmt.Errorf("%w: approval request already decided", apperrors.ErrConflict)
	ErrSelfApprovalForbidden = fmt.Errorf("%w: requester may not decide their own request", apperrors.ErrForbidden)
	ErrDuplicateRequest      = fmt.Errorf("%w: an open approval request already exists", apperrors.ErrDuplicate)
	ErrApprovalRequired      = fmt.Errorf("%w: approval required before posting", apperrors.ErrForbidden)
	ErrAlreadyReversed       = fmt.Errorf("%w: journal entry already reversed", apperrors.ErrConflict)
	ErrDuplicatePosting      = fmt.Errorf("%w: source document already posted", apperrors.ErrDuplicate)
	ErrStorageFailure        = fmt.Errorf("%w: storage failure", apperrors.ErrInternal)
)

// StorageFailure wraps a transport or transaction error so callers can match ErrStorageFailure
// while the cause stays inspectable.
func StorageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if isLedgerError(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}

func isLedgerError(err error) bool {
	for _, target := range []error{
		ErrUnbalancedEntry, ErrInvalidLine, ErrPeriodClosed, ErrUnknownAccount,
		ErrDuplicateAccountCode, ErrAlreadyDecided, ErrSelfApprovalForbidden,
		ErrDuplicateRequest, ErrApprovalRequired, ErrAlreadyReversed, ErrDuplicatePosting, ErrStorageFailure,
		apperrors.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
