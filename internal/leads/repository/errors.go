package repository

import (
	"errors"

	"travel_crm_backend/internal/leads/domain"
	"travel_crm_backend/platform/apperr"
)

// MapError translates store sentinels into typed application errors. Errors
// that already carry a Kind (for example from a Decide closure) pass through.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, "lead not found", err)
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperr.Wrap(apperr.KindInvalidTransition, err.Error(), err).WithCode("invalid_transition")
	case errors.Is(err, ErrAlreadyConfirmed):
		return apperr.Wrap(apperr.KindConflict, err.Error(), err).WithCode("already_confirmed")
	}
	return apperr.Store(op, err)
}
