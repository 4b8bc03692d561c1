package repository

import (
	"errors"
	"fmt"
	"testing"

	"travel_crm_backend/internal/leads/domain"
	"travel_crm_backend/platform/apperr"
)

func TestMapError(t *testing.T) {
	forbidden := apperr.Forbidden("not your lead")

	cases := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"not found", ErrNotFound, apperr.KindNotFound},
		{"transition", fmt.Errorf("%w: dead is not allowed from no_response", domain.ErrInvalidTransition), apperr.KindInvalidTransition},
		{"duplicate confirmation", ErrAlreadyConfirmed, apperr.KindConflict},
		{"typed passes through", forbidden, apperr.KindForbidden},
		{"driver error", errors.New("conn reset"), apperr.KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError("leads.Test", tc.err)
			if apperr.GetKind(got) != tc.want {
				t.Fatalf("expected kind %v, got %v (%v)", tc.want, apperr.GetKind(got), got)
			}
			if !errors.Is(got, tc.err) && got != tc.err {
				t.Fatalf("expected mapped error to keep its cause")
			}
		})
	}

	if MapError("op", nil) != nil {
		t.Fatal("expected nil for nil")
	}
}
