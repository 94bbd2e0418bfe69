package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/pkg/rut"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"
)

// IdentityVerifier confirms the submitter's identity for a document.
type IdentityVerifier interface {
	Verify(ctx context.Context, doc *domain.Document, submitter *domain.User, req VerifyIdentityRequest) (*domain.VerificationData, error)
}

const MethodRUT = "rut_check_digit"

// RUTVerifier checks the supplied RUT locally: well formed, valid check digit,
// and equal to the RUT registered for the submitter when there is one.
type RUTVerifier struct {
	now func() time.Time
}

func NewRUTVerifier() *RUTVerifier {
	return &RUTVerifier{now: time.Now}
}

func (v *RUTVerifier) Verify(_ context.Context, _ *domain.Document, submitter *domain.User, req VerifyIdentityRequest) (*domain.VerificationData, error) {
	if req.RUT == "" {
		return nil, fmt.Errorf("%w: rut is required", xerrors.ErrIdentityCheck)
	}
	normalized, err := rut.Validate(req.RUT)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrIdentityCheck, err)
	}

	if submitter != nil && submitter.RUT != nil && *submitter.RUT != "" {
		registered, err := rut.Normalize(*submitter.RUT)
		if err != nil || registered != normalized {
			return nil, fmt.Errorf("%w: rut does not match the submitter", xerrors.ErrIdentityCheck)
		}
	}

	return &domain.VerificationData{
		Method:     MethodRUT,
		RUT:        normalized,
		VerifiedAt: v.now().UTC(),
	}, nil
}
