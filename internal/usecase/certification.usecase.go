package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/access"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/events"
	"github.com/Houmeecl/pilotonotary-backend/internal/metrics"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/pkg/id"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxTitleLength = 255

// Dispatcher delivers an in-app notification to a user.
type Dispatcher interface {
	Notify(ctx context.Context, userID, title, message string) (*domain.Notification, error)
}

type ReviewAction string

const (
	ActionCertify ReviewAction = "certify"
	ActionReject  ReviewAction = "reject"
)

type CreateDocumentRequest struct {
	Title          string              `json:"title"`
	Type           domain.DocumentType `json:"type"`
	Content        map[string]any      `json:"content"`
	Price          decimal.Decimal     `json:"price"`
	POSLocationID  *int64              `json:"pos_location_id"`
	CertificadorID *string             `json:"certificador_id"`
	Draft          bool                `json:"draft"`
}

type VerifyIdentityRequest struct {
	DocumentID int64  `json:"document_id"`
	RUT        string `json:"rut"`
}

type ReviewRequest struct {
	DocumentID int64        `json:"-"`
	Action     ReviewAction `json:"action"`
	Reason     string       `json:"reason"`
	Signature  string       `json:"signature"`
}

type ReviewResult struct {
	Document          *domain.Document   `json:"document"`
	Commission        *domain.Commission `json:"commission,omitempty"`
	NotificationError string             `json:"notification_error,omitempty"`
}

// CertificationUsecase drives documents through their lifecycle.
type CertificationUsecase struct {
	store     repository.Store
	notifier  Dispatcher
	publisher events.Publisher
	verifier  IdentityVerifier
	ids       *id.ULIDSource
	logger    *zap.Logger
	now       func() time.Time
}

func NewCertificationUsecase(
	store repository.Store,
	notifier Dispatcher,
	publisher events.Publisher,
	verifier IdentityVerifier,
	ids *id.ULIDSource,
	logger *zap.Logger,
) *CertificationUsecase {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &CertificationUsecase{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		verifier:  verifier,
		ids:       ids,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateDocument stores a new document for the caller with a fresh QR code.
func (uc *CertificationUsecase) CreateDocument(ctx context.Context, p access.Principal, req CreateDocumentRequest) (*domain.Document, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	switch {
	case title == "":
		return nil, xerrors.Invalid("title is required")
	case len(title) > maxTitleLength:
		return nil, xerrors.Invalid("title must be at most %d characters", maxTitleLength)
	case !req.Type.Valid():
		return nil, xerrors.Invalid("unknown document type %q", req.Type)
	}
	if err := domain.ValidatePrice(req.Price); err != nil {
		return nil, err
	}

	if req.POSLocationID != nil {
		pos, err := uc.store.POSLocations().GetByID(ctx, *req.POSLocationID)
		if err != nil {
			return nil, err
		}
		if !pos.IsActive {
			return nil, xerrors.ErrPOSLocationClosed
		}
	}
	if req.CertificadorID != nil {
		if err := uc.checkCertificador(ctx, *req.CertificadorID); err != nil {
			return nil, err
		}
	}

	status := domain.StatusPendingVerification
	if req.Draft {
		status = domain.StatusDraft
	}

	now := uc.now().UTC()
	doc := &domain.Document{
		Title:            title,
		Type:             req.Type,
		Content:          req.Content,
		Status:           status,
		SubmitterID:      p.UserID,
		CertificadorID:   req.CertificadorID,
		POSLocationID:    req.POSLocationID,
		Price:            req.Price.Round(2),
		QRValidationCode: uc.ids.QRCode(now),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.store.Documents().Create(ctx, doc); err != nil {
		return nil, err
	}

	uc.logger.Info("document created",
		zap.Int64("document_id", doc.ID),
		zap.String("submitter_id", doc.SubmitterID),
		zap.String("status", string(doc.Status)))
	metrics.DocumentTransitions.WithLabelValues(string(doc.Status)).Inc()

	if doc.CertificadorID != nil {
		uc.notify(ctx, *doc.CertificadorID, "Nuevo documento asignado",
			fmt.Sprintf("Se le asignó el documento \"%s\" para certificación.", doc.Title))
	}
	uc.publish(ctx, events.DocumentCreated, p.UserID, doc)
	return doc, nil
}

func (uc *CertificationUsecase) checkCertificador(ctx context.Context, userID string) error {
	u, err := uc.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return xerrors.Invalid("certificador %s does not exist", userID)
		}
		return err
	}
	if u.Role != domain.RoleCertificador || !u.IsActive {
		return xerrors.Invalid("user %s is not an active certificador", userID)
	}
	return nil
}

// SubmitDocument moves a draft into identity verification.
func (uc *CertificationUsecase) SubmitDocument(ctx context.Context, p access.Principal, documentID int64) (*domain.Document, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}
	doc, err := uc.store.Documents().GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(p, access.OwnerOrRole(doc.SubmitterID)); err != nil {
		return nil, err
	}
	if doc.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: only drafts can be submitted", xerrors.ErrStateConflict)
	}

	updated, err := uc.store.Documents().Transition(ctx, doc.ID, domain.StatusDraft,
		domain.DocumentTransition{To: domain.StatusPendingVerification})
	if err != nil {
		return nil, err
	}
	metrics.DocumentTransitions.WithLabelValues(string(updated.Status)).Inc()
	return updated, nil
}

// VerifyIdentity runs the identity check and, when it passes, promotes the
// document to pending_certification in a single update.
func (uc *CertificationUsecase) VerifyIdentity(ctx context.Context, p access.Principal, req VerifyIdentityRequest) (*domain.Document, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}
	if req.DocumentID <= 0 {
		return nil, xerrors.Invalid("document_id is required")
	}
	doc, err := uc.store.Documents().GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(p, access.OwnerOrRole(doc.SubmitterID, domain.RoleCertificador)); err != nil {
		return nil, err
	}
	if doc.Status != domain.StatusPendingVerification {
		return nil, fmt.Errorf("%w: document is not awaiting identity verification", xerrors.ErrStateConflict)
	}

	submitter, err := uc.store.Users().GetByID(ctx, doc.SubmitterID)
	if err != nil {
		return nil, err
	}
	vd, err := uc.verifier.Verify(ctx, doc, submitter, req)
	if err != nil {
		uc.logger.Info("identity verification failed",
			zap.Int64("document_id", doc.ID),
			zap.Error(err))
		return nil, err
	}

	verified := true
	updated, err := uc.store.Documents().Transition(ctx, doc.ID, domain.StatusPendingVerification, domain.DocumentTransition{
		To:                 domain.StatusPendingCertification,
		IsIdentityVerified: &verified,
		VerificationData:   vd,
	})
	if err != nil {
		return nil, err
	}

	metrics.DocumentTransitions.WithLabelValues(string(updated.Status)).Inc()
	uc.publish(ctx, events.DocumentVerified, p.UserID, updated)
	return updated, nil
}

// Review certifies or rejects a document awaiting certification. The status
// change and the commission insert commit together; notification and event
// delivery happen after commit and never undo it.
func (uc *CertificationUsecase) Review(ctx context.Context, p access.Principal, req ReviewRequest) (res *ReviewResult, err error) {
	started := uc.now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.ReviewDuration.WithLabelValues(string(req.Action), outcome).Observe(time.Since(started).Seconds())
	}()

	if err := access.Require(p, access.HasRole(domain.RoleCertificador)); err != nil {
		return nil, err
	}

	doc, err := uc.store.Documents().GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(req.Reason)
	switch req.Action {
	case ActionCertify:
	case ActionReject:
		if reason == "" {
			return nil, xerrors.ErrRejectionReason
		}
	default:
		return nil, xerrors.ErrInvalidReview
	}

	if doc.CertificadorID != nil && !doc.AssignedTo(p.UserID) {
		return nil, xerrors.ErrNotAssigned
	}
	if doc.Status != domain.StatusPendingCertification {
		return nil, xerrors.ErrNotPending
	}

	now := uc.now().UTC()
	certificadorID := p.UserID
	t := domain.DocumentTransition{CertificadorID: &certificadorID}
	if req.Action == ActionCertify {
		signature := strings.TrimSpace(req.Signature)
		if signature == "" {
			signature = fmt.Sprintf("CERT_%d_%s", now.UnixMilli(), certificadorID)
		}
		t.To = domain.StatusCertified
		t.DigitalSignature = &signature
		t.CertifiedAt = &now
	} else {
		t.To = domain.StatusRejected
		t.RejectionReason = &reason
	}

	res = &ReviewResult{}
	err = uc.store.WithTx(ctx, func(tx repository.Store) error {
		updated, err := tx.Documents().Transition(ctx, doc.ID, domain.StatusPendingCertification, t)
		if err != nil {
			if errors.Is(err, xerrors.ErrStateConflict) {
				return xerrors.ErrNotPending
			}
			return err
		}
		res.Document = updated
		if t.To != domain.StatusCertified {
			return nil
		}

		var pos *domain.POSLocation
		if updated.POSLocationID != nil {
			pos, err = tx.POSLocations().GetByID(ctx, *updated.POSLocationID)
			if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
				return err
			}
		}
		c, err := domain.NewCommission(updated, pos, certificadorID, now)
		if err != nil {
			return err
		}
		if err := tx.Commissions().Create(ctx, c); err != nil {
			if errors.Is(err, xerrors.ErrConflict) {
				return xerrors.ErrNotPending
			}
			return err
		}
		res.Commission = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("document reviewed",
		zap.Int64("document_id", doc.ID),
		zap.String("certificador_id", certificadorID),
		zap.String("status", string(res.Document.Status)))
	metrics.DocumentTransitions.WithLabelValues(string(res.Document.Status)).Inc()

	if res.Commission != nil {
		metrics.CommissionsCreated.Inc()
		metrics.CommissionAmount.Observe(res.Commission.TotalAmount.InexactFloat64())
		if nerr := uc.notify(ctx, res.Document.SubmitterID, "Documento certificado",
			certifiedMessage(res.Document, res.Commission)); nerr != nil {
			res.NotificationError = nerr.Error()
		}
		uc.publish(ctx, events.DocumentCertified, p.UserID, res.Document)
		uc.publish(ctx, events.CommissionCreated, p.UserID, res.Commission)
	} else {
		if nerr := uc.notify(ctx, res.Document.SubmitterID, "Documento rechazado",
			rejectedMessage(res.Document)); nerr != nil {
			res.NotificationError = nerr.Error()
		}
		uc.publish(ctx, events.DocumentRejected, p.UserID, res.Document)
	}
	return res, nil
}

// CancelDocument withdraws a document that has not reached a final state.
func (uc *CertificationUsecase) CancelDocument(ctx context.Context, p access.Principal, documentID int64) (*domain.Document, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}
	doc, err := uc.store.Documents().GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(p, access.OwnerOrRole(doc.SubmitterID, domain.RoleSuperadmin)); err != nil {
		return nil, err
	}
	if doc.Status.Terminal() {
		return nil, fmt.Errorf("%w: document is already %s", xerrors.ErrStateConflict, doc.Status)
	}

	updated, err := uc.store.Documents().Transition(ctx, doc.ID, doc.Status,
		domain.DocumentTransition{To: domain.StatusCancelled})
	if err != nil {
		return nil, err
	}
	metrics.DocumentTransitions.WithLabelValues(string(updated.Status)).Inc()
	uc.publish(ctx, events.DocumentCancelled, p.UserID, updated)
	return updated, nil
}

func (uc *CertificationUsecase) GetDocument(ctx context.Context, p access.Principal, documentID int64) (*domain.Document, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}
	doc, err := uc.store.Documents().GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(p, access.OwnerOrRole(doc.SubmitterID, domain.RoleCertificador, domain.RoleSuperadmin)); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns what the caller's role is allowed to see.
func (uc *CertificationUsecase) ListDocuments(ctx context.Context, p access.Principal) ([]*domain.Document, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}
	switch p.Role {
	case domain.RoleSuperadmin:
		return uc.store.Documents().ListAll(ctx)
	case domain.RoleCertificador:
		return uc.store.Documents().ListByCertificador(ctx, p.UserID)
	default:
		return uc.store.Documents().ListBySubmitter(ctx, p.UserID)
	}
}

func (uc *CertificationUsecase) ListPending(ctx context.Context, p access.Principal) ([]*domain.Document, error) {
	if err := access.Require(p, access.HasRole(domain.RoleCertificador)); err != nil {
		return nil, err
	}
	return uc.store.Documents().ListPendingFor(ctx, p.UserID)
}

// ValidateQRCode is the public lookup behind printed QR codes.
func (uc *CertificationUsecase) ValidateQRCode(ctx context.Context, code string) (*domain.PublicDocument, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, xerrors.Invalid("validation code is required")
	}
	doc, err := uc.store.Documents().GetByQRCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return doc.Public(), nil
}

// notify logs and returns delivery failures; callers decide whether to surface them.
func (uc *CertificationUsecase) notify(ctx context.Context, userID, title, message string) error {
	if uc.notifier == nil {
		return nil
	}
	if _, err := uc.notifier.Notify(ctx, userID, title, message); err != nil {
		metrics.NotificationFailures.Inc()
		uc.logger.Warn("notification not delivered",
			zap.String("user_id", userID),
			zap.String("title", title),
			zap.Error(err))
		return err
	}
	return nil
}

func (uc *CertificationUsecase) publish(ctx context.Context, eventType, actorID string, payload any) {
	key := ""
	switch v := payload.(type) {
	case *domain.Document:
		key = events.DocumentKey(v.ID)
	case *domain.Commission:
		key = events.DocumentKey(v.DocumentID)
	}
	err := uc.publisher.Publish(ctx, events.Event{
		Type:       eventType,
		Key:        key,
		ActorID:    actorID,
		Payload:    payload,
		OccurredAt: uc.now().UTC(),
	})
	if err != nil {
		metrics.EventPublishErrors.Inc()
		uc.logger.Warn("event not published", zap.String("type", eventType), zap.Error(err))
	}
}
