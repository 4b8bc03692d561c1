package management

import (
	"context"
	"errors"
	"fmt"

	"travel_crm_backend/internal/adapters/storage"
	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/leads/repository"
	"travel_crm_backend/internal/leads/transport"
	"travel_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// ReceiptRepository reads the lead (for scoping) and its active confirmation.
type ReceiptRepository interface {
	GetByID(ctx context.Context, id uuid.UUID, scope repository.Scope) (repository.Lead, error)
	repository.ConfirmationStore
}

// ReceiptService hands out presigned URLs for the payment receipt attached
// to a lead's active confirmation.
type ReceiptService struct {
	repo    ReceiptRepository
	storage storage.ReceiptStorage
}

func NewReceiptService(repo ReceiptRepository, store storage.ReceiptStorage) *ReceiptService {
	return &ReceiptService{repo: repo, storage: store}
}

func (s *ReceiptService) activeConfirmation(ctx context.Context, actor auth.Actor, leadID uuid.UUID) (repository.Confirmation, error) {
	if _, err := s.repo.GetByID(ctx, leadID, scopeOf(actor)); err != nil {
		return repository.Confirmation{}, repository.MapError("leads.GetByID", err)
	}
	confirmation, err := s.repo.GetActiveConfirmation(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Confirmation{}, apperr.NotFound("lead has no active confirmation")
	}
	if err != nil {
		return repository.Confirmation{}, apperr.Store("leads.GetActiveConfirmation", err)
	}
	return confirmation, nil
}

func storageError(err error) error {
	if errors.Is(err, storage.ErrDisabled) {
		return apperr.New(apperr.KindConflict, "receipt storage is not configured").WithCode("storage_disabled")
	}
	return apperr.External("receipt storage failed", err)
}

// UploadURL issues an upload URL and records the key on the confirmation
// before the client uploads.
func (s *ReceiptService) UploadURL(ctx context.Context, actor auth.Actor, leadID uuid.UUID, req transport.ReceiptUploadRequest) (transport.PresignedURLResponse, error) {
	confirmation, err := s.activeConfirmation(ctx, actor, leadID)
	if err != nil {
		return transport.PresignedURLResponse{}, err
	}

	if err := storage.ValidateContentType(req.ContentType); err != nil {
		return transport.PresignedURLResponse{}, validationError("contentType", err.Error())
	}

	folder := fmt.Sprintf("receipts/%s/%s", leadID, confirmation.ID)
	url, err := s.storage.GenerateUploadURL(ctx, folder, req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.PresignedURLResponse{}, storageError(err)
	}

	if err := s.repo.SetReceiptKey(ctx, confirmation.ID, url.FileKey); err != nil {
		return transport.PresignedURLResponse{}, apperr.Store("leads.SetReceiptKey", err)
	}

	return transport.PresignedURLResponse{URL: url.URL, FileKey: url.FileKey, ExpiresAt: url.ExpiresAt}, nil
}

// DownloadURL issues a download URL for the stored receipt.
func (s *ReceiptService) DownloadURL(ctx context.Context, actor auth.Actor, leadID uuid.UUID) (transport.PresignedURLResponse, error) {
	confirmation, err := s.activeConfirmation(ctx, actor, leadID)
	if err != nil {
		return transport.PresignedURLResponse{}, err
	}
	if confirmation.ReceiptFileKey == nil {
		return transport.PresignedURLResponse{}, apperr.NotFound("no receipt uploaded for this confirmation")
	}

	url, err := s.storage.GenerateDownloadURL(ctx, *confirmation.ReceiptFileKey)
	if err != nil {
		return transport.PresignedURLResponse{}, storageError(err)
	}
	return transport.PresignedURLResponse{URL: url.URL, FileKey: url.FileKey, ExpiresAt: url.ExpiresAt}, nil
}
