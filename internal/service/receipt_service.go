package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"splitshare/internal/models"
	"splitshare/internal/storage"
)

// ReceiptService implements the receipt lifecycle: save, fetch, delete
// and settlement.
type ReceiptService struct {
	store storage.Store
}

// NewReceiptService creates a new ReceiptService with the given storage
// backend.
func NewReceiptService(store storage.Store) *ReceiptService {
	return &ReceiptService{store: store}
}

// SaveReceipt persists a new receipt with its items on behalf of the
// caller, who becomes the payer of record. The receipt starts in INITIAL.
func (s *ReceiptService) SaveReceipt(ctx context.Context, callerID string, receipt *models.Receipt) (*models.Receipt, error) {
	if receipt.GroupID == "" {
		return nil, validationError("group id is required")
	}
	if receipt.MerchantName == "" {
		return nil, validationError("merchant name is required")
	}
	if !receipt.Total.IsPositive() {
		return nil, validationError("total must be greater than 0")
	}

	group, err := s.store.GetGroup(ctx, receipt.GroupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("group %s: %w", receipt.GroupID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if !group.HasMember(callerID) {
		return nil, ErrNotAuthorized
	}

	receipt.UserID = callerID
	receipt.Status = models.StatusInitial
	receipt.Splits = nil

	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("failed to create receipt: %w", err)
	}
	slog.Info("receipt saved",
		"receipt_id", receipt.ID,
		"group_id", receipt.GroupID,
		"user_id", callerID,
		"items", len(receipt.Items),
	)
	return receipt, nil
}

// GetReceipt retrieves a receipt. Only members of its group may see it.
func (s *ReceiptService) GetReceipt(ctx context.Context, callerID, receiptID string) (*models.Receipt, error) {
	receipt, group, err := s.loadReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, ErrNotAuthorized
	}
	return receipt, nil
}

// ListReceipts retrieves a group's receipts, newest first. Members only.
func (s *ReceiptService) ListReceipts(ctx context.Context, callerID, groupID string) ([]models.Receipt, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if !group.HasMember(callerID) {
		return nil, ErrNotAuthorized
	}

	receipts, err := s.store.ListReceiptsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	return receipts, nil
}

// DeleteReceipt removes a receipt. Only the uploader may delete it.
func (s *ReceiptService) DeleteReceipt(ctx context.Context, callerID, receiptID string) error {
	receipt, _, err := s.loadReceipt(ctx, receiptID)
	if err != nil {
		return err
	}
	if receipt.UserID != callerID {
		return ErrNotAuthorized
	}

	if err := s.store.DeleteReceipt(ctx, receiptID); err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	slog.Info("receipt deleted", "receipt_id", receiptID, "user_id", callerID)
	return nil
}

// SettleReceipt marks a receipt as settled: every split becomes paid and
// the receipt leaves the outstanding-balance computation. Only the
// uploader may settle, and only from ASSIGNED_SPLIT.
func (s *ReceiptService) SettleReceipt(ctx context.Context, callerID, receiptID string) (*models.Receipt, error) {
	receipt, _, err := s.loadReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt.UserID != callerID {
		return nil, ErrNotAuthorized
	}
	if receipt.Status != models.StatusAssignedSplit {
		return nil, validationError("receipt must be in ASSIGNED_SPLIT to settle, is %s", receipt.Status)
	}

	if err := s.store.SettleReceipt(ctx, receiptID); err != nil {
		return nil, fmt.Errorf("failed to settle receipt: %w", err)
	}
	slog.Info("receipt settled", "receipt_id", receiptID, "user_id", callerID)

	return s.store.GetReceipt(ctx, receiptID)
}

// loadReceipt fetches a receipt and its owning group, translating
// missing entities into the not-found class.
func (s *ReceiptService) loadReceipt(ctx context.Context, receiptID string) (*models.Receipt, *models.Group, error) {
	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("receipt %s: %w", receiptID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	group, err := s.store.GetGroup(ctx, receipt.GroupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("group %s: %w", receipt.GroupID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get group: %w", err)
	}
	return receipt, group, nil
}
