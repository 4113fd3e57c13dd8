package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"splitshare/internal/calculator"
	"splitshare/internal/models"
	"splitshare/internal/storage"
)

// SplitService implements split assignment: it validates the caller and
// input, allocates splits through the calculator, and replaces the
// receipt's split set atomically.
type SplitService struct {
	store storage.Store
}

// NewSplitService creates a new SplitService with the given storage
// backend.
func NewSplitService(store storage.Store) *SplitService {
	return &SplitService{store: store}
}

// SplitByPercentage assigns PERCENTAGE_TOTAL splits from per-member
// percentages of the receipt total.
func (s *SplitService) SplitByPercentage(ctx context.Context, callerID, receiptID string, shares []calculator.PercentageShare) (*models.Receipt, error) {
	return s.split(ctx, callerID, receiptID, func(receipt *models.Receipt, memberIDs []string) ([]models.Split, error) {
		return calculator.AllocateByTotalPercentage(receipt, memberIDs, shares)
	})
}

// SplitByItemPercentage assigns PERCENTAGE_PER_ITEM splits from
// per-member percentages of individual items.
func (s *SplitService) SplitByItemPercentage(ctx context.Context, callerID, receiptID string, itemShares []calculator.ItemPercentages) (*models.Receipt, error) {
	return s.split(ctx, callerID, receiptID, func(receipt *models.Receipt, memberIDs []string) ([]models.Split, error) {
		return calculator.AllocateByItemPercentage(receipt, memberIDs, itemShares)
	})
}

// SplitByItemAssignment assigns ITEM_BASED splits from whole-item
// assignments, dividing each item equally among its assignees.
func (s *SplitService) SplitByItemAssignment(ctx context.Context, callerID, receiptID string, assignments []calculator.MemberItems) (*models.Receipt, error) {
	return s.split(ctx, callerID, receiptID, func(receipt *models.Receipt, memberIDs []string) ([]models.Split, error) {
		return calculator.AllocateByItemAssignment(receipt, memberIDs, assignments)
	})
}

// split runs the shared guard-allocate-replace sequence. Guards and
// allocation run before any mutation: a rejected input leaves the
// receipt, its splits and its status untouched. The replacement itself
// is a single storage transaction.
func (s *SplitService) split(ctx context.Context, callerID, receiptID string, allocate func(*models.Receipt, []string) ([]models.Split, error)) (*models.Receipt, error) {
	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	// Only the payer of record may assign splits.
	if receipt.UserID != callerID {
		return nil, ErrNotAuthorized
	}
	if receipt.Status == models.StatusSettled {
		return nil, validationError("receipt is already settled")
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

	memberIDs := make([]string, len(group.Members))
	for i, m := range group.Members {
		memberIDs[i] = m.ID
	}

	splits, err := allocate(receipt, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.store.ReplaceSplits(ctx, receiptID, splits); err != nil {
		return nil, fmt.Errorf("failed to replace splits: %w", err)
	}
	slog.Info("splits assigned",
		"receipt_id", receiptID,
		"user_id", callerID,
		"splits", len(splits),
	)

	return s.store.GetReceipt(ctx, receiptID)
}
