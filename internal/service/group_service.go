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

// InviteMailer sends group invitation notifications. Sending is
// best-effort: a mail failure never fails the invite operation.
type InviteMailer interface {
	SendGroupInvite(to, groupName, inviterName string) error
}

// GroupService implements group lifecycle, membership and the summary
// computation.
type GroupService struct {
	store  storage.Store
	mailer InviteMailer // optional
}

// NewGroupService creates a new GroupService with the given storage
// backend and an optional invite mailer.
func NewGroupService(store storage.Store, mailer InviteMailer) *GroupService {
	return &GroupService{store: store, mailer: mailer}
}

// CreateGroup creates a new group owned by the caller. The owner becomes
// the first member.
func (s *GroupService) CreateGroup(ctx context.Context, ownerID, name, description string) (*models.Group, error) {
	if name == "" {
		return nil, validationError("group name is required")
	}

	if _, err := s.store.GetGroupByName(ctx, name); err == nil {
		return nil, validationError("group name %q already exists", name)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check group name: %w", err)
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	slog.Info("group created", "group_id", group.ID, "owner_id", ownerID)

	return s.store.GetGroup(ctx, group.ID)
}

// GetGroup retrieves a group. Only members may see it.
func (s *GroupService) GetGroup(ctx context.Context, callerID, groupID string) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, ErrNotAuthorized
	}
	return group, nil
}

// ListGroups retrieves all groups the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, callerID string) ([]models.Group, error) {
	groups, err := s.store.ListGroupsByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// InviteUser adds the user registered under email to the group. Any
// member may invite; the invitee must already have an account.
func (s *GroupService) InviteUser(ctx context.Context, callerID, groupID, email string) error {
	if email == "" {
		return validationError("user email is required")
	}

	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(callerID) {
		return ErrNotAuthorized
	}

	invitee, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("user with email %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if group.HasMember(invitee.ID) {
		return validationError("user is already in this group")
	}

	if err := s.store.AddGroupMember(ctx, groupID, invitee.ID); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	slog.Info("user invited to group", "group_id", groupID, "user_id", invitee.ID)

	if s.mailer != nil {
		inviter, err := s.store.GetUserByID(ctx, callerID)
		inviterName := callerID
		if err == nil {
			inviterName = inviter.Name
		}
		if err := s.mailer.SendGroupInvite(invitee.Email, group.Name, inviterName); err != nil {
			slog.Warn("failed to send invite email", "group_id", groupID, "error", err)
		}
	}
	return nil
}

// RemoveUser removes a member from the group. The owner may remove
// anyone but themselves; members may remove themselves (leave).
func (s *GroupService) RemoveUser(ctx context.Context, callerID, groupID, userID string) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != callerID && callerID != userID {
		return ErrNotAuthorized
	}
	if userID == group.OwnerID {
		return validationError("cannot remove the owner from the group")
	}

	if err := s.store.RemoveGroupMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("membership: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	slog.Info("user removed from group", "group_id", groupID, "user_id", userID)
	return nil
}

// DeleteGroup removes the group and everything it owns. Owner only.
func (s *GroupService) DeleteGroup(ctx context.Context, callerID, groupID string) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != callerID {
		return ErrNotAuthorized
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	slog.Info("group deleted", "group_id", groupID)
	return nil
}

// Summary computes the group's balance summary: per-member totals, the
// simplified debt ledger, group metrics and receipt history. It always
// recomputes from the latest committed state; nothing is cached between
// calls.
func (s *GroupService) Summary(ctx context.Context, callerID, groupID string) (*models.GroupSummary, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, ErrNotAuthorized
	}

	receipts, err := s.store.ListReceiptsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}

	summary := calculator.Summarize(group, receipts)
	slog.Debug("group summary computed",
		"group_id", groupID,
		"receipts", len(receipts),
		"members", len(group.Members),
		"balances", len(summary.Balances),
	)
	return summary, nil
}

func (s *GroupService) loadGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}
