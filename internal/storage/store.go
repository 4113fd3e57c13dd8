// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"splitshare/internal/models"
)

// ErrNotFound is returned (wrapped) when a referenced entity does not
// exist. Callers distinguish it from validation and authorization errors
// with errors.Is.
var ErrNotFound = errors.New("not found")

// Store defines the interface for splitshare storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateUser persists a new user. The user.ID field is populated by
	// the store if unset. Fails if the email is already registered.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by id.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateGroup persists a new group and enrolls the owner as its first
	// member in the same transaction.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its member list.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// GetGroupByName retrieves a group by its unique name.
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)

	// ListGroupsByUser retrieves all groups the user is a member of.
	ListGroupsByUser(ctx context.Context, userID string) ([]models.Group, error)

	// AddGroupMember enrolls a user in a group.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// RemoveGroupMember removes a user from a group.
	RemoveGroupMember(ctx context.Context, groupID, userID string) error

	// DeleteGroup removes a group and, by cascade, its membership and
	// receipts.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateReceipt persists a new receipt with its items.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error

	// GetReceipt retrieves a receipt with its items, splits and item
	// splits.
	GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error)

	// ListReceiptsByGroup retrieves a group's receipts, newest first,
	// each fully loaded as by GetReceipt.
	ListReceiptsByGroup(ctx context.Context, groupID string) ([]models.Receipt, error)

	// DeleteReceipt removes a receipt and, by cascade, its items and
	// splits.
	DeleteReceipt(ctx context.Context, receiptID string) error

	// ReplaceSplits atomically replaces a receipt's splits: all existing
	// Split and ItemSplit rows are deleted, the new set is inserted, and
	// the receipt status advances to ASSIGNED_SPLIT — in one transaction.
	// A concurrent reader never observes a partial replacement. Two
	// concurrent replacements of the same receipt are last-writer-wins.
	ReplaceSplits(ctx context.Context, receiptID string, splits []models.Split) error

	// SettleReceipt atomically marks every split of the receipt paid and
	// advances the status to SETTLED.
	SettleReceipt(ctx context.Context, receiptID string) error

	// Close releases any resources held by the store.
	Close() error
}
