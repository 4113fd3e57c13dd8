package models

import "github.com/shopspring/decimal"

// SplitType identifies the strategy that produced a Split.
type SplitType string

const (
	// SplitPercentageTotal divides the receipt total by per-member
	// percentages.
	SplitPercentageTotal SplitType = "PERCENTAGE_TOTAL"

	// SplitPercentagePerItem divides individual item totals by per-member
	// percentages.
	SplitPercentagePerItem SplitType = "PERCENTAGE_PER_ITEM"

	// SplitItemBased assigns whole items to members, dividing each item
	// equally among its assignees.
	SplitItemBased SplitType = "ITEM_BASED"
)

// Split is the amount one group member owes for one receipt.
// There is at most one Split per (receipt, member) pair, and splits are
// deleted and recreated as a batch whenever a receipt is (re-)split.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string `json:"splitId"`

	// ReceiptID is the parent receipt.
	ReceiptID string `json:"receiptId,omitempty"`

	// UserID is the member who owes Amount for this receipt.
	UserID string `json:"userId"`

	// Amount is what the member owes, rounded to 2 places.
	Amount decimal.Decimal `json:"amount"`

	Type SplitType `json:"splitType"`

	// Percentage is set for PERCENTAGE_TOTAL splits.
	Percentage *decimal.Decimal `json:"percentage,omitempty"`

	// IsPaid flips to true when the receipt is settled.
	IsPaid bool `json:"isPaid"`

	// ItemSplits decompose Amount per item. Present only for
	// PERCENTAGE_PER_ITEM and ITEM_BASED splits.
	ItemSplits []ItemSplit `json:"itemSplits,omitempty"`
}

// ItemSplit is one item's contribution to a member's Split.
type ItemSplit struct {
	// ID is the unique identifier for the item split (UUID format).
	ID string `json:"itemSplitId"`

	// SplitID is the parent split.
	SplitID string `json:"splitId,omitempty"`

	// ItemID references the receipt item this contribution came from.
	ItemID string `json:"itemId"`

	// Amount is this item's share of the parent split, rounded to 2 places.
	Amount decimal.Decimal `json:"amount"`

	// Percentage is set for PERCENTAGE_PER_ITEM splits.
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}
