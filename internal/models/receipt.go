package models

import "github.com/shopspring/decimal"

// ReceiptStatus tracks a receipt through its settlement lifecycle.
// Transitions are monotonic: INITIAL -> ASSIGNED_SPLIT -> SETTLED.
type ReceiptStatus string

const (
	// StatusInitial is a saved receipt with no splits assigned yet.
	StatusInitial ReceiptStatus = "INITIAL"

	// StatusAssignedSplit is a receipt whose splits have been assigned;
	// it counts toward outstanding balances.
	StatusAssignedSplit ReceiptStatus = "ASSIGNED_SPLIT"

	// StatusSettled is a receipt whose splits have all been paid; it is
	// excluded from outstanding balances and tallied as history.
	StatusSettled ReceiptStatus = "SETTLED"
)

// Receipt represents an uploaded bill belonging to a group.
// The uploading user is the payer of record.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string `json:"receiptId"`

	// GroupID is the group this receipt belongs to.
	GroupID string `json:"groupId"`

	// UserID is the uploading user, who is assumed to have paid the total.
	UserID string `json:"userId"`

	// MerchantName is the merchant as extracted or entered.
	MerchantName string `json:"merchantName"`

	// Date is the purchase date as it appeared on the receipt.
	Date string `json:"date,omitempty"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`

	// Tip is nil when the receipt had no tip line.
	Tip *decimal.Decimal `json:"tip,omitempty"`

	// Total is the final amount. Callers assume total = subtotal + tax + tip,
	// but the system does not enforce it.
	Total decimal.Decimal `json:"total"`

	Status ReceiptStatus `json:"status"`

	// Items are the ordered line items. Edits replace the whole list.
	Items []Item `json:"items"`

	// Splits are the per-member owed amounts, present once the receipt
	// has been split. Replaced wholesale on every (re-)split.
	Splits []Split `json:"splits,omitempty"`

	// CreatedAt is the Unix timestamp when the receipt was saved.
	CreatedAt int64 `json:"createdAt"`
}

// Item represents a single line item on a receipt.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"itemId"`

	// ReceiptID is the parent receipt.
	ReceiptID string `json:"receiptId,omitempty"`

	// Name is the item description (e.g., "Pad Thai").
	Name string `json:"name"`

	// Quantity is the purchased quantity.
	Quantity decimal.Decimal `json:"quantity"`

	// UnitPrice is the price per unit.
	UnitPrice decimal.Decimal `json:"unitPrice"`

	// Total is the stored line total. Nominally quantity x unitPrice,
	// but stored rather than derived and may drift if edited.
	Total decimal.Decimal `json:"total"`
}
