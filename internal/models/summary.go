package models

import "github.com/shopspring/decimal"

// UserSummary holds one member's aggregated position within a group.
//
// TotalOwed, TotalPaid, PendingOwed and NetBalance are computed over
// receipts with status ASSIGNED_SPLIT; SettledOwed is the historical tally
// over SETTLED receipts. Positive NetBalance means the group collectively
// owes this member money.
type UserSummary struct {
	UserID           string          `json:"userId"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	TotalOwed        decimal.Decimal `json:"totalOwed"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	NetBalance       decimal.Decimal `json:"netBalance"`
	PendingOwed      decimal.Decimal `json:"pendingOwed"`
	SettledOwed      decimal.Decimal `json:"settledOwed"`
	ReceiptsUploaded int             `json:"receiptsUploaded"`
}

// BalanceEntry is a single directional, nonzero debt between two members,
// derived from the raw pairwise matrix.
type BalanceEntry struct {
	FromUserID   string          `json:"fromUserId"`
	FromUserName string          `json:"fromUserName"`
	ToUserID     string          `json:"toUserId"`
	ToUserName   string          `json:"toUserName"`
	Amount       decimal.Decimal `json:"amount"`
}

// ReceiptCounts breaks down a group's receipts by status.
type ReceiptCounts struct {
	Total         int `json:"total"`
	Initial       int `json:"initial"`
	AssignedSplit int `json:"assignedSplit"`
	Settled       int `json:"settled"`
}

// GroupMetrics holds group-wide expense totals.
// TotalExpense covers ASSIGNED_SPLIT and SETTLED receipts; INITIAL
// receipts have no splits and contribute only to the receipt count.
type GroupMetrics struct {
	TotalExpense   decimal.Decimal `json:"totalExpense"`
	PendingExpense decimal.Decimal `json:"pendingExpense"`
	SettledExpense decimal.Decimal `json:"settledExpense"`
	ReceiptCounts  ReceiptCounts   `json:"receiptCounts"`
}

// GroupSummary is the full summary payload for a group: metrics,
// per-member positions, the simplified debt ledger, and receipt history.
type GroupSummary struct {
	GroupID        string         `json:"groupId"`
	GroupName      string         `json:"groupName"`
	Metrics        GroupMetrics   `json:"metrics"`
	UserSummaries  []UserSummary  `json:"userSummaries"`
	Balances       []BalanceEntry `json:"balances"`
	ReceiptHistory []Receipt      `json:"receiptHistory"`
}
