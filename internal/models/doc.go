// Package models defines the core domain models for splitshare.
//
// # Model overview
//
//   - User: registered account, identified by unique email
//   - Group: owned member set that receipts are shared within
//   - Receipt: an uploaded bill with line items and a settlement status
//   - Split: the amount one member owes for one receipt
//   - ItemSplit: the per-item decomposition of a Split
//
// Monetary values use decimal.Decimal throughout and are rounded half-up
// to 2 places at the point a Split or ItemSplit is created. Relationships
// are expressed through ID strings (UUIDs) rather than pointers to avoid
// circular references; the storage layer owns cascade semantics.
package models
