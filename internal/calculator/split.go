// Package calculator implements the pure split and balance math for
// splitshare. It performs no I/O: services feed it receipts and members,
// and it returns computed Split sets and group summaries.
package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"splitshare/internal/models"
)

var (
	hundred = decimal.NewFromInt(100)

	// percentTolerance is how far a percentage sum may deviate from 100.
	percentTolerance = decimal.NewFromFloat(0.01)
)

// PercentageShare assigns one member a percentage of an amount.
type PercentageShare struct {
	UserID     string
	Percentage decimal.Decimal
}

// ItemPercentages assigns per-member percentages for a single item.
type ItemPercentages struct {
	ItemID string
	Shares []PercentageShare
}

// MemberItems assigns whole items to a single member.
type MemberItems struct {
	UserID  string
	ItemIDs []string
}

// AllocateByTotalPercentage computes PERCENTAGE_TOTAL splits: each share is
// a percentage of the receipt total. Shares must sum to 100 (within
// tolerance) and every referenced user must be a group member.
func AllocateByTotalPercentage(receipt *models.Receipt, memberIDs []string, shares []PercentageShare) ([]models.Split, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("at least one split share is required")
	}
	members := toSet(memberIDs)

	sum := decimal.Zero
	seen := make(map[string]bool, len(shares))
	for _, share := range shares {
		if !members[share.UserID] {
			return nil, fmt.Errorf("user %s is not a member of the group", share.UserID)
		}
		if seen[share.UserID] {
			return nil, fmt.Errorf("duplicate split entry for user %s", share.UserID)
		}
		seen[share.UserID] = true
		sum = sum.Add(share.Percentage)
	}
	if err := checkPercentageSum(sum); err != nil {
		return nil, err
	}

	var splits []models.Split
	for _, share := range shares {
		amount := receipt.Total.Mul(share.Percentage).Div(hundred).Round(2)
		if amount.IsZero() {
			continue
		}
		pct := share.Percentage
		splits = append(splits, models.Split{
			ReceiptID:  receipt.ID,
			UserID:     share.UserID,
			Amount:     amount,
			Type:       models.SplitPercentageTotal,
			Percentage: &pct,
		})
	}
	return splits, nil
}

// AllocateByItemPercentage computes PERCENTAGE_PER_ITEM splits: each listed
// item is divided by per-member percentages, and a member's split is the
// sum of their item contributions. Items not listed are simply not split.
func AllocateByItemPercentage(receipt *models.Receipt, memberIDs []string, itemShares []ItemPercentages) ([]models.Split, error) {
	if len(itemShares) == 0 {
		return nil, fmt.Errorf("at least one item split is required")
	}
	members := toSet(memberIDs)
	itemsByID := itemIndex(receipt)

	// Accumulate per-member totals and item contributions, preserving
	// first-appearance order so output is stable for identical input.
	totals := make(map[string]decimal.Decimal)
	contributions := make(map[string][]models.ItemSplit)
	var order []string

	for _, is := range itemShares {
		item, ok := itemsByID[is.ItemID]
		if !ok {
			return nil, fmt.Errorf("item %s not found on receipt", is.ItemID)
		}
		if len(is.Shares) == 0 {
			return nil, fmt.Errorf("item %s has no split shares", is.ItemID)
		}

		sum := decimal.Zero
		seen := make(map[string]bool, len(is.Shares))
		for _, share := range is.Shares {
			if !members[share.UserID] {
				return nil, fmt.Errorf("user %s is not a member of the group", share.UserID)
			}
			if seen[share.UserID] {
				return nil, fmt.Errorf("duplicate share for user %s on item %s", share.UserID, is.ItemID)
			}
			seen[share.UserID] = true
			sum = sum.Add(share.Percentage)
		}
		if err := checkPercentageSum(sum); err != nil {
			return nil, fmt.Errorf("item %s: %w", is.ItemID, err)
		}

		for _, share := range is.Shares {
			amount := item.Total.Mul(share.Percentage).Div(hundred).Round(2)
			if _, known := totals[share.UserID]; !known {
				totals[share.UserID] = decimal.Zero
				order = append(order, share.UserID)
			}
			totals[share.UserID] = totals[share.UserID].Add(amount)
			pct := share.Percentage
			contributions[share.UserID] = append(contributions[share.UserID], models.ItemSplit{
				ItemID:     item.ID,
				Amount:     amount,
				Percentage: &pct,
			})
		}
	}

	var splits []models.Split
	for _, userID := range order {
		if !totals[userID].IsPositive() {
			continue
		}
		splits = append(splits, models.Split{
			ReceiptID:  receipt.ID,
			UserID:     userID,
			Amount:     totals[userID],
			Type:       models.SplitPercentagePerItem,
			ItemSplits: contributions[userID],
		})
	}
	return splits, nil
}

// AllocateByItemAssignment computes ITEM_BASED splits: each item is divided
// equally among the members it was assigned to. Every receipt item must be
// assigned to at least one member; the error for unassigned items names
// their ids. Residual cent drift from the equal division is accepted.
func AllocateByItemAssignment(receipt *models.Receipt, memberIDs []string, assignments []MemberItems) ([]models.Split, error) {
	if len(assignments) == 0 {
		return nil, fmt.Errorf("at least one item assignment is required")
	}
	members := toSet(memberIDs)
	itemsByID := itemIndex(receipt)

	// First pass: validate references and count assignees per item.
	assignees := make(map[string]int, len(receipt.Items))
	for _, a := range assignments {
		if !members[a.UserID] {
			return nil, fmt.Errorf("user %s is not a member of the group", a.UserID)
		}
		seen := make(map[string]bool, len(a.ItemIDs))
		for _, itemID := range a.ItemIDs {
			if _, ok := itemsByID[itemID]; !ok {
				return nil, fmt.Errorf("item %s not found on receipt", itemID)
			}
			if seen[itemID] {
				return nil, fmt.Errorf("item %s assigned twice to user %s", itemID, a.UserID)
			}
			seen[itemID] = true
			assignees[itemID]++
		}
	}

	var unassigned []string
	for _, item := range receipt.Items {
		if assignees[item.ID] == 0 {
			unassigned = append(unassigned, item.ID)
		}
	}
	if len(unassigned) > 0 {
		return nil, fmt.Errorf("items not assigned to any member: %s", strings.Join(unassigned, ", "))
	}

	var splits []models.Split
	for _, a := range assignments {
		total := decimal.Zero
		var itemSplits []models.ItemSplit
		for _, itemID := range a.ItemIDs {
			item := itemsByID[itemID]
			amount := item.Total.Div(decimal.NewFromInt(int64(assignees[itemID]))).Round(2)
			total = total.Add(amount)
			itemSplits = append(itemSplits, models.ItemSplit{
				ItemID: item.ID,
				Amount: amount,
			})
		}
		if !total.IsPositive() {
			continue
		}
		splits = append(splits, models.Split{
			ReceiptID:  receipt.ID,
			UserID:     a.UserID,
			Amount:     total,
			Type:       models.SplitItemBased,
			ItemSplits: itemSplits,
		})
	}
	return splits, nil
}

// checkPercentageSum verifies a percentage sum is 100 within tolerance.
func checkPercentageSum(sum decimal.Decimal) error {
	if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return fmt.Errorf("percentages must sum to 100, got %s", sum.String())
	}
	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func itemIndex(receipt *models.Receipt) map[string]models.Item {
	index := make(map[string]models.Item, len(receipt.Items))
	for _, item := range receipt.Items {
		index[item.ID] = item
	}
	return index
}
