package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"splitshare/internal/models"
)

// BalanceMatrix is the raw directional pairwise balance matrix.
// matrix[i][j] > 0 means member i owes member j. The aggregation keeps it
// anti-symmetric: matrix[i][j] == -matrix[j][i] for every pair.
type BalanceMatrix map[string]map[string]decimal.Decimal

// Summarize computes the full group summary from the group's members and
// its complete receipt history: Aggregate for the per-member totals and
// raw matrix, Simplify for the debt ledger.
func Summarize(group *models.Group, receipts []models.Receipt) *models.GroupSummary {
	summary, matrix := Aggregate(group, receipts)

	names := make(map[string]string, len(summary.UserSummaries))
	for _, s := range summary.UserSummaries {
		names[s.UserID] = s.Name
	}
	summary.Balances = Simplify(matrix, names)
	return summary
}

// Aggregate computes per-member totals, group metrics and the raw pairwise
// balance matrix from the group's complete receipt history.
//
// Outstanding balances (the matrix, totalOwed/totalPaid/netBalance and
// pendingOwed) are computed over ASSIGNED_SPLIT receipts only. SETTLED
// receipts contribute to settledOwed and the settled expense tally, and
// INITIAL receipts only to the receipt counts. The computation is a pure
// function of its inputs: recomputing over the same receipts yields the
// same summary.
func Aggregate(group *models.Group, receipts []models.Receipt) (*models.GroupSummary, BalanceMatrix) {
	summaries := make(map[string]*models.UserSummary, len(group.Members))
	matrix := make(BalanceMatrix, len(group.Members))
	var order []string

	ensure := func(u models.User) *models.UserSummary {
		if s, ok := summaries[u.ID]; ok {
			return s
		}
		s := &models.UserSummary{
			UserID:      u.ID,
			Name:        u.Name,
			Email:       u.Email,
			TotalOwed:   decimal.Zero,
			TotalPaid:   decimal.Zero,
			NetBalance:  decimal.Zero,
			PendingOwed: decimal.Zero,
			SettledOwed: decimal.Zero,
		}
		summaries[u.ID] = s
		matrix[u.ID] = make(map[string]decimal.Decimal)
		order = append(order, u.ID)
		return s
	}

	for _, member := range group.Members {
		ensure(member)
	}
	// Splits can reference users removed from the group after the receipt
	// was split; they still participate in the balance math.
	for _, r := range receipts {
		ensure(models.User{ID: r.UserID})
		for _, s := range r.Splits {
			ensure(models.User{ID: s.UserID})
		}
	}
	for _, id := range order {
		for _, other := range order {
			if id != other {
				matrix[id][other] = decimal.Zero
			}
		}
	}

	metrics := models.GroupMetrics{
		TotalExpense:   decimal.Zero,
		PendingExpense: decimal.Zero,
		SettledExpense: decimal.Zero,
	}

	for _, r := range receipts {
		metrics.ReceiptCounts.Total++
		summaries[r.UserID].ReceiptsUploaded++

		switch r.Status {
		case models.StatusAssignedSplit:
			metrics.ReceiptCounts.AssignedSplit++
			metrics.TotalExpense = metrics.TotalExpense.Add(r.Total)
			metrics.PendingExpense = metrics.PendingExpense.Add(r.Total)

			for _, s := range r.Splits {
				owed := summaries[s.UserID]
				owed.TotalOwed = owed.TotalOwed.Add(s.Amount)
				owed.PendingOwed = owed.PendingOwed.Add(s.Amount)

				if s.UserID != r.UserID {
					matrix[s.UserID][r.UserID] = matrix[s.UserID][r.UserID].Add(s.Amount)
					matrix[r.UserID][s.UserID] = matrix[r.UserID][s.UserID].Sub(s.Amount)
				}
			}
			payer := summaries[r.UserID]
			payer.TotalPaid = payer.TotalPaid.Add(r.Total)

		case models.StatusSettled:
			metrics.ReceiptCounts.Settled++
			metrics.TotalExpense = metrics.TotalExpense.Add(r.Total)
			metrics.SettledExpense = metrics.SettledExpense.Add(r.Total)

			for _, s := range r.Splits {
				owed := summaries[s.UserID]
				owed.SettledOwed = owed.SettledOwed.Add(s.Amount)
			}

		default:
			metrics.ReceiptCounts.Initial++
		}
	}

	for _, s := range summaries {
		s.NetBalance = s.TotalPaid.Sub(s.TotalOwed)
	}

	userSummaries := make([]models.UserSummary, 0, len(order))
	for _, id := range order {
		userSummaries = append(userSummaries, *summaries[id])
	}

	return &models.GroupSummary{
		GroupID:        group.ID,
		GroupName:      group.Name,
		Metrics:        metrics,
		UserSummaries:  userSummaries,
		ReceiptHistory: receipts,
	}, matrix
}

// Simplify reduces the raw matrix to the display-ready debt list: one
// positive-amount entry per indebted ordered pair. Anti-symmetry of the
// input guarantees each unordered pair appears in at most one direction.
// Members are visited in sorted-id order so output is deterministic.
//
// No transitive netting (collapsing A->B->C into A->C) is performed; the
// output is the direct per-pair net.
func Simplify(matrix BalanceMatrix, names map[string]string) []models.BalanceEntry {
	ids := make([]string, 0, len(matrix))
	for id := range matrix {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var entries []models.BalanceEntry
	for _, from := range ids {
		for _, to := range ids {
			if from == to {
				continue
			}
			amount := matrix[from][to]
			if amount.IsPositive() {
				entries = append(entries, models.BalanceEntry{
					FromUserID:   from,
					FromUserName: names[from],
					ToUserID:     to,
					ToUserName:   names[to],
					Amount:       amount,
				})
			}
		}
	}
	return entries
}
