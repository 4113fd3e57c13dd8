package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"splitshare/internal/calculator"
)

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if env.group.OwnerID != env.alice.ID {
		t.Errorf("owner = %s, want %s", env.group.OwnerID, env.alice.ID)
	}
	if len(env.group.Members) != 3 {
		t.Errorf("got %d members, want 3", len(env.group.Members))
	}

	if _, err := env.groups.CreateGroup(ctx, env.bob.ID, "Dinner Club", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate name error = %v, want ErrValidation", err)
	}
	if _, err := env.groups.CreateGroup(ctx, env.bob.ID, "", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty name error = %v, want ErrValidation", err)
	}
}

func TestGroupMembershipGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	outsider := env.createUser(t, "Dave", "dave@example.com")

	if _, err := env.groups.GetGroup(ctx, outsider.ID, env.group.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("outsider GetGroup error = %v, want ErrNotAuthorized", err)
	}
	if err := env.groups.InviteUser(ctx, outsider.ID, env.group.ID, "dave@example.com"); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("outsider invite error = %v, want ErrNotAuthorized", err)
	}
	if err := env.groups.InviteUser(ctx, env.alice.ID, env.group.ID, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown invitee error = %v, want ErrNotFound", err)
	}
	if err := env.groups.InviteUser(ctx, env.alice.ID, env.group.ID, "bob@example.com"); !errors.Is(err, ErrValidation) {
		t.Errorf("double invite error = %v, want ErrValidation", err)
	}
}

func TestRemoveUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A member cannot remove someone else.
	if err := env.groups.RemoveUser(ctx, env.bob.ID, env.group.ID, env.carol.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("member removing peer error = %v, want ErrNotAuthorized", err)
	}
	// The owner can never be removed, not even by themselves.
	if err := env.groups.RemoveUser(ctx, env.alice.ID, env.group.ID, env.alice.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("removing owner error = %v, want ErrValidation", err)
	}

	// Members may leave on their own.
	if err := env.groups.RemoveUser(ctx, env.carol.ID, env.group.ID, env.carol.ID); err != nil {
		t.Fatalf("self-leave failed: %v", err)
	}
	// The owner may remove remaining members.
	if err := env.groups.RemoveUser(ctx, env.alice.ID, env.group.ID, env.bob.ID); err != nil {
		t.Fatalf("owner removal failed: %v", err)
	}

	group, err := env.groups.GetGroup(ctx, env.alice.ID, env.group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(group.Members) != 1 || group.Members[0].ID != env.alice.ID {
		t.Errorf("members after removals = %v, want only the owner", group.Members)
	}
}

func TestDeleteGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.groups.DeleteGroup(ctx, env.bob.ID, env.group.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("non-owner delete error = %v, want ErrNotAuthorized", err)
	}
	if err := env.groups.DeleteGroup(ctx, env.alice.ID, env.group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := env.groups.GetGroup(ctx, env.alice.ID, env.group.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetGroup after delete error = %v, want ErrNotFound", err)
	}
}

// TestGroupSummary runs the full pipeline over the store: upload, split,
// settle, then check the aggregated balances and metrics.
func TestGroupSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Alice pays 100.00, split 50/30/20 across the three members.
	outstanding := env.saveReceipt(t)
	if _, err := env.splits.SplitByPercentage(ctx, env.alice.ID, outstanding.ID, []calculator.PercentageShare{
		{UserID: env.alice.ID, Percentage: dec("50")},
		{UserID: env.bob.ID, Percentage: dec("30")},
		{UserID: env.carol.ID, Percentage: dec("20")},
	}); err != nil {
		t.Fatalf("split failed: %v", err)
	}

	// A second receipt is split and settled; it must not appear in the
	// outstanding balances.
	settled := env.saveReceipt(t)
	if _, err := env.splits.SplitByPercentage(ctx, env.alice.ID, settled.ID, []calculator.PercentageShare{
		{UserID: env.bob.ID, Percentage: dec("100")},
	}); err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if _, err := env.receipts.SettleReceipt(ctx, env.alice.ID, settled.ID); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	outsider := env.createUser(t, "Dave", "dave@example.com")
	if _, err := env.groups.Summary(ctx, outsider.ID, env.group.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("outsider summary error = %v, want ErrNotAuthorized", err)
	}

	summary, err := env.groups.Summary(ctx, env.bob.ID, env.group.ID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	byUser := map[string]decimal.Decimal{}
	for _, entry := range summary.Balances {
		if entry.ToUserID != env.alice.ID {
			t.Errorf("balance owed to %s, want all owed to alice", entry.ToUserID)
		}
		byUser[entry.FromUserID] = entry.Amount
	}
	if len(byUser) != 2 {
		t.Fatalf("got %d balance entries, want 2 (bob and carol)", len(byUser))
	}
	if !byUser[env.bob.ID].Equal(dec("30.00")) {
		t.Errorf("bob owes %s, want 30.00", byUser[env.bob.ID])
	}
	if !byUser[env.carol.ID].Equal(dec("20.00")) {
		t.Errorf("carol owes %s, want 20.00", byUser[env.carol.ID])
	}

	if summary.Metrics.ReceiptCounts.AssignedSplit != 1 || summary.Metrics.ReceiptCounts.Settled != 1 {
		t.Errorf("receipt counts = %+v, want 1 assigned, 1 settled", summary.Metrics.ReceiptCounts)
	}
	if !summary.Metrics.PendingExpense.Equal(dec("100.00")) {
		t.Errorf("pending expense = %s, want 100.00", summary.Metrics.PendingExpense)
	}
	if !summary.Metrics.SettledExpense.Equal(dec("100.00")) {
		t.Errorf("settled expense = %s, want 100.00", summary.Metrics.SettledExpense)
	}

	for _, us := range summary.UserSummaries {
		if us.UserID == env.bob.ID {
			if !us.SettledOwed.Equal(dec("100.00")) {
				t.Errorf("bob settledOwed = %s, want 100.00", us.SettledOwed)
			}
			if !us.PendingOwed.Equal(dec("30.00")) {
				t.Errorf("bob pendingOwed = %s, want 30.00", us.PendingOwed)
			}
		}
		if us.UserID == env.alice.ID && us.ReceiptsUploaded != 2 {
			t.Errorf("alice receiptsUploaded = %d, want 2", us.ReceiptsUploaded)
		}
	}
}
