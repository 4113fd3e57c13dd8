package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"splitshare/internal/calculator"
	"splitshare/internal/models"
	"splitshare/internal/storage"
	"splitshare/internal/storage/sqlite"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testEnv wires the services against a temp-file SQLite store with three
// users in one group owned by alice.
type testEnv struct {
	store    storage.Store
	groups   *GroupService
	receipts *ReceiptService
	splits   *SplitService

	alice, bob, carol *models.User
	group             *models.Group
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitshare-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		store:    store,
		groups:   NewGroupService(store, nil),
		receipts: NewReceiptService(store),
		splits:   NewSplitService(store),
	}

	ctx := context.Background()
	env.alice = env.createUser(t, "Alice", "alice@example.com")
	env.bob = env.createUser(t, "Bob", "bob@example.com")
	env.carol = env.createUser(t, "Carol", "carol@example.com")

	group, err := env.groups.CreateGroup(ctx, env.alice.ID, "Dinner Club", "")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, email := range []string{"bob@example.com", "carol@example.com"} {
		if err := env.groups.InviteUser(ctx, env.alice.ID, group.ID, email); err != nil {
			t.Fatalf("InviteUser(%s) failed: %v", email, err)
		}
	}
	env.group, err = env.groups.GetGroup(ctx, env.alice.ID, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	return env
}

func (e *testEnv) createUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, PasswordHash: "x"}
	if err := e.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return user
}

// saveReceipt uploads a 100.00 receipt with three items as alice.
func (e *testEnv) saveReceipt(t *testing.T) *models.Receipt {
	t.Helper()
	receipt := &models.Receipt{
		GroupID:      e.group.ID,
		MerchantName: "Thai Palace",
		Date:         "2025-11-02",
		Subtotal:     dec("90.00"),
		Tax:          dec("10.00"),
		Total:        dec("100.00"),
		Items: []models.Item{
			{Name: "Pad Thai", Quantity: dec("1"), UnitPrice: dec("30.00"), Total: dec("30.00")},
			{Name: "Curry", Quantity: dec("2"), UnitPrice: dec("20.00"), Total: dec("40.00")},
			{Name: "Rolls", Quantity: dec("1"), UnitPrice: dec("20.00"), Total: dec("20.00")},
		},
	}
	saved, err := e.receipts.SaveReceipt(context.Background(), e.alice.ID, receipt)
	if err != nil {
		t.Fatalf("SaveReceipt failed: %v", err)
	}
	return saved
}

func TestSplitByPercentage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	receipt := env.saveReceipt(t)

	updated, err := env.splits.SplitByPercentage(ctx, env.alice.ID, receipt.ID, []calculator.PercentageShare{
		{UserID: env.alice.ID, Percentage: dec("60")},
		{UserID: env.bob.ID, Percentage: dec("40")},
	})
	if err != nil {
		t.Fatalf("SplitByPercentage failed: %v", err)
	}

	if updated.Status != models.StatusAssignedSplit {
		t.Errorf("status = %s, want ASSIGNED_SPLIT", updated.Status)
	}
	if len(updated.Splits) != 2 {
		t.Fatalf("got %d splits, want 2", len(updated.Splits))
	}
	amounts := map[string]decimal.Decimal{}
	for _, s := range updated.Splits {
		amounts[s.UserID] = s.Amount
	}
	if !amounts[env.alice.ID].Equal(dec("60.00")) || !amounts[env.bob.ID].Equal(dec("40.00")) {
		t.Errorf("amounts = %v, want alice 60.00, bob 40.00", amounts)
	}
}

func TestSplitAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	receipt := env.saveReceipt(t)

	// Only the uploader (payer of record) may split.
	_, err := env.splits.SplitByPercentage(ctx, env.bob.ID, receipt.ID, []calculator.PercentageShare{
		{UserID: env.bob.ID, Percentage: dec("100")},
	})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("non-payer split error = %v, want ErrNotAuthorized", err)
	}

	_, err = env.splits.SplitByPercentage(ctx, env.alice.ID, "missing", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown receipt error = %v, want ErrNotFound", err)
	}
}

func TestSplitValidationLeavesReceiptUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	receipt := env.saveReceipt(t)

	_, err := env.splits.SplitByPercentage(ctx, env.alice.ID, receipt.ID, []calculator.PercentageShare{
		{UserID: env.alice.ID, Percentage: dec("59.9")},
		{UserID: env.bob.ID, Percentage: dec("40")},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	// A rejected split is a no-op: status stays INITIAL, no splits written.
	got, err := env.receipts.GetReceipt(ctx, env.alice.ID, receipt.ID)
	if err != nil {
		t.Fatalf("GetReceipt failed: %v", err)
	}
	if got.Status != models.StatusInitial {
		t.Errorf("status = %s, want INITIAL after rejected split", got.Status)
	}
	if len(got.Splits) != 0 {
		t.Errorf("got %d splits after rejected split, want 0", len(got.Splits))
	}
}

func TestResplitIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	receipt := env.saveReceipt(t)

	assignments := []calculator.MemberItems{
		{UserID: env.alice.ID, ItemIDs: []string{receipt.Items[0].ID, receipt.Items[1].ID}},
		{UserID: env.bob.ID, ItemIDs: []string{receipt.Items[2].ID}},
	}

	first, err := env.splits.SplitByItemAssignment(ctx, env.alice.ID, receipt.ID, assignments)
	if err != nil {
		t.Fatalf("first split failed: %v", err)
	}
	second, err := env.splits.SplitByItemAssignment(ctx, env.alice.ID, receipt.ID, assignments)
	if err != nil {
		t.Fatalf("second split failed: %v", err)
	}

	if len(first.Splits) != len(second.Splits) {
		t.Fatalf("split count changed on re-split: %d vs %d", len(first.Splits), len(second.Splits))
	}
	for i := range second.Splits {
		a, b := first.Splits[i], second.Splits[i]
		if a.UserID != b.UserID || !a.Amount.Equal(b.Amount) || a.Type != b.Type {
			t.Errorf("split %d differs on re-split: %+v vs %+v", i, a, b)
		}
		if len(a.ItemSplits) != len(b.ItemSplits) {
			t.Errorf("split %d item-split count differs: %d vs %d", i, len(a.ItemSplits), len(b.ItemSplits))
		}
	}
}

func TestSplitByItemAssignmentRejectsUnassignedItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	receipt := env.saveReceipt(t)

	_, err := env.splits.SplitByItemAssignment(ctx, env.alice.ID, receipt.ID, []calculator.MemberItems{
		{UserID: env.alice.ID, ItemIDs: []string{receipt.Items[0].ID}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	for _, id := range []string{receipt.Items[1].ID, receipt.Items[2].ID} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("error %q does not name unassigned item %s", err, id)
		}
	}
}

func TestSettleLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	receipt := env.saveReceipt(t)

	// INITIAL receipts cannot be settled.
	if _, err := env.receipts.SettleReceipt(ctx, env.alice.ID, receipt.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("settle from INITIAL error = %v, want ErrValidation", err)
	}

	if _, err := env.splits.SplitByPercentage(ctx, env.alice.ID, receipt.ID, []calculator.PercentageShare{
		{UserID: env.alice.ID, Percentage: dec("50")},
		{UserID: env.bob.ID, Percentage: dec("50")},
	}); err != nil {
		t.Fatalf("split failed: %v", err)
	}

	// Only the uploader may settle.
	if _, err := env.receipts.SettleReceipt(ctx, env.bob.ID, receipt.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("non-uploader settle error = %v, want ErrNotAuthorized", err)
	}

	settled, err := env.receipts.SettleReceipt(ctx, env.alice.ID, receipt.ID)
	if err != nil {
		t.Fatalf("SettleReceipt failed: %v", err)
	}
	if settled.Status != models.StatusSettled {
		t.Errorf("status = %s, want SETTLED", settled.Status)
	}
	for _, s := range settled.Splits {
		if !s.IsPaid {
			t.Errorf("split for %s not marked paid", s.UserID)
		}
	}

	// Status is monotonic: a settled receipt cannot be re-split.
	if _, err := env.splits.SplitByPercentage(ctx, env.alice.ID, receipt.ID, []calculator.PercentageShare{
		{UserID: env.alice.ID, Percentage: dec("100")},
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("split of settled receipt error = %v, want ErrValidation", err)
	}
}
