package calculator

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"splitshare/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testReceipt() *models.Receipt {
	return &models.Receipt{
		ID:       "r1",
		GroupID:  "g1",
		UserID:   "alice",
		Subtotal: dec("90.00"),
		Tax:      dec("10.00"),
		Total:    dec("100.00"),
		Status:   models.StatusInitial,
		Items: []models.Item{
			{ID: "i1", Name: "Pizza", Quantity: dec("1"), UnitPrice: dec("30.00"), Total: dec("30.00")},
			{ID: "i2", Name: "Pasta", Quantity: dec("2"), UnitPrice: dec("20.00"), Total: dec("40.00")},
			{ID: "i3", Name: "Wine", Quantity: dec("1"), UnitPrice: dec("20.00"), Total: dec("20.00")},
		},
	}
}

var testMembers = []string{"alice", "bob", "carol"}

func TestAllocateByTotalPercentage(t *testing.T) {
	tests := []struct {
		name     string
		shares   []PercentageShare
		wantErr  string
		validate func(t *testing.T, splits []models.Split)
	}{
		{
			name: "60/40 split sums exactly to total",
			shares: []PercentageShare{
				{UserID: "alice", Percentage: dec("60")},
				{UserID: "bob", Percentage: dec("40")},
			},
			validate: func(t *testing.T, splits []models.Split) {
				if len(splits) != 2 {
					t.Fatalf("got %d splits, want 2", len(splits))
				}
				if !splits[0].Amount.Equal(dec("60.00")) {
					t.Errorf("alice amount = %s, want 60.00", splits[0].Amount)
				}
				if !splits[1].Amount.Equal(dec("40.00")) {
					t.Errorf("bob amount = %s, want 40.00", splits[1].Amount)
				}
				sum := splits[0].Amount.Add(splits[1].Amount)
				if !sum.Equal(dec("100.00")) {
					t.Errorf("split sum = %s, want 100.00", sum)
				}
				for _, s := range splits {
					if s.Type != models.SplitPercentageTotal {
						t.Errorf("split type = %s, want PERCENTAGE_TOTAL", s.Type)
					}
					if s.Percentage == nil {
						t.Error("expected percentage to be recorded")
					}
				}
			},
		},
		{
			name: "uneven percentages round half-up",
			shares: []PercentageShare{
				{UserID: "alice", Percentage: dec("33.335")},
				{UserID: "bob", Percentage: dec("66.665")},
			},
			validate: func(t *testing.T, splits []models.Split) {
				// 33.335% of 100.00 = 33.335 -> 33.34
				if !splits[0].Amount.Equal(dec("33.34")) {
					t.Errorf("alice amount = %s, want 33.34", splits[0].Amount)
				}
				if !splits[1].Amount.Equal(dec("66.67")) {
					t.Errorf("bob amount = %s, want 66.67", splits[1].Amount)
				}
			},
		},
		{
			name: "sum within tolerance accepted",
			shares: []PercentageShare{
				{UserID: "alice", Percentage: dec("50.005")},
				{UserID: "bob", Percentage: dec("50")},
			},
		},
		{
			name: "zero-percentage member emits no split",
			shares: []PercentageShare{
				{UserID: "alice", Percentage: dec("100")},
				{UserID: "bob", Percentage: dec("0")},
			},
			validate: func(t *testing.T, splits []models.Split) {
				if len(splits) != 1 {
					t.Fatalf("got %d splits, want 1", len(splits))
				}
				if splits[0].UserID != "alice" {
					t.Errorf("split user = %s, want alice", splits[0].UserID)
				}
			},
		},
		{
			name: "sum below 100 rejected",
			shares: []PercentageShare{
				{UserID: "alice", Percentage: dec("59.9")},
				{UserID: "bob", Percentage: dec("40")},
			},
			wantErr: "sum to 100",
		},
		{
			name: "sum above 100 rejected",
			shares: []PercentageShare{
				{UserID: "alice", Percentage: dec("60.2")},
				{UserID: "bob", Percentage: dec("40")},
			},
			wantErr: "sum to 100",
		},
		{
			name: "non-member rejected",
			shares: []PercentageShare{
				{UserID: "mallory", Percentage: dec("100")},
			},
			wantErr: "not a member",
		},
		{
			name: "duplicate member rejected",
			shares: []PercentageShare{
				{UserID: "alice", Percentage: dec("50")},
				{UserID: "alice", Percentage: dec("50")},
			},
			wantErr: "duplicate",
		},
		{
			name:    "empty input rejected",
			shares:  nil,
			wantErr: "at least one",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := AllocateByTotalPercentage(testReceipt(), testMembers, tt.shares)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, splits)
			}
		})
	}
}

func TestAllocateByItemPercentage(t *testing.T) {
	tests := []struct {
		name       string
		itemShares []ItemPercentages
		wantErr    string
		validate   func(t *testing.T, splits []models.Split)
	}{
		{
			name: "contributions accumulate across items",
			itemShares: []ItemPercentages{
				{ItemID: "i1", Shares: []PercentageShare{
					{UserID: "alice", Percentage: dec("50")},
					{UserID: "bob", Percentage: dec("50")},
				}},
				{ItemID: "i2", Shares: []PercentageShare{
					{UserID: "alice", Percentage: dec("25")},
					{UserID: "bob", Percentage: dec("75")},
				}},
			},
			validate: func(t *testing.T, splits []models.Split) {
				if len(splits) != 2 {
					t.Fatalf("got %d splits, want 2", len(splits))
				}
				// alice: 15.00 + 10.00, bob: 15.00 + 30.00
				if !splits[0].Amount.Equal(dec("25.00")) {
					t.Errorf("alice amount = %s, want 25.00", splits[0].Amount)
				}
				if !splits[1].Amount.Equal(dec("45.00")) {
					t.Errorf("bob amount = %s, want 45.00", splits[1].Amount)
				}
				for _, s := range splits {
					if s.Type != models.SplitPercentagePerItem {
						t.Errorf("split type = %s, want PERCENTAGE_PER_ITEM", s.Type)
					}
					if len(s.ItemSplits) != 2 {
						t.Errorf("%s has %d item splits, want 2", s.UserID, len(s.ItemSplits))
					}
					sum := decimal.Zero
					for _, is := range s.ItemSplits {
						sum = sum.Add(is.Amount)
					}
					if !sum.Equal(s.Amount) {
						t.Errorf("%s item splits sum to %s, split amount is %s", s.UserID, sum, s.Amount)
					}
				}
			},
		},
		{
			name: "covering only some items is allowed",
			itemShares: []ItemPercentages{
				{ItemID: "i3", Shares: []PercentageShare{
					{UserID: "carol", Percentage: dec("100")},
				}},
			},
			validate: func(t *testing.T, splits []models.Split) {
				if len(splits) != 1 {
					t.Fatalf("got %d splits, want 1", len(splits))
				}
				if !splits[0].Amount.Equal(dec("20.00")) {
					t.Errorf("carol amount = %s, want 20.00", splits[0].Amount)
				}
			},
		},
		{
			name: "unknown item rejected",
			itemShares: []ItemPercentages{
				{ItemID: "nope", Shares: []PercentageShare{
					{UserID: "alice", Percentage: dec("100")},
				}},
			},
			wantErr: "not found on receipt",
		},
		{
			name: "per-item sum validated",
			itemShares: []ItemPercentages{
				{ItemID: "i1", Shares: []PercentageShare{
					{UserID: "alice", Percentage: dec("60")},
					{UserID: "bob", Percentage: dec("39.9")},
				}},
			},
			wantErr: "sum to 100",
		},
		{
			name: "non-member rejected",
			itemShares: []ItemPercentages{
				{ItemID: "i1", Shares: []PercentageShare{
					{UserID: "mallory", Percentage: dec("100")},
				}},
			},
			wantErr: "not a member",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := AllocateByItemPercentage(testReceipt(), testMembers, tt.itemShares)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, splits)
			}
		})
	}
}

func TestAllocateByItemAssignment(t *testing.T) {
	tests := []struct {
		name        string
		assignments []MemberItems
		wantErr     string
		validate    func(t *testing.T, splits []models.Split)
	}{
		{
			name: "item shared by three members divides equally",
			assignments: []MemberItems{
				{UserID: "alice", ItemIDs: []string{"i1", "i2"}},
				{UserID: "bob", ItemIDs: []string{"i1", "i3"}},
				{UserID: "carol", ItemIDs: []string{"i1"}},
			},
			validate: func(t *testing.T, splits []models.Split) {
				if len(splits) != 3 {
					t.Fatalf("got %d splits, want 3", len(splits))
				}
				// i1 (30.00) is shared three ways: 10.00 each.
				// alice: 10 + 40 = 50, bob: 10 + 20 = 30, carol: 10
				want := map[string]string{"alice": "50.00", "bob": "30.00", "carol": "10.00"}
				for _, s := range splits {
					if !s.Amount.Equal(dec(want[s.UserID])) {
						t.Errorf("%s amount = %s, want %s", s.UserID, s.Amount, want[s.UserID])
					}
					if s.Type != models.SplitItemBased {
						t.Errorf("split type = %s, want ITEM_BASED", s.Type)
					}
					for _, is := range s.ItemSplits {
						if is.ItemID == "i1" && !is.Amount.Equal(dec("10.00")) {
							t.Errorf("%s share of i1 = %s, want 10.00", s.UserID, is.Amount)
						}
					}
				}
			},
		},
		{
			name: "residual cent drift accepted on three-way division",
			assignments: []MemberItems{
				{UserID: "alice", ItemIDs: []string{"i1", "i3"}},
				{UserID: "bob", ItemIDs: []string{"i2", "i3"}},
				{UserID: "carol", ItemIDs: []string{"i3"}},
			},
			validate: func(t *testing.T, splits []models.Split) {
				// i3 (20.00) three ways: 6.67 each, so the item totals
				// sum (90.00) drifts up by one cent.
				sum := decimal.Zero
				for _, s := range splits {
					sum = sum.Add(s.Amount)
				}
				if !sum.Equal(dec("90.01")) {
					t.Errorf("splits sum to %s, want 90.01 (accepted drift)", sum)
				}
			},
		},
		{
			name: "unassigned items rejected naming their ids",
			assignments: []MemberItems{
				{UserID: "alice", ItemIDs: []string{"i1"}},
			},
			wantErr: "i2, i3",
		},
		{
			name: "unknown item rejected",
			assignments: []MemberItems{
				{UserID: "alice", ItemIDs: []string{"i1", "i2", "i3", "ghost"}},
			},
			wantErr: "not found on receipt",
		},
		{
			name: "non-member rejected",
			assignments: []MemberItems{
				{UserID: "mallory", ItemIDs: []string{"i1", "i2", "i3"}},
			},
			wantErr: "not a member",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := AllocateByItemAssignment(testReceipt(), testMembers, tt.assignments)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, splits)
			}
		})
	}
}
