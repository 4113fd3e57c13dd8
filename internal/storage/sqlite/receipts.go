package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"splitshare/internal/models"
	"splitshare/internal/storage"
)

// CreateReceipt persists a new receipt with its items in one transaction.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}
	if receipt.Status == "" {
		receipt.Status = models.StatusInitial
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tip := decimal.NullDecimal{}
	if receipt.Tip != nil {
		tip = decimal.NewNullDecimal(*receipt.Tip)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, group_id, user_id, merchant_name, date, subtotal, tax, tip, total, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.GroupID, receipt.UserID, receipt.MerchantName, receipt.Date,
		receipt.Subtotal, receipt.Tax, tip, receipt.Total, receipt.Status, receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	for i := range receipt.Items {
		item := &receipt.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.ReceiptID = receipt.ID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (id, receipt_id, name, quantity, unit_price, total, position) VALUES (?, ?, ?, ?, ?, ?, ?)",
			item.ID, receipt.ID, item.Name, item.Quantity, item.UnitPrice, item.Total, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReceipt retrieves a receipt with its items, splits and item splits.
func (s *SQLiteStore) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	var tip decimal.NullDecimal

	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, user_id, merchant_name, date, subtotal, tax, tip, total, status, created_at
		 FROM receipts WHERE id = ?`,
		receiptID,
	).Scan(&receipt.ID, &receipt.GroupID, &receipt.UserID, &receipt.MerchantName, &receipt.Date,
		&receipt.Subtotal, &receipt.Tax, &tip, &receipt.Total, &receipt.Status, &receipt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if tip.Valid {
		receipt.Tip = &tip.Decimal
	}

	if receipt.Items, err = s.receiptItems(ctx, receiptID); err != nil {
		return nil, err
	}
	if receipt.Splits, err = s.receiptSplits(ctx, receiptID); err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *SQLiteStore) receiptItems(ctx context.Context, receiptID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, receipt_id, name, quantity, unit_price, total FROM items WHERE receipt_id = ? ORDER BY position",
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.ReceiptID, &item.Name, &item.Quantity, &item.UnitPrice, &item.Total); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) receiptSplits(ctx context.Context, receiptID string) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, receipt_id, user_id, amount, split_type, percentage, is_paid
		 FROM splits WHERE receipt_id = ? ORDER BY user_id`,
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var split models.Split
		var pct decimal.NullDecimal
		if err := rows.Scan(&split.ID, &split.ReceiptID, &split.UserID, &split.Amount, &split.Type, &pct, &split.IsPaid); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if pct.Valid {
			split.Percentage = &pct.Decimal
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	for i := range splits {
		split := &splits[i]
		isRows, err := s.db.QueryContext(ctx,
			"SELECT id, split_id, item_id, amount, percentage FROM item_splits WHERE split_id = ?",
			split.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get item splits: %w", err)
		}
		for isRows.Next() {
			var is models.ItemSplit
			var pct decimal.NullDecimal
			if err := isRows.Scan(&is.ID, &is.SplitID, &is.ItemID, &is.Amount, &pct); err != nil {
				isRows.Close()
				return nil, fmt.Errorf("failed to scan item split: %w", err)
			}
			if pct.Valid {
				is.Percentage = &pct.Decimal
			}
			split.ItemSplits = append(split.ItemSplits, is)
		}
		isRows.Close()
		if err := isRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate item splits: %w", err)
		}
	}
	return splits, nil
}

// ListReceiptsByGroup retrieves a group's receipts, newest first.
func (s *SQLiteStore) ListReceiptsByGroup(ctx context.Context, groupID string) ([]models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM receipts WHERE group_id = ? ORDER BY created_at DESC, id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan receipt id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	var receipts []models.Receipt
	for _, id := range ids {
		receipt, err := s.GetReceipt(ctx, id)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *receipt)
	}
	return receipts, nil
}

// DeleteReceipt removes a receipt; items and splits go with it via cascade.
func (s *SQLiteStore) DeleteReceipt(ctx context.Context, receiptID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM receipts WHERE id = ?", receiptID)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	return nil
}

// ReplaceSplits atomically replaces the receipt's splits: delete all
// existing Split/ItemSplit rows, insert the new set, advance the status to
// ASSIGNED_SPLIT. Any failure rolls the whole sequence back, so a
// concurrent reader only ever sees the old set or the new set.
func (s *SQLiteStore) ReplaceSplits(ctx context.Context, receiptID string, splits []models.Split) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// item_splits rows go with their splits via cascade.
	if _, err := tx.ExecContext(ctx, "DELETE FROM splits WHERE receipt_id = ?", receiptID); err != nil {
		return fmt.Errorf("failed to delete old splits: %w", err)
	}

	for i := range splits {
		split := &splits[i]
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		split.ReceiptID = receiptID

		pct := decimal.NullDecimal{}
		if split.Percentage != nil {
			pct = decimal.NewNullDecimal(*split.Percentage)
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO splits (id, receipt_id, user_id, amount, split_type, percentage, is_paid) VALUES (?, ?, ?, ?, ?, ?, ?)",
			split.ID, receiptID, split.UserID, split.Amount, split.Type, pct, split.IsPaid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}

		for j := range split.ItemSplits {
			is := &split.ItemSplits[j]
			if is.ID == "" {
				is.ID = uuid.New().String()
			}
			is.SplitID = split.ID

			isPct := decimal.NullDecimal{}
			if is.Percentage != nil {
				isPct = decimal.NewNullDecimal(*is.Percentage)
			}

			_, err := tx.ExecContext(ctx,
				"INSERT INTO item_splits (id, split_id, item_id, amount, percentage) VALUES (?, ?, ?, ?, ?)",
				is.ID, split.ID, is.ItemID, is.Amount, isPct,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item split: %w", err)
			}
		}
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE receipts SET status = ? WHERE id = ?",
		models.StatusAssignedSplit, receiptID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SettleReceipt atomically marks every split paid and advances the
// receipt to SETTLED.
func (s *SQLiteStore) SettleReceipt(ctx context.Context, receiptID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE splits SET is_paid = 1 WHERE receipt_id = ?", receiptID); err != nil {
		return fmt.Errorf("failed to mark splits paid: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE receipts SET status = ? WHERE id = ?",
		models.StatusSettled, receiptID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
