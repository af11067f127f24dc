package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Store is the single write path for cart contents. Checkout reads a
// snapshot through Get and clears the cart only after a successful
// order; nothing else mutates carts during checkout.
type Store interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	AddItem(ctx context.Context, userID string, item Item) error
	RemoveItem(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

type store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Get(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, title, quantity, unit_price, image_url
         FROM cart_items WHERE cart_id = $1 ORDER BY added_at`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Title, &it.Quantity, &it.UnitPrice, &it.ImageURL); err != nil {
			return nil, fmt.Errorf("scan cart_item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &c, nil
}

func (s *store) AddItem(ctx context.Context, userID string, item Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var cartID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO carts (id, user_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`, uuid.NewString(), userID).Scan(&cartID)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, title, quantity, unit_price, image_url, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (cart_id, product_id) DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity,
			unit_price = EXCLUDED.unit_price
	`, cartID, item.ProductID, item.Title, item.Quantity, item.UnitPrice, item.ImageURL)
	if err != nil {
		return fmt.Errorf("insert cart_item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *store) RemoveItem(ctx context.Context, userID, productID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE product_id = $2 AND cart_id = (SELECT id FROM carts WHERE user_id = $1)
	`, userID, productID)
	if err != nil {
		return fmt.Errorf("delete cart_item: %w", err)
	}
	return nil
}

func (s *store) Clear(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM cart_items WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)
	`, userID)
	if err != nil {
		return fmt.Errorf("delete cart_items: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
