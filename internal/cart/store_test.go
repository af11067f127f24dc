package cart

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ReturnsCartWithItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	updated := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM carts WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "updated_at"}).
			AddRow("cart-1", "user-1", updated))
	mock.ExpectQuery("SELECT (.+) FROM cart_items WHERE cart_id").
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "quantity", "unit_price", "image_url"}).
			AddRow("p1", "Lamp", 2, 400.0, "").
			AddRow("p2", "Rug", 1, 200.0, ""))

	store := NewStore(db)
	c, err := store.Get(context.Background(), "user-1")

	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "cart-1", c.ID)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestGet_NoCartReturnsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM carts WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "updated_at"}))

	store := NewStore(db)
	c, err := store.Get(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestAddItem_UpsertsCartAndItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO carts").
		WithArgs(sqlmock.AnyArg(), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))
	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs("cart-1", "p1", "Lamp", 2, 400.0, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewStore(db)
	err = store.AddItem(context.Background(), "user-1", Item{
		ProductID: "p1", Title: "Lamp", Quantity: 2, UnitPrice: 400,
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs("user-1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db)
	require.NoError(t, store.RemoveItem(context.Background(), "user-1", "p1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClear_RemovesItemsAndCartInOneTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM carts").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewStore(db)
	require.NoError(t, store.Clear(context.Background(), "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
