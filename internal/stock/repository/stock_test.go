package repository_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/pkg/database"
	"github.com/smartstock/smartstock-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// insertEntry creates a stock entry inside its own transaction.
func insertEntry(t *testing.T, repo *repository.StockRepository, entry *repository.StockEntry) {
	t.Helper()
	err := suite.DB.Transaction(context.Background(), func(tx *sqlx.Tx) error {
		return repo.InsertTx(context.Background(), tx, entry)
	})
	require.NoError(t, err)
	require.NotZero(t, entry.ID)
}

func TestStockRepository_InsertAndGetTuple(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	repo := repository.NewStockRepository(suite.DB)
	insertEntry(t, repo, &repository.StockEntry{
		MaterialCode: "MAT-001",
		Description:  "Bolsa 25kg",
		Quantity:     decimal.NewFromInt(10),
		Location:     "A-01-01",
		Lot:          "L-77",
		Username:     "alice",
	})

	err := suite.DB.Transaction(ctx, func(tx *sqlx.Tx) error {
		entry, err := repo.GetTupleForUpdate(ctx, tx, "MAT-001", "A-01-01", "L-77")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, "alice", entry.Username)

		// Missing tuple yields nil, not an error
		missing, err := repo.GetTupleForUpdate(ctx, tx, "MAT-001", "A-01-01", "OTHER-LOT")
		require.NoError(t, err)
		assert.Nil(t, missing)
		return nil
	})
	require.NoError(t, err)
}

func TestStockRepository_AddQuantity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	repo := repository.NewStockRepository(suite.DB)
	entry := &repository.StockEntry{
		MaterialCode: "MAT-001",
		Quantity:     decimal.NewFromInt(10),
		Location:     "A-01-01",
		Username:     "alice",
	}
	insertEntry(t, repo, entry)

	err := suite.DB.Transaction(ctx, func(tx *sqlx.Tx) error {
		total, err := repo.AddQuantityTx(ctx, tx, entry.ID, decimal.NewFromInt(5), "bob")
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(15)))

		total, err = repo.AddQuantityTx(ctx, tx, entry.ID, decimal.NewFromInt(-7), "bob")
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(8)))
		return nil
	})
	require.NoError(t, err)

	entries, err := repo.ListByMaterial(ctx, "MAT-001")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bob", entries[0].Username)
}

func TestStockRepository_DeleteEntry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	repo := repository.NewStockRepository(suite.DB)
	entry := &repository.StockEntry{
		MaterialCode: "MAT-001",
		Quantity:     decimal.NewFromInt(3),
		Location:     "A-01-01",
	}
	insertEntry(t, repo, entry)

	err := suite.DB.Transaction(ctx, func(tx *sqlx.Tx) error {
		return repo.DeleteTx(ctx, tx, entry.ID)
	})
	require.NoError(t, err)

	entries, err := repo.ListByLocation(ctx, "A-01-01")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestStockRepository_EmptyReadsReturnEmptySlices(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	repo := repository.NewStockRepository(suite.DB)

	byMaterial, err := repo.ListByMaterial(ctx, "NO-SUCH-MATERIAL")
	require.NoError(t, err)
	assert.NotNil(t, byMaterial)
	assert.Empty(t, byMaterial)

	byLocation, err := repo.ListByLocation(ctx, "NO-SUCH-LOCATION")
	require.NoError(t, err)
	assert.NotNil(t, byLocation)
	assert.Empty(t, byLocation)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestStockRepository_UniqueTupleOutsideGround(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	repo := repository.NewStockRepository(suite.DB)
	insertEntry(t, repo, &repository.StockEntry{
		MaterialCode: "MAT-001",
		Quantity:     decimal.NewFromInt(1),
		Location:     "A-01-01",
		Lot:          "L-1",
	})

	// Same tuple outside GROUND is rejected by the partial unique index
	err := suite.DB.Transaction(ctx, func(tx *sqlx.Tx) error {
		return repo.InsertTx(ctx, tx, &repository.StockEntry{
			MaterialCode: "MAT-001",
			Quantity:     decimal.NewFromInt(2),
			Location:     "A-01-01",
			Lot:          "L-1",
		})
	})
	require.Error(t, err)
	appErr := database.MapPQError(err)
	require.NotNil(t, appErr)
	assert.True(t, errors.Is(appErr, errors.ErrConcurrencyConflict))

	// GROUND is a multi-row buffer: duplicates are allowed
	for i := 0; i < 2; i++ {
		insertEntry(t, repo, &repository.StockEntry{
			MaterialCode: "MAT-001",
			Quantity:     decimal.NewFromInt(5),
			Location:     "GROUND",
			Lot:          "L-1",
		})
	}
	entries, err := repo.ListByLocation(ctx, "GROUND")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStockRepository_HasStockAtLocation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	repo := repository.NewStockRepository(suite.DB)

	has, err := repo.HasStockAtLocation(ctx, "A-01-01")
	require.NoError(t, err)
	assert.False(t, has)

	insertEntry(t, repo, &repository.StockEntry{
		MaterialCode: "MAT-001",
		Quantity:     decimal.NewFromInt(1),
		Location:     "A-01-01",
	})

	has, err = repo.HasStockAtLocation(ctx, "A-01-01")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestStockRepository_RenameUsername(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	repo := repository.NewStockRepository(suite.DB)
	insertEntry(t, repo, &repository.StockEntry{
		MaterialCode: "MAT-001",
		Quantity:     decimal.NewFromInt(1),
		Location:     "A-01-01",
		Username:     "old.name",
	})
	insertEntry(t, repo, &repository.StockEntry{
		MaterialCode: "MAT-002",
		Quantity:     decimal.NewFromInt(2),
		Location:     "A-01-02",
		Username:     "old.name",
	})
	insertEntry(t, repo, &repository.StockEntry{
		MaterialCode: "MAT-003",
		Quantity:     decimal.NewFromInt(3),
		Location:     "A-01-03",
		Username:     "someone.else",
	})

	var affected int64
	err := suite.DB.Transaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		affected, err = repo.RenameUsernameTx(ctx, tx, "old.name", "new.name")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	entries, err := repo.ListAll(ctx)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "old.name", e.Username)
	}
}
