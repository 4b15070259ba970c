package repository_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPalletRepository_NextUIDIsSequential(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	repo := repository.NewPalletRepository(suite.DB)

	uid, err := repo.NextUID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UID:001", uid)

	require.NoError(t, repo.Create(ctx, &repository.Pallet{UID: uid, Username: "alice"}))

	uid, err = repo.NextUID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UID:002", uid)
}

func TestPalletRepository_DuplicateUIDRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	repo := repository.NewPalletRepository(suite.DB)
	qty := decimal.NewFromInt(5)
	require.NoError(t, repo.Create(ctx, &repository.Pallet{UID: "UID:001", Quantity: &qty}))

	err := repo.Create(ctx, &repository.Pallet{UID: "UID:001"})
	require.Error(t, err)
}

func TestReceiptRepository_CreateAndFilterByPlant(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	repo := repository.NewReceiptRepository(suite.DB)
	require.NoError(t, repo.Create(ctx, &repository.Receipt{
		Plant:        "PLANTA-1",
		MaterialCode: "MAT-001",
		Quantity:     decimal.NewFromInt(10),
		Username:     "alice",
	}))
	require.NoError(t, repo.Create(ctx, &repository.Receipt{
		Plant:        "PLANTA-2",
		MaterialCode: "MAT-002",
		Quantity:     decimal.NewFromInt(4),
		Username:     "bob",
	}))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := repo.List(ctx, "PLANTA-1")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "MAT-001", filtered[0].MaterialCode)
}
