package service_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/internal/stock/service"
	"github.com/smartstock/smartstock-backend/pkg/actor"
	"github.com/smartstock/smartstock-backend/pkg/database"
	"github.com/smartstock/smartstock-backend/pkg/errors"
	"github.com/smartstock/smartstock-backend/pkg/logger"
	"github.com/smartstock/smartstock-backend/pkg/messaging"
	"github.com/smartstock/smartstock-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*service.Ledger, *repository.StockRepository, *repository.MovementRepository, *testutil.MockPublisher) {
	t.Helper()

	stockRepo := repository.NewStockRepository(suite.DB)
	movementRepo := repository.NewMovementRepository(suite.DB)
	locationRepo := repository.NewLocationRepository(suite.DB)
	materialRepo := repository.NewMaterialRepository(suite.DB)

	validator := service.NewLocationValidator(locationRepo, true, suite.Logger)
	recorder := service.NewRecorder(movementRepo, materialRepo, "UND", suite.Logger)
	publisher := testutil.NewMockPublisher()

	ledger := service.NewLedger(suite.DB, stockRepo, materialRepo, validator, recorder, publisher, "GROUND", suite.Logger)
	return ledger, stockRepo, movementRepo, publisher
}

func alice() actor.Actor {
	return actor.Actor{Username: "alice"}
}

func TestLedger_IngressMergesTuple(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	testutil.SeedMaterial(t, suite.RawDB, "MAT-001", "Harina 25kg", "KG")
	testutil.SeedLocation(t, suite.RawDB, "A-01-01")

	ledger, stockRepo, movementRepo, publisher := newTestLedger(t)

	total, err := ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-001",
		Location:     "a-01-01",
		Quantity:     decimal.NewFromInt(10),
		Lot:          "L-1",
		Actor:        alice(),
	})
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(10)))

	total, err = ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(5),
		Lot:          "L-1",
		Actor:        alice(),
	})
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(15)))

	// Same tuple merged into one row at the normalized location
	entries, err := stockRepo.ListByLocation(ctx, "A-01-01")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Harina 25kg", entries[0].Description)
	assert.Equal(t, "alice", entries[0].Username)

	// Each ingress leaves an audit record with the material's unit
	records, totalRecords, err := movementRepo.List(ctx, repository.MovementFilter{MovementType: repository.MovementIngress})
	require.NoError(t, err)
	assert.Equal(t, int64(2), totalRecords)
	assert.Equal(t, "+5", records[0].Delta)
	assert.Equal(t, "+10", records[1].Delta)
	assert.Equal(t, "KG", records[0].Unit)
	assert.Equal(t, repository.StatusStored, records[0].Status)

	publisher.AssertEventPublished(t, messaging.EventStockIngressed)
}

func TestLedger_IngressGroundAlwaysInsertsNewRow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	testutil.SeedMaterial(t, suite.RawDB, "MAT-001", "Harina 25kg", "KG")

	ledger, stockRepo, _, _ := newTestLedger(t)

	for i := 0; i < 3; i++ {
		_, err := ledger.Ingress(ctx, service.IngressInput{
			MaterialCode: "MAT-001",
			Location:     "GROUND",
			Quantity:     decimal.NewFromInt(10),
			Lot:          "L-1",
			Actor:        alice(),
		})
		require.NoError(t, err)
	}

	entries, err := stockRepo.ListByLocation(ctx, "GROUND")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestLedger_IngressRejectsOccupiedLocation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	testutil.SeedMaterial(t, suite.RawDB, "MAT-001", "Harina 25kg", "KG")
	testutil.SeedMaterial(t, suite.RawDB, "MAT-002", "Azucar 10kg", "KG")
	testutil.SeedLocation(t, suite.RawDB, "A-01-01")

	ledger, _, _, _ := newTestLedger(t)

	_, err := ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(10),
		Actor:        alice(),
	})
	require.NoError(t, err)

	_, err = ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-002",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(5),
		Actor:        alice(),
	})
	assert.True(t, errors.Is(err, errors.ErrLocationOccupied))
}

func TestLedger_IngressValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	testutil.SeedMaterial(t, suite.RawDB, "MAT-001", "Harina 25kg", "KG")
	testutil.SeedLocationState(t, suite.RawDB, "A-09-09", false)

	ledger, _, _, _ := newTestLedger(t)

	// Unknown material
	_, err := ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "NOPE",
		Location:     "GROUND",
		Quantity:     decimal.NewFromInt(1),
		Actor:        alice(),
	})
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// Inactive location
	_, err = ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-001",
		Location:     "A-09-09",
		Quantity:     decimal.NewFromInt(1),
		Actor:        alice(),
	})
	assert.True(t, errors.Is(err, errors.ErrLocationInvalid))

	// Unregistered location
	_, err = ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-001",
		Location:     "Z-99-99",
		Quantity:     decimal.NewFromInt(1),
		Actor:        alice(),
	})
	assert.True(t, errors.Is(err, errors.ErrLocationInvalid))

	// Non-positive quantity
	_, err = ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-001",
		Location:     "GROUND",
		Quantity:     decimal.Zero,
		Actor:        alice(),
	})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestLedger_TransferConservesStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	testutil.SeedMaterial(t, suite.RawDB, "MAT-001", "Harina 25kg", "KG")
	testutil.SeedLocation(t, suite.RawDB, "A-01-01")
	testutil.SeedLocation(t, suite.RawDB, "B-02-02")

	ledger, stockRepo, movementRepo, publisher := newTestLedger(t)

	_, err := ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(10),
		Lot:          "L-1",
		Actor:        alice(),
	})
	require.NoError(t, err)

	result, err := ledger.Transfer(ctx, service.TransferInput{
		FromLocation: "A-01-01",
		ToLocation:   "B-02-02",
		Quantity:     decimal.NewFromInt(4),
		Actor:        alice(),
	})
	require.NoError(t, err)
	assert.Equal(t, "MAT-001", result.MaterialCode)
	assert.True(t, result.FromRemaining.Equal(decimal.NewFromInt(6)))
	assert.True(t, result.ToTotal.Equal(decimal.NewFromInt(4)))

	// Transfer status names both ends
	records, _, err := movementRepo.List(ctx, repository.MovementFilter{MovementType: repository.MovementTransfer})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A-01-01 -> B-02-02", records[0].Status)
	assert.Equal(t, "4", records[0].Delta)

	publisher.AssertEventPublished(t, messaging.EventStockTransferred)

	// Draining the source deletes the row
	result, err = ledger.Transfer(ctx, service.TransferInput{
		FromLocation: "A-01-01",
		ToLocation:   "B-02-02",
		Quantity:     decimal.NewFromInt(6),
		Actor:        alice(),
	})
	require.NoError(t, err)
	assert.True(t, result.FromRemaining.IsZero())
	assert.True(t, result.ToTotal.Equal(decimal.NewFromInt(10)))

	fromEntries, err := stockRepo.ListByLocation(ctx, "A-01-01")
	require.NoError(t, err)
	assert.Empty(t, fromEntries)

	toEntries, err := stockRepo.ListByLocation(ctx, "B-02-02")
	require.NoError(t, err)
	require.Len(t, toEntries, 1)
	assert.True(t, toEntries[0].Quantity.Equal(decimal.NewFromInt(10)))
}

func TestLedger_TransferErrors(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	testutil.SeedMaterial(t, suite.RawDB, "MAT-001", "Harina 25kg", "KG")
	testutil.SeedMaterial(t, suite.RawDB, "MAT-002", "Azucar 10kg", "KG")
	testutil.SeedLocation(t, suite.RawDB, "A-01-01")
	testutil.SeedLocation(t, suite.RawDB, "B-02-02")

	ledger, _, _, _ := newTestLedger(t)

	// Empty source
	_, err := ledger.Transfer(ctx, service.TransferInput{
		FromLocation: "A-01-01",
		ToLocation:   "B-02-02",
		Quantity:     decimal.NewFromInt(1),
		Actor:        alice(),
	})
	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))

	_, err = ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(5),
		Actor:        alice(),
	})
	require.NoError(t, err)

	// More than available
	_, err = ledger.Transfer(ctx, service.TransferInput{
		FromLocation: "A-01-01",
		ToLocation:   "B-02-02",
		Quantity:     decimal.NewFromInt(6),
		Actor:        alice(),
	})
	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))

	// Same source and destination
	_, err = ledger.Transfer(ctx, service.TransferInput{
		FromLocation: "A-01-01",
		ToLocation:   "a-01-01",
		Quantity:     decimal.NewFromInt(1),
		Actor:        alice(),
	})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	// Destination occupied by another material
	_, err = ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-002",
		Location:     "B-02-02",
		Quantity:     decimal.NewFromInt(3),
		Actor:        alice(),
	})
	require.NoError(t, err)

	_, err = ledger.Transfer(ctx, service.TransferInput{
		FromLocation: "A-01-01",
		ToLocation:   "B-02-02",
		Quantity:     decimal.NewFromInt(1),
		Actor:        alice(),
	})
	assert.True(t, errors.Is(err, errors.ErrLocationOccupied))
}

func TestLedger_WithdrawDrainsAndDeletes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	testutil.SeedMaterial(t, suite.RawDB, "MAT-001", "Harina 25kg", "KG")
	testutil.SeedLocation(t, suite.RawDB, "A-01-01")

	ledger, stockRepo, movementRepo, publisher := newTestLedger(t)

	_, err := ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(10),
		Lot:          "L-1",
		Actor:        alice(),
	})
	require.NoError(t, err)

	remaining, err := ledger.Withdraw(ctx, service.WithdrawInput{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(4),
		Lot:          "L-1",
		Actor:        alice(),
	})
	require.NoError(t, err)
	assert.True(t, remaining.Equal(decimal.NewFromInt(6)))

	records, _, err := movementRepo.List(ctx, repository.MovementFilter{MovementType: repository.MovementWithdraw})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "-4", records[0].Delta)
	assert.Equal(t, repository.StatusDispatched, records[0].Status)

	publisher.AssertEventPublished(t, messaging.EventStockWithdrawn)

	// Withdrawing the rest removes the row entirely
	remaining, err = ledger.Withdraw(ctx, service.WithdrawInput{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(6),
		Actor:        alice(),
	})
	require.NoError(t, err)
	assert.True(t, remaining.IsZero())

	entries, err := stockRepo.ListByLocation(ctx, "A-01-01")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLedger_WithdrawInsufficientStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	testutil.SeedMaterial(t, suite.RawDB, "MAT-001", "Harina 25kg", "KG")
	testutil.SeedLocation(t, suite.RawDB, "A-01-01")

	ledger, _, _, _ := newTestLedger(t)

	// Nothing stored yet
	_, err := ledger.Withdraw(ctx, service.WithdrawInput{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(1),
		Actor:        alice(),
	})
	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))

	_, err = ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(3),
		Actor:        alice(),
	})
	require.NoError(t, err)

	_, err = ledger.Withdraw(ctx, service.WithdrawInput{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(5),
		Actor:        alice(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "3", appErr.Details["available"])
	assert.Equal(t, "5", appErr.Details["requested"])
}

func TestRenameService_PropagateUsername(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.ResetTables(t)
	ctx := context.Background()

	testutil.SeedMaterial(t, suite.RawDB, "MAT-001", "Harina 25kg", "KG")
	testutil.SeedLocation(t, suite.RawDB, "A-01-01")

	ledger, stockRepo, movementRepo, _ := newTestLedger(t)

	_, err := ledger.Ingress(ctx, service.IngressInput{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     decimal.NewFromInt(10),
		Actor:        actor.Actor{Username: "old.name"},
	})
	require.NoError(t, err)

	rename := service.NewRenameService(suite.DB, stockRepo, movementRepo, suite.Logger)
	require.NoError(t, rename.PropagateUsername(ctx, "old.name", "new.name"))

	entries, err := stockRepo.ListByLocation(ctx, "A-01-01")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new.name", entries[0].Username)

	records, err := movementRepo.ListByUsername(ctx, "new.name")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Renaming to the same name is a no-op
	require.NoError(t, rename.PropagateUsername(ctx, "new.name", "new.name"))
}

func TestRenameService_RollsBackWhenHistoryUpdateFails(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	log := logger.New("test", "test")
	db := database.NewWithDB(mockDB.DB, log)
	rename := service.NewRenameService(db,
		repository.NewStockRepository(db),
		repository.NewMovementRepository(db),
		log,
	)

	mockDB.ExpectBegin()
	mockDB.ExpectExec(`UPDATE stock_ubicaciones SET username = $2, updated_at = NOW() WHERE username = $1`).
		WithArgs("old.name", "new.name").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mockDB.ExpectExec(`UPDATE historial_movimientos SET username = $2 WHERE username = $1`).
		WithArgs("old.name", "new.name").
		WillReturnError(assert.AnError)
	mockDB.ExpectRollback()

	err := rename.PropagateUsername(context.Background(), "old.name", "new.name")
	require.Error(t, err)
	mockDB.ExpectationsWereMet(t)
}
