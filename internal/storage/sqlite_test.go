package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alainbeyonder/aia-regenord/internal/common"
	"github.com/alainbeyonder/aia-regenord/internal/model"
)

func setupStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := setupStorage(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestActiveAccountsRequiresConnection(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	_, err := store.ActiveAccounts(ctx, "acme")
	assert.ErrorIs(t, err, common.ErrNoActiveConnection)

	require.NoError(t, store.LinkConnection(ctx, "acme", "quickbooks"))
	accounts, err := store.ActiveAccounts(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, accounts)

	require.NoError(t, store.DisconnectConnection(ctx, "acme"))
	_, err = store.ActiveAccounts(ctx, "acme")
	assert.ErrorIs(t, err, common.ErrNoActiveConnection)
}

func TestUpsertAccountsRoundTrip(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	require.NoError(t, store.LinkConnection(ctx, "acme", "quickbooks"))

	batch := []model.Account{
		{ExternalID: "1", DisplayName: "Sales of Product", NativeType: "Income", Active: true},
		{ExternalID: "2", DisplayName: "Office Rent", NativeType: "Expense", NativeSubtype: "Rent", Active: true},
		{ExternalID: "3", DisplayName: "Closed Account", NativeType: "Expense", Active: false},
	}
	require.NoError(t, store.UpsertAccounts(ctx, "acme", batch))

	accounts, err := store.ActiveAccounts(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	// Ordered by display name; inactive accounts are filtered out.
	assert.Equal(t, "Office Rent", accounts[0].DisplayName)
	assert.Equal(t, "Rent", accounts[0].NativeSubtype)
	assert.Equal(t, "Sales of Product", accounts[1].DisplayName)

	// Re-upserting the same external id updates in place.
	require.NoError(t, store.UpsertAccounts(ctx, "acme", []model.Account{
		{ExternalID: "2", DisplayName: "Office Rent - HQ", NativeType: "Expense", Active: true},
	}))
	accounts, err = store.ActiveAccounts(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Office Rent - HQ", accounts[0].DisplayName)

	// Companies are isolated.
	require.NoError(t, store.LinkConnection(ctx, "globex", "quickbooks"))
	accounts, err = store.ActiveAccounts(ctx, "globex")
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestUpsertAccountsValidation(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	err := store.UpsertAccounts(ctx, "acme", []model.Account{{DisplayName: "No ID"}})
	assert.ErrorIs(t, err, ErrInvalidAccount)

	err = store.UpsertAccounts(ctx, "", []model.Account{})
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestLatestSnapshotPrefersNewest(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	start, end := date(2024, time.January, 1), date(2024, time.March, 31)

	snapshot, err := store.LatestSnapshot(ctx, "acme", model.ReportTypeProfitAndLoss, start, end)
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	older := &model.ReportSnapshot{
		ReportType:  model.ReportTypeProfitAndLoss,
		PeriodStart: start,
		PeriodEnd:   end,
		RawJSON:     []byte(`{"Rows":{"Row":[]}}`),
		CreatedAt:   date(2024, time.April, 1),
	}
	newer := &model.ReportSnapshot{
		ReportType:  model.ReportTypeProfitAndLoss,
		PeriodStart: start,
		PeriodEnd:   end,
		RawJSON:     []byte(`{"Rows":{"Row":[{"ColData":[{"value":"Rent"},{"value":"100"}]}]}}`),
		CreatedAt:   date(2024, time.April, 2),
	}
	require.NoError(t, store.SaveSnapshot(ctx, "acme", older))
	require.NoError(t, store.SaveSnapshot(ctx, "acme", newer))

	snapshot, err = store.LatestSnapshot(ctx, "acme", model.ReportTypeProfitAndLoss, start, end)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, newer.RawJSON, snapshot.RawJSON)
	assert.True(t, snapshot.PeriodStart.Equal(start))

	// A narrower requested period excludes the stored snapshot.
	snapshot, err = store.LatestSnapshot(ctx, "acme", model.ReportTypeProfitAndLoss, start, date(2024, time.February, 29))
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	// Report types do not bleed into each other.
	snapshot, err = store.LatestSnapshot(ctx, "acme", model.ReportTypeBalanceSheet, start, end)
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestSaveSnapshotValidation(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	err := store.SaveSnapshot(ctx, "acme", &model.ReportSnapshot{ReportType: ""})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	err = store.SaveSnapshot(ctx, "acme", nil)
	assert.ErrorIs(t, err, ErrNilParameter)
}

func TestTransactionLinesRoundTrip(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	lines := []model.TransactionLine{
		{TxnID: "t1", TxnDate: date(2024, time.January, 15), AccountRef: "1", Amount: decimal.RequireFromString("1234.56"), Memo: "invoice"},
		{TxnID: "t2", TxnDate: date(2024, time.February, 3), AccountRef: "2", Amount: decimal.RequireFromString("-0.01")},
		{TxnID: "t3", TxnDate: date(2024, time.March, 9), AccountRef: "1", Amount: decimal.NewFromInt(50)},
	}
	require.NoError(t, store.SaveTransactionLines(ctx, "acme", lines))

	got, err := store.LinesInPeriod(ctx, "acme", date(2024, time.January, 1), date(2024, time.February, 29))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].TxnID)
	// Amounts survive storage without precision loss.
	assert.Equal(t, "1234.56", got[0].Amount.String())
	assert.Equal(t, "-0.01", got[1].Amount.String())

	// Re-importing a known transaction id replaces the line.
	require.NoError(t, store.SaveTransactionLines(ctx, "acme", []model.TransactionLine{
		{TxnID: "t1", TxnDate: date(2024, time.January, 15), AccountRef: "1", Amount: decimal.RequireFromString("1300")},
	}))
	got, err = store.LinesInPeriod(ctx, "acme", date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1300", got[0].Amount.String())
}

func TestSaveTransactionLinesValidation(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	err := store.SaveTransactionLines(ctx, "acme", []model.TransactionLine{{TxnID: ""}})
	assert.ErrorIs(t, err, ErrInvalidLine)

	err = store.SaveTransactionLines(ctx, "acme", nil)
	assert.ErrorIs(t, err, ErrNilParameter)
}
