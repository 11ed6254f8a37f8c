package bookings

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockArchive(t *testing.T) (*PostgresArchive, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresArchive(db), mock
}

func TestPostgresArchiveEnsureSchema(t *testing.T) {
	archive, mock := newMockArchive(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS bookings")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, archive.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresArchiveInsert(t *testing.T) {
	archive, mock := newMockArchive(t)
	rec := testRecord("11111111-2222-3333-4444-555555555555", "Ana")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(rec.ID, rec.Name, rec.Phone, rec.ScheduledFor, rec.Sender, rec.RecordedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, archive.Insert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresArchiveList(t *testing.T) {
	archive, mock := newMockArchive(t)
	recordedAt := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "name", "phone", "scheduled_for", "sender", "recorded_at"}).
		AddRow("b", "Bruno", "11911110000", "terça 14h", "b@s.whatsapp.net", recordedAt).
		AddRow("a", "Ana", "11999999999", "segunda às 10h", "a@s.whatsapp.net", recordedAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(10).
		WillReturnRows(rows)

	records, err := archive.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Bruno", records[0].Name)
	assert.Equal(t, "Ana", records[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresArchiveNilReceiverIsNoop(t *testing.T) {
	var archive *PostgresArchive
	ctx := context.Background()

	assert.NoError(t, archive.EnsureSchema(ctx))
	assert.NoError(t, archive.Insert(ctx, testRecord("a", "Ana")))

	records, err := archive.List(ctx, 10)
	assert.NoError(t, err)
	assert.Nil(t, records)
}

func TestNewPostgresArchiveNilDB(t *testing.T) {
	assert.Nil(t, NewPostgresArchive(nil))
}
