package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var sentinelQuery = regexp.QuoteMeta("SELECT to_regclass($1) IS NOT NULL")

func TestEnsureMigrated_Skip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	core, logs := observer.New(zapcore.InfoLevel)

	mock.ExpectQuery(sentinelQuery).
		WithArgs(sentinelTable).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = EnsureMigrated(context.Background(), db, zap.New(core), "db")

	assert.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("db_migration_skip").Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_RunsAllSteps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	core, logs := observer.New(zapcore.InfoLevel)

	mock.ExpectQuery(sentinelQuery).
		WithArgs(sentinelTable).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for _, step := range steps {
		mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	err = EnsureMigrated(context.Background(), db, zap.New(core), "db")

	assert.NoError(t, err)
	assert.Equal(t, len(steps), logs.FilterMessage("db_migration_step").Len())
	assert.Equal(t, 1, logs.FilterMessage("db_migration_success").Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_StepFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	core, logs := observer.New(zapcore.InfoLevel)

	mock.ExpectQuery(sentinelQuery).
		WithArgs(sentinelTable).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("permission denied"))

	err = EnsureMigrated(context.Background(), db, zap.New(core), "db")

	assert.ErrorContains(t, err, "migration step create_table_reports failed: permission denied")
	failed := logs.FilterMessage("db_migration_failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "create_table_reports", failed[0].ContextMap()["migration_step"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_SentinelError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(sentinelQuery).
		WithArgs(sentinelTable).
		WillReturnError(errors.New("connection reset"))

	err = EnsureMigrated(context.Background(), db, zap.NewNop(), "db")

	assert.ErrorContains(t, err, "failed to check sentinel table")
	assert.NoError(t, mock.ExpectationsWereMet())
}
