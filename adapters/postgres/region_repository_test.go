package postgres

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"gokeyword/domain/core"
	"gokeyword/domain/region"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegionRepository(t *testing.T) (*regionRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewRegionRepository(sqlx.NewDb(db, "postgres"), "korean_regions").(*regionRepository)
	return repo, mock
}

func TestRegionRepositoryList(t *testing.T) {
	repo, mock := setupRegionRepository(t)

	rows := sqlmock.NewRows([]string{"id", "name", "level_1", "level_2", "level_3"}).
		AddRow(1, "강남구", "서울특별시", "강남구", "").
		AddRow(2, "서울", "서울특별시", "", "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM korean_regions ORDER BY id")).WillReturnRows(rows)

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, region.Record{ID: 1, Name: "강남구", Level1: "서울특별시", Level2: "강남구"}, records[0])
	assert.Equal(t, "서울", records[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegionRepositoryListMissingTable(t *testing.T) {
	repo, mock := setupRegionRepository(t)

	mock.ExpectQuery("SELECT").WillReturnError(&pq.Error{Code: "42P01", Message: `relation "korean_regions" does not exist`})

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsReferenceUnavailable(err))
}

func TestRegionRepositoryListOtherError(t *testing.T) {
	repo, mock := setupRegionRepository(t)

	mock.ExpectQuery("SELECT").WillReturnError(fmt.Errorf("connection reset"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.False(t, core.IsReferenceUnavailable(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRegionRepositoryReplaceAll(t *testing.T) {
	repo, mock := setupRegionRepository(t)

	records := []region.Record{
		{Name: "강남구", Level1: "서울특별시", Level2: "강남구"},
		{Name: "해운대구", Level1: "부산광역시", Level2: "해운대구", Level3: "우동"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("TRUNCATE TABLE korean_regions RESTART IDENTITY")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`COPY "korean_regions" ("name", "level_1", "level_2", "level_3") FROM STDIN`))
	prep.ExpectExec().WithArgs("강남구", "서울특별시", "강남구", "").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("해운대구", "부산광역시", "해운대구", "우동").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceAll(context.Background(), records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegionRepositoryReplaceAllRollsBack(t *testing.T) {
	repo, mock := setupRegionRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("TRUNCATE").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("COPY")
	prep.ExpectExec().WithArgs("A", "X", "", "").WillReturnError(fmt.Errorf("value too long"))
	mock.ExpectRollback()

	err := repo.ReplaceAll(context.Background(), []region.Record{{Name: "A", Level1: "X"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to copy region "A"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegionRepositoryCount(t *testing.T) {
	repo, mock := setupRegionRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM korean_regions")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
