package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func TestMySQLGet(t *testing.T) {
	it(func() {
		testCases := []struct {
			name      string
			rows      *sqlmock.Rows
			queryErr  error
			wantValue string
			wantFound bool
			wantErr   bool
		}{
			{
				name:      "Present",
				rows:      sqlmock.NewRows([]string{"v"}).AddRow(`{"username":"alice"}`),
				wantValue: `{"username":"alice"}`,
				wantFound: true,
			}, {
				name: "Absent",
				rows: sqlmock.NewRows([]string{"v"}),
			}, {
				name:     "Failure",
				queryErr: errors.New("connection reset"),
				wantErr:  true,
			},
		}

		for _, testCase := range testCases {
			setUp()
			q := mock.ExpectQuery("SELECT v FROM kv_store WHERE k = (.+)").WithArgs(KeyUser)
			if testCase.queryErr != nil {
				q.WillReturnError(testCase.queryErr)
			} else {
				q.WillReturnRows(testCase.rows)
			}

			v, found, err := NewMySQL(db).Get(context.Background(), KeyUser)
			if testCase.wantErr != (err != nil) {
				t.Errorf("%s: expected error: %v, got error: %v", testCase.name, testCase.wantErr, err)
			}
			if v != testCase.wantValue || found != testCase.wantFound {
				t.Errorf("%s: got (%q, %v), want (%q, %v)", testCase.name, v, found, testCase.wantValue, testCase.wantFound)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("%s: %v", testCase.name, err)
			}
		}
	})
}

func TestMySQLSetAndRemove(t *testing.T) {
	it(func() {
		mock.ExpectExec("INSERT INTO kv_store \\(k, v\\) VALUES \\((.+), (.+)\\)\\s+ON DUPLICATE KEY UPDATE v = (.+)").
			WithArgs(KeyReports, "[]", "[]").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM kv_store WHERE k = (.+)").
			WithArgs(KeyReports).
			WillReturnResult(sqlmock.NewResult(0, 1))

		m := NewMySQL(db)
		if err := m.Set(context.Background(), KeyReports, "[]"); err != nil {
			t.Errorf("Set: %v", err)
		}
		if err := m.Remove(context.Background(), KeyReports); err != nil {
			t.Errorf("Remove: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestMySQLEnsureSchema(t *testing.T) {
	it(func() {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_store").
			WillReturnResult(sqlmock.NewResult(0, 0))
		if err := NewMySQL(db).EnsureSchema(context.Background()); err != nil {
			t.Errorf("EnsureSchema: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}
