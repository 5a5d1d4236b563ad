package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dukerupert/dutyroster/internal/database"
	"github.com/dukerupert/dutyroster/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedStudents(t *testing.T, ss *StudentStore, students ...model.Student) {
	t.Helper()
	for _, s := range students {
		if err := ss.Upsert(context.Background(), s); err != nil {
			t.Fatalf("seed student: %v", err)
		}
	}
}

func seedChores(t *testing.T, cs *ChoreStore, chores ...model.ChoreDefinition) {
	t.Helper()
	for _, c := range chores {
		if err := cs.Upsert(context.Background(), c); err != nil {
			t.Fatalf("seed chore: %v", err)
		}
	}
}
