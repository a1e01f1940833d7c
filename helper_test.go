package relay_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/nineoclock/relay"
	rsql "github.com/nineoclock/relay/sql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

func newTestEngine(t *testing.T) *relay.Engine {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", "file::memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	ctx := context.Background()
	if err := rsql.InitDB(ctx, db); err != nil {
		t.Fatal(err)
	}
	store := rsql.NewStore(db)
	return relay.NewEngine(store, nil, nil, nil)
}
