// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"testing"

	"github.com/danielhkuo/squid-demos/cliparse"
	"github.com/danielhkuo/squid-demos/game"
	"github.com/danielhkuo/squid-demos/live"
	"github.com/danielhkuo/squid-demos/testutil"
)

type testEnv struct {
	db    *sql.DB
	store *game.Store
	hub   *live.Hub
	cfg   cliparse.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return &testEnv{
		db:    db,
		store: game.New(db),
		hub:   live.NewHub(),
		cfg:   testutil.GetTestConfig(),
	}
}
