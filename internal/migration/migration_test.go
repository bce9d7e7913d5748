package migration

import (
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/smallbiznis/storeledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)

	versions := make([]string, 0, len(ups))
	for v := range ups {
		versions = append(versions, v)
		assert.True(t, downs[v], "missing down migration for %s", v)
	}
	sort.Strings(versions)
	assert.True(t, strings.HasPrefix(versions[0], "000001_"))
}

func TestApplyAutoMigratesSQLite(t *testing.T) {
	conn, err := db.OpenInMemory(t.Name())
	require.NoError(t, err)

	require.NoError(t, Apply(conn))
	for _, table := range []string{"accounts", "invoices", "invoice_sequences", "cashflow_days", "cashflow_transactions"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
	// Idempotent.
	require.NoError(t, Apply(conn))
}
