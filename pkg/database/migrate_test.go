package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbeddedInOrder(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_schema.sql", names[0])
}

func TestSchemaKeepsMembershipAndRSVPUnique(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/001_schema.sql")
	require.NoError(t, err)
	schema := string(raw)

	assert.Contains(t, schema, "UNIQUE (user_id, garden_id)")
	assert.Contains(t, schema, "PRIMARY KEY (event_id, user_id)")
	for _, table := range []string{"gardens", "discussions", "discussion_replies", "garden_members"} {
		section := schema[strings.Index(schema, "CREATE TABLE IF NOT EXISTS "+table+" "):]
		section = section[:strings.Index(section, ");")]
		assert.Contains(t, section, "is_active", table)
	}
}
