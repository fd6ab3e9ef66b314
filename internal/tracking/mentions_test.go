package tracking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractMentionNames(t *testing.T) {
	names := ExtractMentionNames("ping @[Jane Smith], also @[bob_2] and @[Jane Smith] again")
	require.Equal(t, []string{"Jane Smith", "bob_2"}, names)
}

func TestExtractMentionNames_NoTokens(t *testing.T) {
	require.Empty(t, ExtractMentionNames("plain text, jane@example.com, @bare"))
}

func TestResolveMentions_ExcludesAuthorAndDeduplicates(t *testing.T) {
	db := newTestDB(t)
	ResetMentionCache()
	author := seedUser(t, db, "Alice")
	jane := seedUser(t, db, "Jane Smith")

	users, err := ResolveMentions(db, "cc @[Jane Smith] and @[Jane Smith] and @[Alice]", author.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, jane.ID, users[0].ID)
}

func TestResolveMentions_UnknownNameResolvesNothing(t *testing.T) {
	db := newTestDB(t)
	ResetMentionCache()
	author := seedUser(t, db, "Alice")

	users, err := ResolveMentions(db, "hey @[Nobody Here]", author.ID)
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestResolveMentions_ServedFromCache(t *testing.T) {
	db := newTestDB(t)
	ResetMentionCache()
	author := seedUser(t, db, "Alice")
	jane := seedUser(t, db, "Jane Smith")

	users, err := ResolveMentions(db, "@[Jane Smith]", author.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)

	// Remove the row; the cached lookup still resolves until it expires.
	require.NoError(t, db.Unscoped().Delete(&jane).Error)
	users, err = ResolveMentions(db, "@[Jane Smith]", author.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
}
