package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentScopeRepository_Entries(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentScopeRepository(newTestDB(t))

	entries, err := repo.FindLatestEntries(ctx, "dep-1", "student-1", "urn:screen-1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = repo.SetEntry(ctx, "dep-1", "student-1", "urn:screen-1", "cmp-1", json.RawMessage(`{"selection":1}`))
	require.NoError(t, err)
	_, err = repo.SetEntry(ctx, "dep-1", "student-1", "urn:screen-1", "cmp-1", json.RawMessage(`{"selection":2}`))
	require.NoError(t, err)
	_, err = repo.SetEntry(ctx, "dep-1", "student-1", "urn:screen-1", "cmp-2", json.RawMessage(`{"text":"hi"}`))
	require.NoError(t, err)

	entries, err = repo.FindLatestEntries(ctx, "dep-1", "student-1", "urn:screen-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.JSONEq(t, `{"selection":2}`, string(entries["cmp-1"]))
	assert.JSONEq(t, `{"text":"hi"}`, string(entries["cmp-2"]))
}

func TestStudentScopeRepository_ResetScopesFor(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedCourseware(t, db)
	repo := NewStudentScopeRepository(db)

	for _, urn := range []string{"urn:screen-1", "urn:screen-3"} {
		_, err := repo.SetEntry(ctx, "dep-1", "student-1", urn, "cmp-1", json.RawMessage(`{"v":1}`))
		require.NoError(t, err)
	}

	created, err := repo.ResetScopesFor(ctx, "dep-1", "act-2", "student-1")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "urn:screen-3", created[0].ScopeURN)
	assert.Equal(t, "screen-3", created[0].ElementID)

	reset, err := repo.FindLatestEntries(ctx, "dep-1", "student-1", "urn:screen-3")
	require.NoError(t, err)
	assert.Empty(t, reset)

	kept, err := repo.FindLatestEntries(ctx, "dep-1", "student-1", "urn:screen-1")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
