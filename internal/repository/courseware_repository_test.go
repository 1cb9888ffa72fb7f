package repository

import (
	"context"
	"testing"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoursewareRepository_FindWalkables(t *testing.T) {
	db := newTestDB(t)
	seedCourseware(t, db)
	repo := NewCoursewareRepository(db)

	walkables, err := repo.FindWalkables(context.Background(), "path-1", "dep-1")
	require.NoError(t, err)
	assert.Equal(t, []model.CoursewareElement{
		model.NewElement("screen-1", model.ElementInteractive),
		model.NewElement("screen-2", model.ElementInteractive),
		model.NewElement("act-2", model.ElementActivity),
	}, walkables)

	other, err := repo.FindWalkables(context.Background(), "path-1", "dep-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCoursewareRepository_FindPathway(t *testing.T) {
	db := newTestDB(t)
	seedCourseware(t, db)
	repo := NewCoursewareRepository(db)

	p, err := repo.FindPathway(context.Background(), "path-2", "dep-1")
	require.NoError(t, err)
	assert.Equal(t, model.PathwayRandom, p.Type)
	assert.Equal(t, 1, p.Config.ExitAfter)

	_, err = repo.FindPathway(context.Background(), "screen-1", "dep-1")
	assert.ErrorIs(t, err, util.ErrPathwayNotFound)

	children, err := repo.FindChildPathways(context.Background(), "act-2", "dep-1")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "path-2", children[0].ID)
}

func TestCoursewareRepository_FindSubtree(t *testing.T) {
	db := newTestDB(t)
	seedCourseware(t, db)

	nodes, err := NewCoursewareRepository(db).FindSubtree(context.Background(), "dep-1", "act-2")
	require.NoError(t, err)
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ElementID)
	}
	assert.Equal(t, []string{"act-2", "path-2", "screen-3"}, ids)

	_, err = NewCoursewareRepository(db).FindSubtree(context.Background(), "dep-1", "missing")
	assert.True(t, util.IsNotFound(err))
}

func TestAncestryRepository_GetAncestry(t *testing.T) {
	db := newTestDB(t)
	seedCourseware(t, db)
	repo := NewAncestryRepository(db, nil, 0)

	tests := []struct {
		name      string
		elementID string
		elemType  model.CoursewareElementType
		want      []string
	}{
		{"root", "act-1", model.ElementActivity, []string{"act-1"}},
		{"screen", "screen-1", model.ElementInteractive, []string{"screen-1", "path-1", "act-1"}},
		{"nested", "screen-3", model.ElementInteractive, []string{"screen-3", "path-2", "act-2", "path-1", "act-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ancestry, err := repo.GetAncestry(context.Background(), "dep-1", tt.elementID, tt.elemType)
			require.NoError(t, err)
			ids := make([]string, 0, len(ancestry))
			for _, e := range ancestry {
				ids = append(ids, e.ElementID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, tt.elemType, ancestry[0].ElementType)
		})
	}
}

func TestAncestryRepository_MissingParent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, NewCoursewareRepository(db).Create(context.Background(),
		node("orphan", model.ElementInteractive, "gone", 0)))
	repo := NewAncestryRepository(db, nil, 0)

	_, err := repo.GetAncestry(context.Background(), "dep-1", "orphan", model.ElementInteractive)
	assert.ErrorIs(t, err, util.ErrParentNotFound)

	_, err = repo.GetAncestry(context.Background(), "dep-1", "nothing", model.ElementInteractive)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
