package repository

import (
	"context"
	"testing"

	"courseware_backend/internal/model"
	"courseware_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库每个连接独立, 固定为单连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func node(id string, t model.CoursewareElementType, parent string, pos int) *model.CoursewareNode {
	return &model.CoursewareNode{
		DeploymentID: "dep-1",
		ChangeID:     "change-1",
		ElementID:    id,
		ElementType:  t,
		ParentID:     parent,
		Position:     pos,
	}
}

func pathwayNode(id, parent string, pt model.PathwayType, cfg model.PathwayConfig) *model.CoursewareNode {
	n := node(id, model.ElementPathway, parent, 0)
	n.PathwayType = pt
	n.Config = datatypes.NewJSONType(cfg)
	return n
}

// seedCourseware creates act-1 > path-1 > (screen-1, screen-2, act-2 > path-2 > screen-3).
func seedCourseware(t *testing.T, db *gorm.DB) {
	t.Helper()
	screen1 := node("screen-1", model.ElementInteractive, "path-1", 0)
	screen1.StudentScopeURN = "urn:screen-1"
	screen3 := node("screen-3", model.ElementInteractive, "path-2", 0)
	screen3.StudentScopeURN = "urn:screen-3"

	require.NoError(t, NewCoursewareRepository(db).Create(context.Background(),
		node("act-1", model.ElementActivity, "", 0),
		pathwayNode("path-1", "act-1", model.PathwayLinear, model.PathwayConfig{}),
		node("screen-2", model.ElementInteractive, "path-1", 1),
		screen1,
		node("cmp-1", model.ElementComponent, "screen-1", 0),
		node("act-2", model.ElementActivity, "path-1", 2),
		pathwayNode("path-2", "act-2", model.PathwayRandom, model.PathwayConfig{ExitAfter: 1}),
		screen3,
	))
}
