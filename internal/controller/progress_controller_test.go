package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressMap map[string]*model.Progress

func (m progressMap) FindLatest(_ context.Context, _, elementID, studentID string) (*model.Progress, error) {
	if p, ok := m[elementID+"/"+studentID]; ok {
		return p, nil
	}
	return nil, util.ErrProgressNotFound
}

func (m progressMap) FindLatestN(context.Context, string, string, string, int) ([]model.Progress, error) {
	return nil, nil
}

func (m progressMap) Persist(context.Context, *model.Progress) error { return nil }

func TestProgressController_GetProgress(t *testing.T) {
	store := progressMap{"path-1/student-1": {
		ID:                  "p-1",
		CoursewareElementID: "path-1",
		Completion:          model.NewCompletion(0.5, 0.5),
	}}
	r := gin.New()
	r.GET("/api/deployments/:deploymentId/elements/:elementId/progress", NewProgressController(store).GetProgress)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/api/deployments/dep-1/elements/path-1/progress?studentId=student-1", http.StatusOK},
		{"no progress", "/api/deployments/dep-1/elements/path-1/progress?studentId=student-2", http.StatusNotFound},
		{"no student", "/api/deployments/dep-1/elements/path-1/progress", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tests[0].path, nil))
	var resp struct {
		Data model.Progress `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "p-1", resp.Data.ID)
	assert.Equal(t, 0.5, resp.Data.Completion.Value)
}
