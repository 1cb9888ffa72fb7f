package controller

import (
	"courseware_backend/internal/service"
	"courseware_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	progresses service.ProgressStore
}

func NewProgressController(progresses service.ProgressStore) *ProgressController {
	return &ProgressController{progresses: progresses}
}

// GetProgress 获取学生在课件元素上的最新进度
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	studentID := ctx.Query("studentId")
	if studentID == "" {
		util.BadRequest(ctx, "studentId is required")
		return
	}

	progress, err := c.progresses.FindLatest(ctx.Request.Context(), ctx.Param("deploymentId"), ctx.Param("elementId"), studentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
