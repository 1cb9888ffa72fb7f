package controller

import (
	"context"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CompetencyReader interface {
	FindDocument(ctx context.Context, id string) (*model.CompetencyDocument, error)
	FindByStudent(ctx context.Context, studentID, documentID string) ([]model.CompetencyMet, error)
}

type CompetencyController struct {
	competencies CompetencyReader
}

func NewCompetencyController(competencies CompetencyReader) *CompetencyController {
	return &CompetencyController{competencies: competencies}
}

// GetStudentCompetencies 获取学生在能力文档上的掌握度
func (c *CompetencyController) GetStudentCompetencies(ctx *gin.Context) {
	studentID := ctx.Query("studentId")
	if studentID == "" {
		util.BadRequest(ctx, "studentId is required")
		return
	}
	documentID := ctx.Param("documentId")

	if _, err := c.competencies.FindDocument(ctx.Request.Context(), documentID); err != nil {
		respondError(ctx, err)
		return
	}
	mets, err := c.competencies.FindByStudent(ctx.Request.Context(), studentID, documentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"documentId": documentID, "studentId": studentID, "items": mets})
}
