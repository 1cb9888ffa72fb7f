package controller

import (
	"context"
	"encoding/json"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ScopeWriter stores the data a student enters into a scope.
type ScopeWriter interface {
	SetEntry(ctx context.Context, deploymentID, studentID, scopeURN, sourceID string, data json.RawMessage) (*model.StudentScopeEntry, error)
	FindLatestEntries(ctx context.Context, deploymentID, studentID, scopeURN string) (map[string]json.RawMessage, error)
}

type ScopeController struct {
	scopes ScopeWriter
}

func NewScopeController(scopes ScopeWriter) *ScopeController {
	return &ScopeController{scopes: scopes}
}

type SetScopeEntryRequest struct {
	StudentID string          `json:"studentId" binding:"required"`
	ScopeURN  string          `json:"studentScopeURN" binding:"required"`
	SourceID  string          `json:"sourceId" binding:"required"`
	Data      json.RawMessage `json:"data" binding:"required"`
}

// SetEntry 写入学生作用域数据
func (c *ScopeController) SetEntry(ctx *gin.Context) {
	var req SetScopeEntryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !json.Valid(req.Data) {
		util.BadRequest(ctx, "data must be valid JSON")
		return
	}

	entry, err := c.scopes.SetEntry(ctx.Request.Context(), ctx.Param("deploymentId"), req.StudentID, req.ScopeURN, req.SourceID, req.Data)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entry)
}

// GetEntries 返回最新一代作用域数据
func (c *ScopeController) GetEntries(ctx *gin.Context) {
	studentID, urn := ctx.Query("studentId"), ctx.Query("studentScopeURN")
	if studentID == "" || urn == "" {
		util.BadRequest(ctx, "studentId and studentScopeURN are required")
		return
	}

	entries, err := c.scopes.FindLatestEntries(ctx.Request.Context(), ctx.Param("deploymentId"), studentID, urn)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
