package controller

import (
	"errors"

	"courseware_backend/internal/service"
	"courseware_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 将业务错误映射为 HTTP 状态码
func respondError(ctx *gin.Context, err error) {
	var (
		learnerErr  *service.LearnerEvaluationError
		scenarioErr *service.ScenarioEvaluationError
	)
	switch {
	case errors.Is(err, util.ErrIllegalArgument):
		util.BadRequest(ctx, err.Error())
	case util.IsNotFound(err):
		util.NotFound(ctx, err.Error())
	case errors.As(err, &learnerErr), errors.As(err, &scenarioErr):
		util.UnprocessableEntity(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
