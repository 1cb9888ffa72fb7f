package controller

import (
	"courseware_backend/internal/model"
	"courseware_backend/internal/service"
	"courseware_backend/internal/util"
	"fmt"

	"github.com/gin-gonic/gin"
)

type EvaluationController struct {
	evaluator service.Evaluator
	test      *service.TestEvaluationService
}

func NewEvaluationController(evaluator service.Evaluator, test *service.TestEvaluationService) *EvaluationController {
	return &EvaluationController{evaluator: evaluator, test: test}
}

func checkWalkable(walkable model.CoursewareElement) error {
	if walkable.ElementID == "" || !walkable.ElementType.IsWalkable() {
		return fmt.Errorf("%w: %s is not a walkable", util.ErrIllegalArgument, walkable.ElementType)
	}
	return nil
}

// Evaluate 评估学生在可学习元素上的提交
func (c *EvaluationController) Evaluate(ctx *gin.Context) {
	var req model.LearnerEvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := checkWalkable(req.Walkable); err != nil {
		respondError(ctx, err)
		return
	}

	outcome, err := c.evaluator.Process(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, outcome)
}

// EvaluateTest 使用测试数据评估场景
func (c *EvaluationController) EvaluateTest(ctx *gin.Context) {
	var req service.TestEvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := checkWalkable(req.Walkable); err != nil {
		respondError(ctx, err)
		return
	}

	resp, err := c.test.Evaluate(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}
