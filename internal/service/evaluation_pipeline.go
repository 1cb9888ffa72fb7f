package service

import (
	"context"
	"fmt"
	"time"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"
	"courseware_backend/pkg/logger"
	"courseware_backend/pkg/monitoring"
	"courseware_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// EvaluationOutcome is the result of one evaluation pass.
type EvaluationOutcome struct {
	Response         *model.LearnerEvaluationResponse `json:"response"`
	Actions          []model.Action                   `json:"actions"`
	WalkableComplete bool                             `json:"walkableComplete"`
	Progresses       []*model.Progress                `json:"progresses"`
}

// EvaluationPipeline evaluates a walkable and propagates the resulting
// progress up its ancestry.
type EvaluationPipeline struct {
	evaluator   *LearnerEvaluationService
	enricher    *LearnerEvaluationResponseEnricher
	actions     *ActionResolver
	scopes      StudentScopeStore
	records     EvaluationRecordStore
	interactive *InteractiveProgressService
	activity    *ActivityProgressService
	pathway     *PathwayProgressService
}

func NewEvaluationPipeline(
	evaluator *LearnerEvaluationService,
	enricher *LearnerEvaluationResponseEnricher,
	actions *ActionResolver,
	scopes StudentScopeStore,
	records EvaluationRecordStore,
	interactive *InteractiveProgressService,
	activity *ActivityProgressService,
	pathway *PathwayProgressService,
) *EvaluationPipeline {
	return &EvaluationPipeline{
		evaluator:   evaluator,
		enricher:    enricher,
		actions:     actions,
		scopes:      scopes,
		records:     records,
		interactive: interactive,
		activity:    activity,
		pathway:     pathway,
	}
}

func (p *EvaluationPipeline) Process(ctx context.Context, req model.LearnerEvaluationRequest) (*EvaluationOutcome, error) {
	start := time.Now()
	walkableType := string(req.Walkable.ElementType)
	ctx, span := tracing.Tracer.Start(ctx, "evaluation.process")
	defer span.End()
	span.SetAttributes(
		attribute.String("walkable.id", req.Walkable.ElementID),
		attribute.String("walkable.type", walkableType),
		attribute.String("student.id", req.StudentID),
	)

	outcome, err := p.process(ctx, req)
	monitoring.EvaluationDuration.WithLabelValues(walkableType).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		monitoring.EvaluationCounter.WithLabelValues(walkableType, "failed").Inc()
		return nil, err
	}
	monitoring.EvaluationCounter.WithLabelValues(walkableType, "ok").Inc()
	return outcome, nil
}

func (p *EvaluationPipeline) process(ctx context.Context, req model.LearnerEvaluationRequest) (*EvaluationOutcome, error) {
	// 1. 评估场景，失败则整体中止
	resp, err := p.evaluator.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	// 2. 补充动作、祖先链和作用域
	rc := NewResponseContext(resp)
	if err := p.enricher.Enrich(ctx, rc); err != nil {
		return nil, err
	}

	// 3. 审计记录
	record := &model.EvaluationRecord{
		ID:               rc.EvaluationID(),
		DeploymentID:     resp.Request.DeploymentID,
		StudentID:        resp.Request.StudentID,
		ChangeID:         resp.Request.ChangeID,
		ElementID:        resp.Request.Walkable.ElementID,
		ElementType:      resp.Request.Walkable.ElementType,
		AttemptID:        resp.Request.AttemptID,
		Mode:             resp.Request.Mode,
		Results:          resp.ScenarioEvaluationResults,
		WalkableComplete: rc.WalkableComplete,
	}
	if err := p.records.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("save evaluation record: %w", err)
	}

	// 4. 自底向上传播进度
	if rc.ActionState.Action != nil {
		if err := p.propagate(ctx, rc); err != nil {
			return nil, err
		}
	}

	return &EvaluationOutcome{
		Response:         resp,
		Actions:          rc.Actions,
		WalkableComplete: rc.WalkableComplete,
		Progresses:       rc.Progresses,
	}, nil
}

// propagate updates each ancestor in turn. A level only starts once the
// level below it has been persisted.
func (p *EvaluationPipeline) propagate(ctx context.Context, rc *ResponseContext) error {
	for _, element := range rc.Ancestry {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.updateLevel(ctx, element, rc); err != nil {
			logger.Log.Error("Progress propagation stopped",
				zap.String("evaluationId", rc.EvaluationID()),
				zap.String("elementId", element.ElementID),
				zap.String("elementType", string(element.ElementType)),
				zap.Error(err))
			return err
		}
	}
	return nil
}

func (p *EvaluationPipeline) updateLevel(ctx context.Context, element model.CoursewareElement, rc *ResponseContext) error {
	ctx, span := tracing.Tracer.Start(ctx, "evaluation.progress")
	defer span.End()
	span.SetAttributes(
		attribute.String("element.id", element.ElementID),
		attribute.String("element.type", string(element.ElementType)),
	)

	var (
		progress *model.Progress
		err      error
	)
	switch element.ElementType {
	case model.ElementInteractive:
		progress, err = p.interactive.UpdateProgress(ctx, element, rc)
	case model.ElementPathway:
		progress, err = p.pathway.UpdateProgress(ctx, element, rc)
	case model.ElementActivity:
		var res *ActivityProgressResult
		res, err = p.activity.UpdateProgress(ctx, element, rc)
		if err == nil {
			progress = res.Progress
			p.addProgress(rc, progress)
			if res.JustCompleted {
				return p.activityCompleted(ctx, element, rc)
			}
			return nil
		}
	default:
		err = fmt.Errorf("%w: %s", util.ErrUnsupportedElementType, element.ElementType)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	p.addProgress(rc, progress)
	return nil
}

func (p *EvaluationPipeline) addProgress(rc *ResponseContext, progress *model.Progress) {
	rc.AddProgress(progress)
	monitoring.ProgressCounter.WithLabelValues(string(progress.Kind)).Inc()
}

// activityCompleted evaluates the ACTIVITY_COMPLETE scenarios of a freshly
// completed activity. A progress action it triggers drives the levels
// above the activity instead of the original one.
func (p *EvaluationPipeline) activityCompleted(ctx context.Context, element model.CoursewareElement, rc *ResponseContext) error {
	req := rc.Request()
	latest, _ := rc.LatestProgress()
	resp, err := p.evaluator.Evaluate(ctx, model.LearnerEvaluationRequest{
		DeploymentID: req.DeploymentID,
		ChangeID:     req.ChangeID,
		Walkable:     element,
		StudentID:    req.StudentID,
		AttemptID:    latest.AttemptID,
		Lifecycle:    model.LifecycleActivityComplete,
		Mode:         model.EvaluationDefault,
	})
	if err != nil {
		return err
	}

	scope := newStudentScope(p.scopes, req.DeploymentID, req.StudentID)
	actions, err := p.actions.Resolve(ctx, resp.ScenarioEvaluationResults, scope)
	if err != nil {
		return fmt.Errorf("resolve activity complete actions: %w", err)
	}
	rc.Actions = append(rc.Actions, actions...)

	action := FirstProgressAction(actions)
	if action == nil {
		return nil
	}
	rc.ActionState = EvaluationActionState{Action: action, Evaluated: element}
	if action.Context.ProgressionType.IsRepeat() {
		res, err := p.activity.UpdateProgress(ctx, element, rc)
		if err != nil {
			return err
		}
		p.addProgress(rc, res.Progress)
	}
	return nil
}
