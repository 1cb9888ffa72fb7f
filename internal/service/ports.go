package service

import (
	"context"
	"encoding/json"

	"courseware_backend/internal/model"
)

// The engine reads and writes through these interfaces; the gorm
// repositories implement them and tests use in-memory fakes.

type ScenarioLookup interface {
	// FindAll returns the scenarios of a walkable in configured order.
	FindAll(ctx context.Context, deploymentID, changeID, walkableID string, lifecycle model.ScenarioLifecycle) ([]model.Scenario, error)
}

type AttemptStore interface {
	FindByID(ctx context.Context, id string) (*model.Attempt, error)
	NewAttempt(ctx context.Context, deploymentID, studentID string, elementType model.CoursewareElementType, elementID, parentAttemptID string, value int) (*model.Attempt, error)
	// FindLatestAttempt fails with util.ErrAttemptNotFound when absent.
	FindLatestAttempt(ctx context.Context, deploymentID, elementID, studentID string) (*model.Attempt, error)
}

type ProgressStore interface {
	// FindLatest fails with util.ErrProgressNotFound when absent.
	FindLatest(ctx context.Context, deploymentID, elementID, studentID string) (*model.Progress, error)
	// FindLatestN returns up to n progresses, newest first.
	FindLatestN(ctx context.Context, deploymentID, elementID, studentID string, n int) ([]model.Progress, error)
	Persist(ctx context.Context, progress *model.Progress) error
}

type StructureLookup interface {
	FindWalkables(ctx context.Context, pathwayID, deploymentID string) ([]model.CoursewareElement, error)
	FindChildPathways(ctx context.Context, activityID, deploymentID string) ([]model.LearnerPathway, error)
	FindPathway(ctx context.Context, pathwayID, deploymentID string) (*model.LearnerPathway, error)
}

type StudentScopeStore interface {
	FindLatestEntries(ctx context.Context, deploymentID, studentID, scopeURN string) (map[string]json.RawMessage, error)
	// ResetScopesFor starts a fresh scope generation for the element and
	// every element below it.
	ResetScopesFor(ctx context.Context, deploymentID, elementID, studentID string) ([]model.StudentScope, error)
}

type CompetencyDocumentStore interface {
	FindDocument(ctx context.Context, id string) (*model.CompetencyDocument, error)
	FindAssociationsFrom(ctx context.Context, originItemID string, associationType model.AssociationType) ([]model.ItemAssociation, error)
	FindAssociationsTo(ctx context.Context, destinationItemID string, associationType model.AssociationType) ([]model.ItemAssociation, error)
	// FindLatest fails with util.ErrCompetencyNotFound when the student has
	// no record for the item.
	FindLatest(ctx context.Context, studentID, documentID, itemID string) (*model.CompetencyMet, error)
	Create(ctx context.Context, met *model.CompetencyMet) error
}

type CoursewareHistoryRecorder interface {
	Record(ctx context.Context, evaluationID string, request model.LearnerEvaluationRequest, element model.CoursewareElement, attemptID, parentPathwayID string) error
}

type AncestryResolver interface {
	// GetAncestry returns the element followed by its parents up to the
	// root activity.
	GetAncestry(ctx context.Context, deploymentID, elementID string, elementType model.CoursewareElementType) ([]model.CoursewareElement, error)
}

type EvaluationRecordStore interface {
	Save(ctx context.Context, record *model.EvaluationRecord) error
}
