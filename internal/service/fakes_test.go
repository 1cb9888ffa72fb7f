package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"
)

type fakeScenarios struct {
	mu        sync.Mutex
	scenarios map[string][]model.Scenario
}

func newFakeScenarios() *fakeScenarios {
	return &fakeScenarios{scenarios: map[string][]model.Scenario{}}
}

func (f *fakeScenarios) add(walkableID string, lifecycle model.ScenarioLifecycle, s ...model.Scenario) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := walkableID + "|" + string(lifecycle)
	f.scenarios[key] = append(f.scenarios[key], s...)
}

func (f *fakeScenarios) FindAll(_ context.Context, _, _, walkableID string, lifecycle model.ScenarioLifecycle) ([]model.Scenario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Scenario(nil), f.scenarios[walkableID+"|"+string(lifecycle)]...), nil
}

type fakeAttempts struct {
	mu       sync.Mutex
	attempts map[string]*model.Attempt
	created  []*model.Attempt
}

func newFakeAttempts() *fakeAttempts {
	return &fakeAttempts{attempts: map[string]*model.Attempt{}}
}

func (f *fakeAttempts) put(a *model.Attempt) *model.Attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[a.ID] = a
	return a
}

func (f *fakeAttempts) FindByID(_ context.Context, id string) (*model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrAttemptNotFound, id)
	}
	return a, nil
}

func (f *fakeAttempts) NewAttempt(_ context.Context, deploymentID, studentID string, elementType model.CoursewareElementType, elementID, parentAttemptID string, value int) (*model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &model.Attempt{
		TimeIDBase:            model.TimeIDBase{ID: model.NewTimeID()},
		ParentID:              parentAttemptID,
		DeploymentID:          deploymentID,
		CoursewareElementID:   elementID,
		StudentID:             studentID,
		CoursewareElementType: elementType,
		Value:                 value,
	}
	f.attempts[a.ID] = a
	f.created = append(f.created, a)
	return a, nil
}

func (f *fakeAttempts) FindLatestAttempt(_ context.Context, deploymentID, elementID, studentID string) (*model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.Attempt
	for _, a := range f.attempts {
		if a.DeploymentID != deploymentID || a.CoursewareElementID != elementID || a.StudentID != studentID {
			continue
		}
		if latest == nil || a.Value > latest.Value {
			latest = a
		}
	}
	if latest == nil {
		return nil, util.ErrAttemptNotFound
	}
	return latest, nil
}

type fakeProgresses struct {
	mu   sync.Mutex
	rows []*model.Progress
	// failFor makes Persist fail for rows of this element.
	failFor string
}

func (f *fakeProgresses) matching(deploymentID, elementID, studentID string) []*model.Progress {
	var out []*model.Progress
	for i := len(f.rows) - 1; i >= 0; i-- {
		p := f.rows[i]
		if p.DeploymentID == deploymentID && p.CoursewareElementID == elementID && p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeProgresses) FindLatest(_ context.Context, deploymentID, elementID, studentID string) (*model.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.matching(deploymentID, elementID, studentID)
	if len(rows) == 0 {
		return nil, util.ErrProgressNotFound
	}
	return rows[0], nil
}

func (f *fakeProgresses) FindLatestN(_ context.Context, deploymentID, elementID, studentID string, n int) ([]model.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Progress
	for _, p := range f.matching(deploymentID, elementID, studentID) {
		if len(out) == n {
			break
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProgresses) Persist(_ context.Context, p *model.Progress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor != "" && p.CoursewareElementID == f.failFor {
		return errors.New("progress store unavailable")
	}
	f.rows = append(f.rows, p)
	return nil
}

func (f *fakeProgresses) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeStructure struct {
	walkables     map[string][]model.CoursewareElement
	childPathways map[string][]model.LearnerPathway
	pathways      map[string]*model.LearnerPathway
}

func newFakeStructure() *fakeStructure {
	return &fakeStructure{
		walkables:     map[string][]model.CoursewareElement{},
		childPathways: map[string][]model.LearnerPathway{},
		pathways:      map[string]*model.LearnerPathway{},
	}
}

func (f *fakeStructure) addPathway(activityID string, p model.LearnerPathway, children ...model.CoursewareElement) {
	f.pathways[p.ID] = &p
	f.walkables[p.ID] = children
	if activityID != "" {
		f.childPathways[activityID] = append(f.childPathways[activityID], p)
	}
}

func (f *fakeStructure) FindWalkables(_ context.Context, pathwayID, _ string) ([]model.CoursewareElement, error) {
	return f.walkables[pathwayID], nil
}

func (f *fakeStructure) FindChildPathways(_ context.Context, activityID, _ string) ([]model.LearnerPathway, error) {
	return f.childPathways[activityID], nil
}

func (f *fakeStructure) FindPathway(_ context.Context, pathwayID, _ string) (*model.LearnerPathway, error) {
	p, ok := f.pathways[pathwayID]
	if !ok {
		return nil, util.ErrPathwayNotFound
	}
	return p, nil
}

type fakeScopes struct {
	mu      sync.Mutex
	entries map[string]map[string]json.RawMessage
	resets  []string
}

func newFakeScopes() *fakeScopes {
	return &fakeScopes{entries: map[string]map[string]json.RawMessage{}}
}

func (f *fakeScopes) set(scopeURN, sourceID, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries[scopeURN] == nil {
		f.entries[scopeURN] = map[string]json.RawMessage{}
	}
	f.entries[scopeURN][sourceID] = json.RawMessage(value)
}

func (f *fakeScopes) FindLatestEntries(_ context.Context, _, _, scopeURN string) (map[string]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]json.RawMessage{}
	for k, v := range f.entries[scopeURN] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeScopes) ResetScopesFor(_ context.Context, _, elementID, _ string) ([]model.StudentScope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, elementID)
	return nil, nil
}

type fakeCompetency struct {
	mu           sync.Mutex
	documents    map[string]*model.CompetencyDocument
	associations []model.ItemAssociation
	mets         []*model.CompetencyMet
}

func newFakeCompetency() *fakeCompetency {
	return &fakeCompetency{documents: map[string]*model.CompetencyDocument{}}
}

// childOf registers child IS_CHILD_OF parent.
func (f *fakeCompetency) childOf(documentID, child, parent string) {
	f.associations = append(f.associations, model.ItemAssociation{
		ID:                model.NewTimeID(),
		DocumentID:        documentID,
		OriginItemID:      parent,
		DestinationItemID: child,
		AssociationType:   model.AssociationIsChildOf,
	})
}

func (f *fakeCompetency) FindDocument(_ context.Context, id string) (*model.CompetencyDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.documents[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	return d, nil
}

func (f *fakeCompetency) FindAssociationsFrom(_ context.Context, originItemID string, t model.AssociationType) ([]model.ItemAssociation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ItemAssociation
	for _, a := range f.associations {
		if a.OriginItemID == originItemID && a.AssociationType == t {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeCompetency) FindAssociationsTo(_ context.Context, destinationItemID string, t model.AssociationType) ([]model.ItemAssociation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ItemAssociation
	for _, a := range f.associations {
		if a.DestinationItemID == destinationItemID && a.AssociationType == t {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeCompetency) FindLatest(_ context.Context, studentID, documentID, itemID string) (*model.CompetencyMet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.mets) - 1; i >= 0; i-- {
		m := f.mets[i]
		if m.StudentID == studentID && m.DocumentID == documentID && m.DocumentItemID == itemID {
			return m, nil
		}
	}
	return nil, util.ErrCompetencyNotFound
}

func (f *fakeCompetency) Create(_ context.Context, met *model.CompetencyMet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mets = append(f.mets, met)
	return nil
}

// latestValues returns the latest value per item.
func (f *fakeCompetency) latestValues() map[string]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]float64{}
	for _, m := range f.mets {
		out[m.DocumentItemID] = m.Value
	}
	return out
}

type historyEntry struct {
	elementID       string
	attemptID       string
	parentPathwayID string
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []historyEntry
}

func (f *fakeHistory) Record(_ context.Context, _ string, _ model.LearnerEvaluationRequest, element model.CoursewareElement, attemptID, parentPathwayID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, historyEntry{elementID: element.ElementID, attemptID: attemptID, parentPathwayID: parentPathwayID})
	return nil
}

func (f *fakeHistory) elements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.entries {
		out = append(out, e.elementID)
	}
	sort.Strings(out)
	return out
}

type fakeAncestry map[string][]model.CoursewareElement

func (f fakeAncestry) GetAncestry(_ context.Context, _, elementID string, _ model.CoursewareElementType) ([]model.CoursewareElement, error) {
	a, ok := f[elementID]
	if !ok {
		return nil, util.ErrParentNotFound
	}
	return a, nil
}

type fakeRecords struct {
	mu      sync.Mutex
	records []*model.EvaluationRecord
}

func (f *fakeRecords) Save(_ context.Context, r *model.EvaluationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, r)
	return nil
}

// scenario helpers

func literalCondition(result bool) []byte {
	return []byte(fmt.Sprintf(`{"type":"EVALUATOR","operator":"IS","operandType":"BOOLEAN",`+
		`"lhs":{"resolver":{"type":"LITERAL"},"value":%t},"rhs":{"resolver":{"type":"LITERAL"},"value":true}}`, result))
}

func scopeCondition(scopeURN, sourceID, path string, expected string) []byte {
	return []byte(fmt.Sprintf(`{"type":"EVALUATOR","operator":"EQUALS","operandType":"NUMBER",`+
		`"lhs":{"resolver":{"type":"SCOPE","studentScopeURN":%q,"sourceId":%q,"context":[%q]}},`+
		`"rhs":{"resolver":{"type":"LITERAL"},"value":%s}}`, scopeURN, sourceID, path, expected))
}

func progressActions(progression model.ProgressionType, target string, targetType model.CoursewareElementType) []byte {
	return []byte(fmt.Sprintf(`[{"action":"CHANGE_PROGRESS","resolver":{"type":"LITERAL"},`+
		`"context":{"progressionType":%q,"elementId":%q,"elementType":%q}}]`, progression, target, targetType))
}

func scenario(id string, condition []byte, correctness model.ScenarioCorrectness, actions []byte) model.Scenario {
	return model.Scenario{ID: id, Condition: condition, Correctness: correctness, Actions: actions}
}
