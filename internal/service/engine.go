package service

// Stores are the persistence ports the reactive engine runs on.
type Stores struct {
	Scenarios  ScenarioLookup
	Attempts   AttemptStore
	Progresses ProgressStore
	Structure  StructureLookup
	Scopes     StudentScopeStore
	Competency CompetencyDocumentStore
	History    CoursewareHistoryRecorder
	Ancestry   AncestryResolver
	Records    EvaluationRecordStore
}

// Engine groups the services of the in-process evaluation backend.
type Engine struct {
	Pipeline   *EvaluationPipeline
	Test       *TestEvaluationService
	Pathway    *PathwayProgressService
	Activity   *ActivityProgressService
	Competency *CompetencyService
}

func NewEngine(s Stores, rollupMaxDepth int) *Engine {
	actions := NewActionResolver()
	scenarios := NewScenarioEvaluationService()
	competency := NewCompetencyService(s.Competency, rollupMaxDepth)

	pathway := NewPathwayProgressService(s.Structure, s.Progresses,
		NewLinearPathwayProgressService(s.Attempts, s.Progresses, s.Structure),
		NewFreePathwayProgressService(s.Attempts, s.Progresses, s.Structure),
		NewRandomPathwayProgressService(s.Attempts, s.Progresses, s.Structure),
		NewGraphPathwayProgressService(s.Attempts, s.Progresses, s.Structure, s.Scopes),
		NewBKTPathwayProgressService(s.Attempts, s.Progresses, s.Structure, competency),
	)
	activity := NewActivityProgressService(s.Attempts, s.Progresses, s.Structure, s.Scopes, s.History)

	return &Engine{
		Pipeline: NewEvaluationPipeline(
			NewLearnerEvaluationService(s.Scenarios, s.Scopes, scenarios),
			NewLearnerEvaluationResponseEnricher(s.Ancestry, s.Scopes, actions),
			actions,
			s.Scopes,
			s.Records,
			NewInteractiveProgressService(s.Attempts, s.Progresses, s.Scopes, s.History),
			activity,
			pathway,
		),
		Test:       NewTestEvaluationService(s.Scenarios, scenarios, actions),
		Pathway:    pathway,
		Activity:   activity,
		Competency: competency,
	}
}
