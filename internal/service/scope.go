package service

import (
	"context"
	"encoding/json"
)

// studentScope serves SCOPE operands from a student's latest scope entries,
// loading each scope URN at most once per evaluation.
type studentScope struct {
	store        StudentScopeStore
	deploymentID string
	studentID    string
	loaded       map[string]map[string]json.RawMessage
}

func newStudentScope(store StudentScopeStore, deploymentID, studentID string) *studentScope {
	return &studentScope{
		store:        store,
		deploymentID: deploymentID,
		studentID:    studentID,
		loaded:       make(map[string]map[string]json.RawMessage),
	}
}

// preload seeds the entries already fetched for scopeURN.
func (s *studentScope) preload(scopeURN string, entries map[string]json.RawMessage) {
	if entries == nil {
		entries = map[string]json.RawMessage{}
	}
	s.loaded[scopeURN] = entries
}

func (s *studentScope) Entry(ctx context.Context, scopeURN, sourceID string) (json.RawMessage, bool, error) {
	entries, ok := s.loaded[scopeURN]
	if !ok {
		var err error
		entries, err = s.store.FindLatestEntries(ctx, s.deploymentID, s.studentID, scopeURN)
		if err != nil {
			return nil, false, err
		}
		s.preload(scopeURN, entries)
	}
	v, ok := entries[sourceID]
	return v, ok, nil
}

// testScope serves SCOPE operands from caller supplied data, keyed by
// source id regardless of scope URN.
type testScope map[string]json.RawMessage

func (s testScope) Entry(_ context.Context, _ string, sourceID string) (json.RawMessage, bool, error) {
	v, ok := s[sourceID]
	return v, ok, nil
}
