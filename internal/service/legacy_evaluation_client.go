package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"courseware_backend/internal/model"
)

// LegacyEvaluationClient forwards evaluations to the previous evaluation
// backend over HTTP.
type LegacyEvaluationClient struct {
	baseURL string
	client  *http.Client
}

func NewLegacyEvaluationClient(baseURL string, timeout time.Duration) *LegacyEvaluationClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LegacyEvaluationClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *LegacyEvaluationClient) Process(ctx context.Context, req model.LearnerEvaluationRequest) (*EvaluationOutcome, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("legacy evaluation backend is not configured")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/evaluations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("legacy evaluation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("legacy evaluation returned %d: %s", resp.StatusCode, string(msg))
	}

	// 兼容 {code,message,data} 包装
	var envelope struct {
		Data *legacyOutcome `json:"data"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data.outcome()
	}
	var out legacyOutcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode legacy evaluation: %w", err)
	}
	return out.outcome()
}

// legacyOutcome keeps actions in their stored form until decoded.
type legacyOutcome struct {
	Response         *model.LearnerEvaluationResponse `json:"response"`
	Actions          json.RawMessage                  `json:"actions"`
	WalkableComplete bool                             `json:"walkableComplete"`
	Progresses       []*model.Progress                `json:"progresses"`
}

func (o legacyOutcome) outcome() (*EvaluationOutcome, error) {
	actions, err := DeserializeActions(o.Actions)
	if err != nil {
		return nil, err
	}
	return &EvaluationOutcome{
		Response:         o.Response,
		Actions:          actions,
		WalkableComplete: o.WalkableComplete,
		Progresses:       o.Progresses,
	}, nil
}
