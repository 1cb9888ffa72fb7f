package model

// Completion is a student's completion of an element, both fields in [0,1].
type Completion struct {
	Value      float64 `gorm:"column:value" json:"value"`
	Confidence float64 `gorm:"column:confidence" json:"confidence"`
}

// NewCompletion builds a completion clamped to [0,1].
func NewCompletion(value, confidence float64) Completion {
	return Completion{Value: clamp(value, 1), Confidence: clamp(confidence, 1)}
}

// Capped returns the completion clamped to [0,max].
func (c Completion) Capped(max float64) Completion {
	return Completion{Value: clamp(c.Value, max), Confidence: clamp(c.Confidence, max)}
}

func (c Completion) IsCompleted() bool {
	return c.Value == 1.0
}

func clamp(v, max float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
