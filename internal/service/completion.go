package service

import (
	"math"

	"courseware_backend/internal/model"
)

// graphCompletionCap is the most a graph pathway reaches by aggregation;
// only an explicit pathway-complete action takes it to 1.
const graphCompletionCap = 0.95

// mergeCompletionValues keeps previous values only for children still in
// the structure and overwrites the child whose progress just arrived.
func mergeCompletionValues(previous map[string]float64, children []model.CoursewareElement, childID string, childValue float64) map[string]float64 {
	merged := make(map[string]float64, len(children))
	for _, c := range children {
		if v, ok := previous[c.ElementID]; ok {
			merged[c.ElementID] = v
		}
	}
	merged[childID] = childValue
	return merged
}

// buildCompletedItems lists, in structural order, the current children
// whose completion value is exactly 1.
func buildCompletedItems(values map[string]float64, children []model.CoursewareElement) []string {
	completed := make([]string, 0, len(children))
	for _, c := range children {
		if v, ok := values[c.ElementID]; ok && v == 1.0 {
			completed = append(completed, c.ElementID)
		}
	}
	return completed
}

func sum(values map[string]float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// aggregate divides the summed child completions by divisor.
func aggregate(values, confidences map[string]float64, divisor int) model.Completion {
	if divisor <= 0 {
		return model.NewCompletion(0, 0)
	}
	return model.NewCompletion(sum(values)/float64(divisor), sum(confidences)/float64(divisor))
}

// repeatCompletion is the partial credit given when a walkable is repeated
// for the attemptValue-th time.
func repeatCompletion(attemptValue int) model.Completion {
	if attemptValue <= 0 {
		return model.NewCompletion(0, 0)
	}
	v := float64(attemptValue)
	return model.NewCompletion(1-1/v, math.Min(0.9, 1-0.8/v))
}

func fullCompletion() model.Completion {
	return model.NewCompletion(1, 1)
}
