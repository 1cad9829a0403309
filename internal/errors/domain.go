package errors

import "fmt"

// ClientDisconnect builds a non-fatal error describing a broadcast client
// that lagged or dropped. The broadcast package does not construct these:
// it logs dropped messages directly and unregisters closed clients.
func ClientDisconnect(message string) *AppError {
	return &AppError{Kind: KindClientDisconnect, Message: message}
}

// Cascaded wraps a rule-evaluation error with the phase's error count,
// for the warn-level cascade log emitted when more than 10% of a phase's
// cells error in the same tick.
func Cascaded(phase string, errorCount, cellCount int) *AppError {
	return &AppError{
		Kind:    KindRuleEvaluation,
		Field:   phase,
		Message: fmt.Sprintf("%d/%d cells errored in phase %s, exceeding the 10%% cascade threshold", errorCount, cellCount, phase),
	}
}

// RejectedTransitions wraps the Terrain phase's count of biome_type
// mutations discarded for targeting a non-adjacent biome, for the
// warn-level log emitted once per tick when the count is nonzero.
func RejectedTransitions(count int) *AppError {
	return &AppError{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("%d biome transition(s) rejected as non-adjacent", count),
	}
}
