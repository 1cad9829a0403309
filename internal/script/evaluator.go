package script

import (
	"worldcell/internal/phase"
	"worldcell/internal/worldmodel"
)

// Evaluator runs a phase's loaded rules, in load order, against one cell.
// A rule that errors discards every mutation recorded for that cell in
// that phase (including mutations from rules that ran successfully
// earlier) and is reported via the caller's RuleError handling; other
// cells are unaffected.
type Evaluator struct {
	PhaseName string
	Rules     []*Rule
}

// Evaluate implements phase.Evaluator.
func (e Evaluator) Evaluate(cell worldmodel.Tile, neighbors []worldmodel.Tile, ctx phase.EvalContext) ([]phase.Mutation, error) {
	var all []phase.Mutation
	for _, rule := range e.Rules {
		muts, err := run(rule, cell, neighbors, ctx)
		if err != nil {
			return nil, phase.RuleError{TileID: cell.ID, RuleName: rule.Name, Err: err}
		}
		all = append(all, muts...)
	}
	return all, nil
}
