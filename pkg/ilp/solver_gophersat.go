package ilp

import (
	"github.com/crillab/gophersat/solver"
	"github.com/samber/lo"
)

// gophersatSolver solves the model in-process as a pseudo-boolean problem. Since all variables are binary every linear row maps to one or two PB constraints
type gophersatSolver struct{}

func NewGophersatSolver() Solver {
	return &gophersatSolver{}
}

func (s *gophersatSolver) Solve(model Model) (result Result, err error) {
	constraints := make([]solver.PBConstr, 0, len(model.Constraints))
	for _, constraint := range model.Constraints {
		for _, row := range toAtLeastRows(constraint) {
			if row.atLeast <= 0 { // Holds for any assignment
				continue
			} else if lo.Sum(row.weights) < row.atLeast { // Cannot hold even if every literal is true
				return Result{Status: StatusInfeasible}, nil
			}
			constraints = append(constraints, solver.GtEq(row.lits, row.weights, row.atLeast))
		}
	}

	if len(constraints) == 0 {
		return optimal(model.Variables, nil), nil
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = failure("gophersat panicked: %v", r)
		}
	}()

	problem := solver.ParsePBConstrs(constraints)
	pbSolver := solver.New(problem)

	switch pbSolver.Solve() {
	case solver.Sat:
		return optimal(model.Variables, pbSolver.Model()), nil
	case solver.Unsat:
		return Result{Status: StatusInfeasible}, nil
	default:
		return failure("gophersat could not decide the problem")
	}
}

type atLeastRow struct {
	lits    []int
	weights []int
	atLeast int
}

// toAtLeastRows rewrites a linear constraint as rows of the form sum(w_i * l_i) >= k with positive weights, where l_i is a literal
func toAtLeastRows(constraint Constraint) []atLeastRow {
	// Merge repeated variables
	order := make([]uint64, 0, len(constraint.Terms))
	coefficients := make(map[uint64]int64, len(constraint.Terms))
	for _, term := range constraint.Terms {
		if _, ok := coefficients[term.Variable]; !ok {
			order = append(order, term.Variable)
		}
		coefficients[term.Variable] += term.Coefficient
	}

	build := func(sign int64) atLeastRow {
		row := atLeastRow{atLeast: int(sign * constraint.Rhs)}
		for _, variable := range order {
			coefficient := sign * coefficients[variable]
			switch {
			case coefficient > 0:
				row.lits = append(row.lits, int(variable))
				row.weights = append(row.weights, int(coefficient))
			case coefficient < 0:
				// c*x = c + |c|*(not x)
				row.lits = append(row.lits, -int(variable))
				row.weights = append(row.weights, int(-coefficient))
				row.atLeast += int(-coefficient)
			}
		}
		return row
	}

	switch constraint.Sense {
	case GreaterOrEqual:
		return []atLeastRow{build(1)}
	case LessOrEqual:
		return []atLeastRow{build(-1)}
	default:
		return []atLeastRow{build(1), build(-1)}
	}
}
