package ilp

import (
	"fmt"
	"strings"
)

type Sense int

const (
	LessOrEqual Sense = iota
	Equal
	GreaterOrEqual
)

func (sense Sense) String() string {
	switch sense {
	case LessOrEqual:
		return "<="
	case Equal:
		return "="
	case GreaterOrEqual:
		return ">="
	}
	return "?"
}

// Term is coefficient*variable, where variables are 1-based indices
type Term struct {
	Variable    uint64
	Coefficient int64
}

type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	Rhs   int64
}

// Model is a 0/1 integer linear program without objective (pure feasibility). Every variable in [1, Variables] is binary.
type Model struct {
	Name        string
	Variables   uint64
	Constraints []Constraint
}

// Sum returns the terms of an unweighted sum over variables
func Sum(variables ...uint64) []Term {
	terms := make([]Term, len(variables))
	for i, variable := range variables {
		terms[i] = Term{Variable: variable, Coefficient: 1}
	}
	return terms
}

func VariableName(variable uint64) string {
	return fmt.Sprintf("x%d", variable)
}

// ToLP renders the model in CPLEX-LP format, which is understood by most MILP solvers (cbc, glpsol, highs, scip)
func (m Model) ToLP() string {
	var builder strings.Builder
	if m.Name != "" {
		fmt.Fprintf(&builder, "\\ %s\n", m.Name)
	}

	// Feasibility only, so the objective is a null expression
	builder.WriteString("Minimize\n obj: 0 x1\n")

	builder.WriteString("Subject To\n")
	for i, constraint := range m.Constraints {
		name := constraint.Name
		if name == "" {
			name = fmt.Sprintf("c%d", i+1)
		}
		fmt.Fprintf(&builder, " %s:", name)

		if len(constraint.Terms) == 0 {
			builder.WriteString(" 0 x1")
		}
		for j, term := range constraint.Terms {
			sign := "+"
			coefficient := term.Coefficient
			if coefficient < 0 {
				sign, coefficient = "-", -coefficient
			}
			if j == 0 && sign == "+" {
				fmt.Fprintf(&builder, " %d %s", coefficient, VariableName(term.Variable))
			} else {
				fmt.Fprintf(&builder, " %s %d %s", sign, coefficient, VariableName(term.Variable))
			}
		}
		fmt.Fprintf(&builder, " %s %d\n", constraint.Sense, constraint.Rhs)
	}

	builder.WriteString("Binary\n")
	for variable := uint64(1); variable <= m.Variables; variable++ {
		fmt.Fprintf(&builder, " %s\n", VariableName(variable))
	}
	builder.WriteString("End\n")

	return builder.String()
}

// Satisfied checks whether values (indexed by variable-1) satisfy every constraint of the model
func (m Model) Satisfied(values []bool) bool {
	if uint64(len(values)) != m.Variables {
		return false
	}
	for _, constraint := range m.Constraints {
		var lhs int64
		for _, term := range constraint.Terms {
			if values[term.Variable-1] {
				lhs += term.Coefficient
			}
		}

		switch constraint.Sense {
		case LessOrEqual:
			if lhs > constraint.Rhs {
				return false
			}
		case Equal:
			if lhs != constraint.Rhs {
				return false
			}
		case GreaterOrEqual:
			if lhs < constraint.Rhs {
				return false
			}
		}
	}
	return true
}
