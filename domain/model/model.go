package model

import (
	"gomonte/domain/core"
	"gomonte/domain/dist"
	"gomonte/internal/errors"
)

// Variable pairs one named model variable with its distribution.
type Variable struct {
	Name core.VariableKey `json:"name"`
	Spec dist.Spec        `json:"spec"`
}

// StochasticModel is an ordered, read-only list of named distributions.
// Order is load-bearing: row columns and the per-iteration draw order
// follow it, which is what makes equal seeds reproduce equal matrices.
type StochasticModel struct {
	variables []Variable
}

// NewStochasticModel validates every variable spec up front and returns
// the model. Validation failure is fatal to the caller.
func NewStochasticModel(variables []Variable) (*StochasticModel, error) {
	if len(variables) == 0 {
		return nil, errors.New(errors.CodeInvalidParams, "model requires at least one variable")
	}
	seen := make(map[core.VariableKey]bool, len(variables))
	for _, v := range variables {
		if v.Name == "" {
			return nil, errors.New(errors.CodeInvalidParams, "model variable name cannot be empty")
		}
		if seen[v.Name] {
			return nil, errors.Newf(errors.CodeInvalidParams, "duplicate model variable %q", v.Name)
		}
		seen[v.Name] = true
		if err := v.Spec.Validate(); err != nil {
			return nil, errors.Wrapf(err, "variable %q", v.Name)
		}
	}
	vs := make([]Variable, len(variables))
	copy(vs, variables)
	return &StochasticModel{variables: vs}, nil
}

// Variables returns a copy of the ordered variable list.
func (m *StochasticModel) Variables() []Variable {
	vs := make([]Variable, len(m.variables))
	copy(vs, m.variables)
	return vs
}

// Names returns the variable names in model order.
func (m *StochasticModel) Names() []string {
	names := make([]string, len(m.variables))
	for i, v := range m.variables {
		names[i] = v.Name.String()
	}
	return names
}

// Len returns the number of model variables.
func (m *StochasticModel) Len() int { return len(m.variables) }

// SampleMatrix holds kept simulation rows, one column per variable.
// Every row has the same length.
type SampleMatrix [][]float64

// Rows returns the number of kept rows.
func (sm SampleMatrix) Rows() int { return len(sm) }

// Cols returns the row width, 0 for an empty matrix.
func (sm SampleMatrix) Cols() int {
	if len(sm) == 0 {
		return 0
	}
	return len(sm[0])
}

// Column extracts one column as a fresh slice. Out-of-range indexes
// yield an empty slice rather than a panic: downstream statistics treat
// empty input as a documented degenerate case.
func (sm SampleMatrix) Column(idx int) []float64 {
	if idx < 0 || idx >= sm.Cols() {
		return nil
	}
	col := make([]float64, len(sm))
	for i, row := range sm {
		col[i] = row[idx]
	}
	return col
}

// Columns extracts every column at once.
func (sm SampleMatrix) Columns() [][]float64 {
	cols := make([][]float64, sm.Cols())
	for j := range cols {
		cols[j] = sm.Column(j)
	}
	return cols
}
