package model

// Operator is the closed set of leaf condition tests. Using a dedicated type
// instead of free-form strings lets the definition validator reject typos
// statically instead of silently evaluating them to false at runtime.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpExists      Operator = "exists"
)

// Valid reports whether op is a member of the closed operator set.
func (op Operator) Valid() bool {
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpGreaterThan, OpLessThan, OpExists:
		return true
	}
	return false
}

// Logic selects how a composite node combines its own test with the
// aggregate of its nested conditions.
type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
)

// Condition is a boolean-expression tree node. A node always evaluates its
// own (field, operator, value) test; when it carries nested conditions the
// own result is AND-combined (default) or OR-combined with the nested
// aggregate. Both contribute; the nested aggregate never replaces the leaf.
//
// Conditions are builder- or YAML-constructed trees, never graphs, so plain
// recursion over them is safe.
type Condition struct {
	Field      string      `json:"field,omitempty" yaml:"field,omitempty"`
	Operator   Operator    `json:"operator" yaml:"operator"`
	Value      any         `json:"value,omitempty" yaml:"value,omitempty"`
	Logic      Logic       `json:"logic,omitempty" yaml:"logic,omitempty"`
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}
