package model

import "time"

// Page types. Schema pages validate by parsing the entire flow data through a
// resolved schema validator (pass/fail only); configurable pages validate
// per-declared-field.
type PageType string

const (
	PageTypeSchema       PageType = "schema"
	PageTypeConfigurable PageType = "configurable"
)

// Page is a single step in a flow.
type Page struct {
	ID     string
	Title  string
	Type   PageType
	Schema any         // schema pages: resolved through the resolver registry
	Fields []PageField // configurable pages
}

// PageField declares one input of a configurable page. The required check
// runs before the custom validator; the first failing field aborts the page.
type PageField struct {
	ID        string
	Label     string
	Required  bool
	Validator ValidatorFunc
}

// NavigationRule is a directed edge in the page graph. Multiple rules may
// share a From page; conditional rules are tried in declaration order with
// first match winning, and the Default rule is the fallback when no
// condition matches.
type NavigationRule struct {
	From      string     `json:"from" yaml:"from"`
	To        string     `json:"to" yaml:"to"`
	Condition *Condition `json:"when,omitempty" yaml:"when,omitempty"`
	Default   bool       `json:"default,omitempty" yaml:"default,omitempty"`
}

// FlowState is the mutable runtime state of a flow engine instance. It is
// mutated exclusively by the engine; State() hands callers a copy.
type FlowState struct {
	ID            string         `json:"id"`
	CurrentPageID string         `json:"current_page_id"`
	History       []string       `json:"history"`
	Data          map[string]any `json:"data"`
	Completed     bool           `json:"completed"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       *time.Time     `json:"end_time,omitempty"`
}

// FlowSnapshot is the JSON-serializable flow state shape consumed by
// persistence adapters. VisitedSteps is semantically a set, serialized as an
// array.
type FlowSnapshot struct {
	WorkflowID       string                    `json:"workflow_id"`
	CurrentStepIndex int                       `json:"current_step_index"`
	AllData          map[string]any            `json:"all_data"`
	StepData         map[string]map[string]any `json:"step_data"`
	VisitedSteps     []string                  `json:"visited_steps"`
	LastSaved        time.Time                 `json:"last_saved"`
}
