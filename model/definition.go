package model

// FlowDefinition is the YAML-authored description of a flow: its pages and
// the navigation rules between them. Checksum and SourceFile are populated
// by the loader.
type FlowDefinition struct {
	ID        string           `yaml:"id" json:"id"`
	Name      string           `yaml:"name" json:"name"`
	StartPage string           `yaml:"start_page" json:"start_page"`
	AllowBack bool             `yaml:"allow_back" json:"allow_back"`
	Pages     []PageDefinition `yaml:"pages" json:"pages"`
	Rules     []NavigationRule `yaml:"rules" json:"rules"`

	Checksum   string `yaml:"-" json:"-"`
	SourceFile string `yaml:"-" json:"-"`
}

// PageDefinition describes one page of a flow. Schema pages carry a SchemaRef
// resolved by the host against its schema set; configurable pages declare
// their fields inline.
type PageDefinition struct {
	ID        string            `yaml:"id" json:"id"`
	Title     string            `yaml:"title" json:"title"`
	Type      PageType          `yaml:"type" json:"type"`
	SchemaRef string            `yaml:"schema_ref,omitempty" json:"schema_ref,omitempty"`
	Fields    []FieldDefinition `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// FieldDefinition describes a configurable-page field and its declarative
// constraints.
type FieldDefinition struct {
	ID        string `yaml:"id" json:"id"`
	Label     string `yaml:"label,omitempty" json:"label,omitempty"`
	Required  bool   `yaml:"required,omitempty" json:"required,omitempty"`
	Pattern   string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	MinLength int    `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength int    `yaml:"max_length,omitempty" json:"max_length,omitempty"`
}
