// api/schemas/fixture.go
package schemas

// FieldStrategy selects how the form layer populates a field.
type FieldStrategy string

const (
	// StrategyTyped enters the value with simulated keystrokes.
	StrategyTyped FieldStrategy = "typed"
	// StrategyAssign assigns the value directly, overwriting what is there.
	StrategyAssign FieldStrategy = "assign"
	// StrategySelect picks a dropdown option by value.
	StrategySelect FieldStrategy = "select"
)

// Field is one input of an Expected Fixture, addressed by element id.
type Field struct {
	ID       string        `json:"id" yaml:"id"`
	Value    string        `json:"value" yaml:"value"`
	Strategy FieldStrategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// Selector returns the escaped CSS selector for the field's id.
func (f Field) Selector() string { return IDSelector(f.ID) }

// Fixture is the immutable input of a create or edit step, in fill order.
type Fixture struct {
	Fields []Field `json:"fields" yaml:"fields"`
}

// WithStrategy returns a copy of the fixture where every field that has no
// explicit strategy uses s.
func (f Fixture) WithStrategy(s FieldStrategy) Fixture {
	out := Fixture{Fields: make([]Field, len(f.Fields))}
	for i, field := range f.Fields {
		if field.Strategy == "" {
			field.Strategy = s
		}
		out.Fields[i] = field
	}
	return out
}

// Value returns the value of the field with the given id.
func (f Fixture) Value(id string) (string, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field.Value, true
		}
	}
	return "", false
}
