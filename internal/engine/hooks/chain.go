package hooks

// Op is how a step folds into a chain
type Op int

// Step operations
const (
	OpMultiply Op = iota
	OpAdd
)

func (o Op) String() string {
	if o == OpAdd {
		return "add"
	}
	return "multiply"
}

// Step is one labelled contribution to a computed value
type Step struct {
	Label string  `json:"label"`
	Op    Op      `json:"op"`
	Value float64 `json:"value"`
}

// Mul builds a multiplicative step
func Mul(label string, value float64) Step {
	return Step{Label: label, Op: OpMultiply, Value: value}
}

// Add builds an additive step
func Add(label string, value float64) Step {
	return Step{Label: label, Op: OpAdd, Value: value}
}

// Chain is a base value and the ordered steps applied to it
type Chain struct {
	Base  float64 `json:"base"`
	Steps []Step  `json:"steps,omitempty"`
}

// Push appends a step
func (c *Chain) Push(s Step) {
	c.Steps = append(c.Steps, s)
}

// Result folds the steps in order
func (c Chain) Result() float64 {
	v := c.Base
	for _, s := range c.Steps {
		switch s.Op {
		case OpAdd:
			v += s.Value
		default:
			v *= s.Value
		}
	}
	return v
}
