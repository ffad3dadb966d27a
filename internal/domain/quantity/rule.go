// Package quantity turns a community item rule plus a budget unit count into a requested quantity.
package quantity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the shape of a parsed rule.
type Kind int

const (
	Invalid Kind = iota
	Identity
	Multiply
	Divide
	Constant
)

func (k Kind) String() string {
	switch k {
	case Identity:
		return "identity"
	case Multiply:
		return "multiply"
	case Divide:
		return "divide"
	case Constant:
		return "constant"
	default:
		return "invalid"
	}
}

const unitsToken = "units budget"

// Rule is a parsed item_code_qty expression. Parse once when the rule is loaded.
type Rule struct {
	Kind    Kind
	Operand decimal.Decimal // factor, divisor or constant
	Raw     string
}

// Parse reads rules like "Units Budget * 0.5", "Units Budget / 3", "Units Budget" or "12".
// Anything else, and division by zero, yields an Invalid rule.
func Parse(raw string) Rule {
	r := Rule{Kind: Invalid, Raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return r
	}

	lower := strings.ToLower(s)
	idx := strings.Index(lower, unitsToken)
	if idx < 0 {
		c, err := decimal.NewFromString(s)
		if err != nil {
			return r
		}
		r.Kind, r.Operand = Constant, c
		return r
	}
	if strings.TrimSpace(lower[:idx]) != "" {
		return r
	}

	rest := strings.TrimSpace(s[idx+len(unitsToken):])
	switch {
	case rest == "":
		r.Kind = Identity
	case strings.HasPrefix(rest, "*"):
		f, err := decimal.NewFromString(strings.TrimSpace(rest[1:]))
		if err != nil {
			return r
		}
		r.Kind, r.Operand = Multiply, f
	case strings.HasPrefix(rest, "/"):
		d, err := decimal.NewFromString(strings.TrimSpace(rest[1:]))
		if err != nil || d.IsZero() {
			return r
		}
		r.Kind, r.Operand = Divide, d
	}
	return r
}

// Valid reports whether the rule can be evaluated.
func (r Rule) Valid() bool { return r.Kind != Invalid }

// Apply evaluates the rule on a unit count without rounding.
func (r Rule) Apply(units decimal.Decimal) (decimal.Decimal, bool) {
	switch r.Kind {
	case Identity:
		return units, true
	case Multiply:
		return units.Mul(r.Operand), true
	case Divide:
		return units.Div(r.Operand), true
	case Constant:
		return r.Operand, true
	}
	return decimal.Zero, false
}

// Policy decides how a raw quantity is rounded for an item code.
// Item codes on the fractional list keep two decimals; everything else rounds up to a whole unit.
type Policy struct {
	fractional map[string]struct{}
}

// NewPolicy builds the policy from the fractional item allow-list.
func NewPolicy(fractionalItems []string) Policy {
	m := make(map[string]struct{}, len(fractionalItems))
	for _, c := range fractionalItems {
		m[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	return Policy{fractional: m}
}

// IsFractional reports whether itemCode keeps fractional precision.
func (p Policy) IsFractional(itemCode string) bool {
	_, ok := p.fractional[strings.ToUpper(itemCode)]
	return ok
}

// Round applies the item's rounding rule.
func (p Policy) Round(itemCode string, raw decimal.Decimal) decimal.Decimal {
	if p.IsFractional(itemCode) {
		return raw.Round(2)
	}
	return raw.Ceil()
}

// Compute evaluates rule for a budget unit count and item code.
// ok is false when the rule is invalid or evaluates to a negative quantity; the row is then skipped.
func (p Policy) Compute(unitsBudget decimal.Decimal, rule Rule, itemCode string) (qty decimal.Decimal, ok bool) {
	raw, ok := rule.Apply(unitsBudget)
	if !ok || raw.IsNegative() {
		return decimal.Zero, false
	}
	return p.Round(itemCode, raw), true
}
