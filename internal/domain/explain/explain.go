// Package explain produces the human-readable attrition risk factors shown next
// to a prediction. The rules are a fixed heuristic overlay: they do not feed the
// ensemble and may disagree with its verdict.
package explain

import "github.com/okian/attrition/internal/domain/employee"

// Risk factor texts.
const (
	EarlyCareer       = "Early career employee"
	Overtime          = "Working overtime"
	LowSatisfaction   = "Low job satisfaction"
	PoorBalance       = "Poor work-life balance"
	LowIncome         = "Low monthly income"
	NoRiskFactorsText = "No strong attrition risk factors detected"
)

// Rule thresholds.
const (
	earlyCareerMaxYears = 2
	lowRatingMax        = 2
	lowIncomeBelow      = 4000
)

// Rule is a single condition and the factor it contributes.
type Rule struct {
	Factor  string
	Applies func(employee.Record) bool
}

var rules = []Rule{
	{Factor: EarlyCareer, Applies: func(r employee.Record) bool { return r.YearsAtCompany <= earlyCareerMaxYears }},
	{Factor: Overtime, Applies: func(r employee.Record) bool { return r.OverTime }},
	{Factor: LowSatisfaction, Applies: func(r employee.Record) bool { return r.JobSatisfaction <= lowRatingMax }},
	{Factor: PoorBalance, Applies: func(r employee.Record) bool { return r.WorkLifeBalance <= lowRatingMax }},
	{Factor: LowIncome, Applies: func(r employee.Record) bool { return r.MonthlyIncome < lowIncomeBelow }},
}

// Rules returns the rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Explain evaluates every rule in order and returns the matching factors, or the
// single no-risk sentinel when none match. The result is never empty.
func Explain(r employee.Record) []string {
	reasons := make([]string, 0, len(rules))
	for _, rule := range rules {
		if rule.Applies(r) {
			reasons = append(reasons, rule.Factor)
		}
	}
	if len(reasons) == 0 {
		reasons = append(reasons, NoRiskFactorsText)
	}
	return reasons
}

// HasRiskFactors reports whether the explanation cites at least one factor.
func HasRiskFactors(reasons []string) bool {
	return !(len(reasons) == 1 && reasons[0] == NoRiskFactorsText)
}
