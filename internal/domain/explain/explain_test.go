package explain_test

import (
	"testing"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/explain"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExplain(t *testing.T) {
	Convey("Given an employee who trips every rule", t, func() {
		r := employee.Record{Age: 45, MonthlyIncome: 3000, JobSatisfaction: 1, WorkLifeBalance: 1, YearsAtCompany: 1, OverTime: true}

		Convey("When explaining", func() {
			reasons := explain.Explain(r)

			Convey("Then all five factors appear in fixed order", func() {
				So(reasons, ShouldResemble, []string{
					"Early career employee",
					"Working overtime",
					"Low job satisfaction",
					"Poor work-life balance",
					"Low monthly income",
				})
				So(explain.HasRiskFactors(reasons), ShouldBeTrue)
			})
		})
	})

	Convey("Given an employee who trips no rule", t, func() {
		r := employee.Record{Age: 40, MonthlyIncome: 9000, JobSatisfaction: 4, WorkLifeBalance: 4, YearsAtCompany: 10}

		Convey("When explaining", func() {
			reasons := explain.Explain(r)

			Convey("Then only the sentinel is returned", func() {
				So(reasons, ShouldResemble, []string{"No strong attrition risk factors detected"})
				So(explain.HasRiskFactors(reasons), ShouldBeFalse)
			})
		})
	})

	Convey("Given records on the rule boundaries", t, func() {
		base := employee.Record{Age: 30, MonthlyIncome: 4000, JobSatisfaction: 3, WorkLifeBalance: 3, YearsAtCompany: 3}

		Convey("Then each boundary is applied as documented", func() {
			So(explain.Explain(base), ShouldResemble, []string{explain.NoRiskFactorsText})

			r := base
			r.YearsAtCompany = 2
			So(explain.Explain(r), ShouldResemble, []string{explain.EarlyCareer})

			r = base
			r.JobSatisfaction = 2
			So(explain.Explain(r), ShouldResemble, []string{explain.LowSatisfaction})

			r = base
			r.WorkLifeBalance = 2
			So(explain.Explain(r), ShouldResemble, []string{explain.PoorBalance})

			r = base
			r.MonthlyIncome = 3999
			So(explain.Explain(r), ShouldResemble, []string{explain.LowIncome})

			r = base
			r.OverTime = true
			So(explain.Explain(r), ShouldResemble, []string{explain.Overtime})
		})

		Convey("And a subset keeps the relative order", func() {
			r := base
			r.MonthlyIncome = 1000
			r.OverTime = true
			So(explain.Explain(r), ShouldResemble, []string{explain.Overtime, explain.LowIncome})
		})
	})

	Convey("Explaining is idempotent", t, func() {
		r := employee.Record{Age: 28, MonthlyIncome: 3500, JobSatisfaction: 2, WorkLifeBalance: 2, YearsAtCompany: 1, OverTime: true}
		So(explain.Explain(r), ShouldResemble, explain.Explain(r))
	})
}

func TestRules(t *testing.T) {
	Convey("Rules are exposed in evaluation order", t, func() {
		rules := explain.Rules()
		So(len(rules), ShouldEqual, 5)
		So(rules[0].Factor, ShouldEqual, explain.EarlyCareer)
		So(rules[4].Factor, ShouldEqual, explain.LowIncome)

		Convey("And mutating the copy does not affect evaluation", func() {
			rules[0] = explain.Rule{Factor: "tampered", Applies: func(employee.Record) bool { return true }}
			r := employee.Record{Age: 40, MonthlyIncome: 9000, JobSatisfaction: 4, WorkLifeBalance: 4, YearsAtCompany: 10}
			So(explain.Explain(r), ShouldResemble, []string{explain.NoRiskFactorsText})
		})
	})
}
