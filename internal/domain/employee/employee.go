// Package employee holds the employee record accepted by the predictor and the
// fixed-order feature vector every model was trained on.
package employee

import "fmt"

// Feature positions in the model input vector. The order matches the training
// pipeline; the scaler and all three classifiers depend on it.
const (
	IdxAge = iota
	IdxMonthlyIncome
	IdxJobSatisfaction
	IdxWorkLifeBalance
	IdxYearsAtCompany
	IdxOverTime

	FeatureCount
)

// FeatureNames maps vector positions to the column names used at training time.
var FeatureNames = [FeatureCount]string{
	IdxAge:             "Age",
	IdxMonthlyIncome:   "MonthlyIncome",
	IdxJobSatisfaction: "JobSatisfaction",
	IdxWorkLifeBalance: "WorkLifeBalance",
	IdxYearsAtCompany:  "YearsAtCompany",
	IdxOverTime:        "OverTime",
}

// Documented ranges for the rating fields.
const (
	MinRating = 1
	MaxRating = 4
)

// Record is a single employee as submitted for scoring.
type Record struct {
	Age             int
	MonthlyIncome   int
	JobSatisfaction int
	WorkLifeBalance int
	YearsAtCompany  int
	OverTime        bool
}

// FromInts builds a Record from the wire representation, where OverTime is 0 or 1.
func FromInts(age, monthlyIncome, jobSatisfaction, workLifeBalance, yearsAtCompany, overTime int) (Record, error) {
	if overTime != 0 && overTime != 1 {
		return Record{}, fmt.Errorf("%w: OverTime must be 0 or 1, got %d", ErrInvalidInput, overTime)
	}
	r := Record{
		Age:             age,
		MonthlyIncome:   monthlyIncome,
		JobSatisfaction: jobSatisfaction,
		WorkLifeBalance: workLifeBalance,
		YearsAtCompany:  yearsAtCompany,
		OverTime:        overTime == 1,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate checks the record against the documented numeric ranges.
func (r Record) Validate() error {
	switch {
	case r.Age <= 0:
		return fmt.Errorf("%w: Age must be positive, got %d", ErrInvalidInput, r.Age)
	case r.MonthlyIncome < 0:
		return fmt.Errorf("%w: MonthlyIncome must not be negative, got %d", ErrInvalidInput, r.MonthlyIncome)
	case r.JobSatisfaction < MinRating || r.JobSatisfaction > MaxRating:
		return fmt.Errorf("%w: JobSatisfaction must be between %d and %d, got %d", ErrInvalidInput, MinRating, MaxRating, r.JobSatisfaction)
	case r.WorkLifeBalance < MinRating || r.WorkLifeBalance > MaxRating:
		return fmt.Errorf("%w: WorkLifeBalance must be between %d and %d, got %d", ErrInvalidInput, MinRating, MaxRating, r.WorkLifeBalance)
	case r.YearsAtCompany < 0:
		return fmt.Errorf("%w: YearsAtCompany must not be negative, got %d", ErrInvalidInput, r.YearsAtCompany)
	}
	return nil
}

// OverTimeFlag returns the 0/1 encoding of OverTime.
func (r Record) OverTimeFlag() int {
	if r.OverTime {
		return 1
	}
	return 0
}

// Vector returns the features in training order.
func (r Record) Vector() []float64 {
	v := make([]float64, FeatureCount)
	v[IdxAge] = float64(r.Age)
	v[IdxMonthlyIncome] = float64(r.MonthlyIncome)
	v[IdxJobSatisfaction] = float64(r.JobSatisfaction)
	v[IdxWorkLifeBalance] = float64(r.WorkLifeBalance)
	v[IdxYearsAtCompany] = float64(r.YearsAtCompany)
	v[IdxOverTime] = float64(r.OverTimeFlag())
	return v
}
