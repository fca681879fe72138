package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/ensemble"
	"github.com/okian/attrition/internal/domain/explain"
	"github.com/okian/attrition/internal/domain/types"
	"github.com/okian/attrition/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubPredictor struct {
	err   error
	calls int
	got   employee.Record
}

func (s *stubPredictor) Predict(_ context.Context, r employee.Record) (types.Assessment, error) {
	s.calls++
	s.got = r
	if s.err != nil {
		return types.Assessment{}, s.err
	}
	return types.Assessment{
		Result:      ensemble.Aggregate(0.71897, 0.44444, 0.32189),
		Explanation: explain.Explain(r),
	}, nil
}

func defaultValues() url.Values {
	return url.Values{
		"age":               {"28"},
		"monthly_income":    {"3500"},
		"years_at_company":  {"1"},
		"job_satisfaction":  {"2"},
		"work_life_balance": {"2"},
		"overtime":          {"Yes"},
	}
}

func post(h http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSiteHandler(t *testing.T) {
	Convey("Given a registered form handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()
		deps := &stubPredictor{}
		Register(ctx, mux, New(deps))

		Convey("When opening the form", func() {
			req := httptest.NewRequest(http.MethodGet, Path, http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the defaults and bounds are rendered", func() {
				body := w.Body.String()
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(body, ShouldContainSubstring, "HR Attrition Prediction System")
				So(body, ShouldContainSubstring, `name="age" min="18" max="60" value="28"`)
				So(body, ShouldContainSubstring, `min="1000" max="20000"`)
				So(body, ShouldContainSubstring, `step="500" value="3500"`)
				So(body, ShouldContainSubstring, `name="years_at_company" min="0" max="40"`)
				So(body, ShouldContainSubstring, `<option value="2" selected>2</option>`)
				So(body, ShouldContainSubstring, `value="Yes" checked`)
				So(body, ShouldNotContainSubstring, "Prediction completed successfully!")
				So(deps.calls, ShouldEqual, 0)
			})
		})

		Convey("When submitting the defaults", func() {
			w := post(mux, defaultValues())

			Convey("Then the prediction is rendered from the shared service", func() {
				body := w.Body.String()
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.calls, ShouldEqual, 1)
				So(deps.got, ShouldResemble, DefaultForm())
				So(body, ShouldContainSubstring, "Prediction completed successfully!")
				So(body, ShouldContainSubstring, `<span id="final_risk">High</span>`)
				So(body, ShouldContainSubstring, `<span id="average_probability">0.4951</span>`)
				So(body, ShouldContainSubstring, "<strong>Logistic Regression</strong> &rarr; Risk: <strong>High</strong>, Probability: 0.719")
				So(body, ShouldContainSubstring, "<strong>Decision Tree</strong> &rarr; Risk: <strong>High</strong>, Probability: 0.4444")
				So(body, ShouldContainSubstring, "<strong>Random Forest</strong> &rarr; Risk: <strong>High</strong>, Probability: 0.3219")
				for _, reason := range []string{explain.EarlyCareer, explain.Overtime, explain.LowSatisfaction, explain.PoorBalance, explain.LowIncome} {
					So(body, ShouldContainSubstring, "<li>"+reason+"</li>")
				}
			})
		})

		Convey("When submitting a settled employee", func() {
			form := defaultValues()
			form.Set("monthly_income", "9000")
			form.Set("years_at_company", "10")
			form.Set("job_satisfaction", "4")
			form.Set("work_life_balance", "4")
			form.Set("overtime", "No")
			w := post(mux, form)

			Convey("Then the no-risk sentinel is listed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.got.OverTime, ShouldBeFalse)
				So(w.Body.String(), ShouldContainSubstring, "<li>"+explain.NoRiskFactorsText+"</li>")
				So(w.Body.String(), ShouldContainSubstring, `<option value="4" selected>4</option>`)
			})
		})

		invalid := []struct {
			field, value, want string
		}{
			{"age", "17", "Age must be between 18 and 60"},
			{"age", "old", "Age must be a whole number"},
			{"monthly_income", "25000", "Monthly Income must be between 1000 and 20000"},
			{"years_at_company", "41", "Years at Company must be between 0 and 40"},
			{"job_satisfaction", "0", "Job Satisfaction must be between 1 and 4"},
			{"overtime", "Maybe", "overtime answer must be Yes or No"},
		}
		for _, tc := range invalid {
			tc := tc
			Convey(fmt.Sprintf("When submitting %s=%s", tc.field, tc.value), func() {
				form := defaultValues()
				form.Set(tc.field, tc.value)
				w := post(mux, form)

				Convey("Then the form is re-rendered with the error", func() {
					So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
					So(w.Body.String(), ShouldContainSubstring, tc.want)
					So(w.Body.String(), ShouldNotContainSubstring, "Prediction completed successfully!")
					So(deps.calls, ShouldEqual, 0)
				})
			})
		}

		Convey("When the models are unavailable", func() {
			deps.err = fmt.Errorf("%w: not started", ensemble.ErrModelUnavailable)
			w := post(mux, defaultValues())
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, "Models are not loaded")
		})

		Convey("When inference fails", func() {
			deps.err = fmt.Errorf("%w: bad tree", ensemble.ErrComputation)
			w := post(mux, defaultValues())
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, "Prediction failed")
			So(w.Body.String(), ShouldNotContainSubstring, "final_risk")
		})

		Convey("When using an unsupported method", func() {
			req := httptest.NewRequest(http.MethodPut, Path, http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestRegisterMiddleware(t *testing.T) {
	Convey("Given two middlewares", t, func() {
		var order []string
		mw := func(name string) func(http.HandlerFunc) http.HandlerFunc {
			return func(next http.HandlerFunc) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next(w, r)
				}
			}
		}
		mux := http.NewServeMux()
		Register(context.Background(), mux, New(&stubPredictor{}), mw("outer"), mw("inner"))

		Convey("When a request is served", func() {
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, Path, http.NoBody))

			Convey("Then the first middleware runs first", func() {
				So(order, ShouldResemble, []string{"outer", "inner"})
			})
		})
	})

	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil, New(&stubPredictor{})) }, ShouldPanic)
	})
}

func TestParseForm(t *testing.T) {
	Convey("Given several bad fields at once", t, func() {
		form := defaultValues()
		form.Set("age", "99")
		form.Set("work_life_balance", "9")
		req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec, err := ParseForm(req)

		Convey("Then every problem is reported and parsed values are kept", func() {
			So(errors.Is(err, ErrForm), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Age must be between 18 and 60")
			So(err.Error(), ShouldContainSubstring, "Work Life Balance must be between 1 and 4")
			So(rec.Age, ShouldEqual, 99)
			So(rec.MonthlyIncome, ShouldEqual, 3500)
		})
	})
}
