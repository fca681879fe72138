package modelstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/attrition/internal/adapters/modelstore"
	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/ensemble"
	. "github.com/smartystreets/goconvey/convey"
)

const featureNames = `"feature_names": ["Age", "MonthlyIncome", "JobSatisfaction", "WorkLifeBalance", "YearsAtCompany", "OverTime"]`

var validArtifacts = map[string]string{
	modelstore.DefaultScalerFile: `{` + featureNames + `, "mean": [0, 0, 0, 0, 0, 0], "scale": [1, 1, 1, 1, 1, 0]}`,
	modelstore.DefaultLogisticFile: `{` + featureNames + `, "coef": [0, 0, 0, 0, 0, 0], "intercept": 0}`,
	modelstore.DefaultDecisionTreeFile: `{"nodes": [
		{"feature": 5, "threshold": 0.5, "left": 1, "right": 2, "value": [10, 10]},
		{"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": [9, 1]},
		{"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": [1, 3]}
	]}`,
	modelstore.DefaultRandomForestFile: `{"trees": [
		{"nodes": [{"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": [3, 1]}]},
		{"nodes": [{"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": [1, 1]}]}
	]}`,
}

func writeArtifacts(dir string, overrides map[string]string) {
	for name, body := range validArtifacts {
		if o, ok := overrides[name]; ok {
			if o == "" {
				continue
			}
			body = o
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			panic(err)
		}
	}
}

func TestLoad(t *testing.T) {
	Convey("Given a directory with valid artifacts", t, func() {
		dir := t.TempDir()
		writeArtifacts(dir, nil)
		ctx := context.Background()

		Convey("When loading", func() {
			models, err := modelstore.Load(ctx, dir)

			Convey("Then every model is available", func() {
				So(err, ShouldBeNil)
				So(models.Validate(), ShouldBeNil)
			})

			Convey("And the models predict as exported", func() {
				x := []float64{30, 5000, 3, 3, 4, 1}

				p, err := models.Logistic.PredictProba(x)
				So(err, ShouldBeNil)
				So(p, ShouldResemble, []float64{0.5, 0.5})

				p, err = models.DecisionTree.PredictProba(x)
				So(err, ShouldBeNil)
				So(p, ShouldResemble, []float64{0.25, 0.75})

				p, err = models.RandomForest.PredictProba(x)
				So(err, ShouldBeNil)
				So(p, ShouldResemble, []float64{0.625, 0.375})

				s, err := models.Scaler.Transform(x)
				So(err, ShouldBeNil)
				So(s, ShouldResemble, x)
			})
		})

		Convey("When loading with renamed files", func() {
			So(os.Rename(filepath.Join(dir, modelstore.DefaultScalerFile), filepath.Join(dir, "std.json")), ShouldBeNil)
			_, err := modelstore.Load(ctx, dir, modelstore.WithFiles(modelstore.Files{Scaler: "std.json"}))
			So(err, ShouldBeNil)
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := modelstore.Load(cctx, dir)
			So(errors.Is(err, ensemble.ErrModelUnavailable), ShouldBeTrue)
		})
	})
}

func TestLoadFailures(t *testing.T) {
	Convey("Given broken artifact sets", t, func() {
		ctx := context.Background()

		cases := []struct {
			name     string
			artifact string
			body     string
			contains string
		}{
			{"a missing forest", modelstore.DefaultRandomForestFile, "", modelstore.DefaultRandomForestFile},
			{"a corrupt scaler", modelstore.DefaultScalerFile, `{"mean": [`, "decode"},
			{"a short coefficient vector", modelstore.DefaultLogisticFile, `{"coef": [1, 2], "intercept": 0}`, "coef has 2 values"},
			{"reordered feature names", modelstore.DefaultLogisticFile,
				`{"feature_names": ["MonthlyIncome", "Age", "JobSatisfaction", "WorkLifeBalance", "YearsAtCompany", "OverTime"], "coef": [0,0,0,0,0,0], "intercept": 0}`,
				`expected "Age"`},
			{"a tree with a dangling child", modelstore.DefaultDecisionTreeFile,
				`{"nodes": [{"feature": 0, "threshold": 1, "left": 1, "right": 7, "value": [1, 1]}, {"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": [1, 0]}]}`,
				"children out of range"},
			{"a tree with a cycle", modelstore.DefaultDecisionTreeFile,
				`{"nodes": [{"feature": 0, "threshold": 1, "left": 0, "right": 1, "value": [1, 1]}, {"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": [1, 0]}]}`,
				"children out of range"},
			{"a tree splitting on an unknown feature", modelstore.DefaultDecisionTreeFile,
				`{"nodes": [{"feature": 9, "threshold": 1, "left": 1, "right": 2, "value": [1, 1]}, {"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": [1, 0]}, {"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": [0, 1]}]}`,
				"splits on feature 9"},
			{"an empty leaf", modelstore.DefaultDecisionTreeFile,
				`{"nodes": [{"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": [0, 0]}]}`,
				"no samples"},
			{"an empty forest", modelstore.DefaultRandomForestFile, `{"trees": []}`, "no trees"},
		}

		for _, tc := range cases {
			tc := tc
			Convey("When loading "+tc.name, func() {
				dir := t.TempDir()
				writeArtifacts(dir, map[string]string{tc.artifact: tc.body})

				models, err := modelstore.Load(ctx, dir)

				Convey("Then loading fails as model unavailable", func() {
					So(err, ShouldNotBeNil)
					So(errors.Is(err, ensemble.ErrModelUnavailable), ShouldBeTrue)
					So(err.Error(), ShouldContainSubstring, tc.contains)
					So(models.Validate(), ShouldNotBeNil)

					var artifactErr *modelstore.ArtifactError
					So(errors.As(err, &artifactErr), ShouldBeTrue)
					So(artifactErr.Artifact, ShouldEqual, tc.artifact)
				})
			})
		}

		Convey("When no directory is configured", func() {
			_, err := modelstore.Load(ctx, "")
			So(errors.Is(err, modelstore.ErrModelUnavailable), ShouldBeTrue)
		})
	})
}

func TestInference(t *testing.T) {
	Convey("Given loaded models", t, func() {
		tree := &modelstore.DecisionTree{Nodes: []modelstore.TreeNode{
			{Feature: employee.IdxMonthlyIncome, Threshold: 4000, Left: 1, Right: 2, Value: [2]float64{2, 2}},
			{Feature: -2, Left: -1, Right: -1, Value: [2]float64{1, 3}},
			{Feature: -2, Left: -1, Right: -1, Value: [2]float64{3, 1}},
		}}

		Convey("When a value equals the split threshold", func() {
			p, err := tree.PredictProba([]float64{30, 4000, 3, 3, 3, 0})

			Convey("Then it goes left", func() {
				So(err, ShouldBeNil)
				So(p[1], ShouldEqual, 0.75)
			})
		})

		Convey("When the value is above the threshold", func() {
			p, err := tree.PredictProba([]float64{30, 4001, 3, 3, 3, 0})
			So(err, ShouldBeNil)
			So(p[1], ShouldEqual, 0.25)
		})

		Convey("When the input has the wrong arity", func() {
			_, err := tree.PredictProba([]float64{1})
			So(errors.Is(err, modelstore.ErrInference), ShouldBeTrue)

			lr := &modelstore.LogisticRegression{Coef: make([]float64, employee.FeatureCount)}
			_, err = lr.PredictProba([]float64{1, 2})
			So(errors.Is(err, modelstore.ErrInference), ShouldBeTrue)

			sc := &modelstore.StandardScaler{Mean: make([]float64, employee.FeatureCount), Scale: make([]float64, employee.FeatureCount)}
			_, err = sc.Transform([]float64{1})
			So(errors.Is(err, modelstore.ErrInference), ShouldBeTrue)
		})

		Convey("When a forest holds a broken tree", func() {
			forest := &modelstore.RandomForest{Trees: []modelstore.DecisionTree{*tree, {}}}
			_, err := forest.PredictProba([]float64{30, 4000, 3, 3, 3, 0})
			So(errors.Is(err, modelstore.ErrInference), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "tree 1")
		})

		Convey("When the logistic model saturates", func() {
			lr := &modelstore.LogisticRegression{Coef: []float64{1000, 0, 0, 0, 0, 0}}
			p, err := lr.PredictProba([]float64{10, 0, 0, 0, 0, 0})
			So(err, ShouldBeNil)
			So(p[1], ShouldEqual, 1)
			So(p[0], ShouldEqual, 0)
		})

		Convey("When scaling, the input is left untouched", func() {
			sc := &modelstore.StandardScaler{Mean: []float64{1, 1, 1, 1, 1, 1}, Scale: []float64{2, 2, 2, 2, 2, 2}}
			in := []float64{3, 3, 3, 3, 3, 3}
			out, err := sc.Transform(in)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []float64{1, 1, 1, 1, 1, 1})
			So(in, ShouldResemble, []float64{3, 3, 3, 3, 3, 3})
		})
	})
}

func TestBundledArtifacts(t *testing.T) {
	Convey("Given the artifacts shipped in models/", t, func() {
		models, err := modelstore.Load(context.Background(), filepath.Join("..", "..", "..", "models"))
		So(err, ShouldBeNil)

		engine, err := ensemble.NewEngine(models)
		So(err, ShouldBeNil)

		Convey("When scoring a high-risk profile", func() {
			r := employee.Record{Age: 45, MonthlyIncome: 3000, JobSatisfaction: 1, WorkLifeBalance: 1, YearsAtCompany: 1, OverTime: true}
			res, err := engine.Decide(context.Background(), r.Vector())

			Convey("Then every model flags it", func() {
				So(err, ShouldBeNil)
				So(res.Votes, ShouldEqual, 3)
				So(res.FinalRisk, ShouldEqual, ensemble.High)
				So(res.DecisionTree.Probability, ShouldEqual, 0.4444)
				So(res.RandomForest.Probability, ShouldEqual, 0.345)
			})
		})

		Convey("When scoring a low-risk profile", func() {
			r := employee.Record{Age: 40, MonthlyIncome: 9000, JobSatisfaction: 4, WorkLifeBalance: 4, YearsAtCompany: 10}
			res, err := engine.Decide(context.Background(), r.Vector())

			Convey("Then no model flags it", func() {
				So(err, ShouldBeNil)
				So(res.Votes, ShouldEqual, 0)
				So(res.FinalRisk, ShouldEqual, ensemble.Low)
				So(res.DecisionTree.Probability, ShouldEqual, 0.0731)
				So(res.RandomForest.Probability, ShouldEqual, 0.1027)
			})
		})
	})
}
