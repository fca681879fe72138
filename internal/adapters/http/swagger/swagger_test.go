package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/smartystreets/goconvey/convey"
)

func TestOpenAPIDocument(t *testing.T) {
	convey.Convey("Given the embedded OpenAPI document", t, func() {
		doc, err := yaml.Parser().Unmarshal(OpenAPI)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then every served route is described", func() {
			paths, ok := doc["paths"].(map[string]interface{})
			convey.So(ok, convey.ShouldBeTrue)
			for _, p := range []string{"/", "/predict", "/healthz", "/readyz", "/stats", "/ui"} {
				convey.So(paths, convey.ShouldContainKey, p)
			}
		})

		convey.Convey("Then the prediction response schema is present", func() {
			components, ok := doc["components"].(map[string]interface{})
			convey.So(ok, convey.ShouldBeTrue)
			schemas, ok := components["schemas"].(map[string]interface{})
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(schemas, convey.ShouldContainKey, "EmployeeRecord")
			convey.So(schemas, convey.ShouldContainKey, "PredictResponse")
		})
	})
}

func TestRegister(t *testing.T) {
	convey.Convey("Given the docs routes on a mux", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		cases := []struct {
			method, path string
			status       int
			contentType  string
			contains     string
		}{
			{http.MethodGet, "/openapi.yaml", http.StatusOK, "application/yaml; charset=utf-8", "individual_predictions"},
			{http.MethodHead, "/openapi.yaml", http.StatusOK, "application/yaml; charset=utf-8", ""},
			{http.MethodGet, "/api-docs", http.StatusOK, "text/html; charset=utf-8", RedocScriptURL},
			{http.MethodPost, "/openapi.yaml", http.StatusMethodNotAllowed, "", ErrServe.Error()},
			{http.MethodDelete, "/api-docs", http.StatusMethodNotAllowed, "", ErrServe.Error()},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.method+" "+tc.path+" is requested", func() {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, http.NoBody))

				convey.So(w.Code, convey.ShouldEqual, tc.status)
				if tc.contentType != "" {
					convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, tc.contentType)
				}
				if tc.status == http.StatusMethodNotAllowed {
					convey.So(w.Header().Get("Allow"), convey.ShouldEqual, http.MethodGet)
				}
				convey.So(w.Body.String(), convey.ShouldContainSubstring, tc.contains)
			})
		}
	})

	convey.Convey("Given a nil mux", t, func() {
		convey.So(func() { Register(context.Background(), nil) }, convey.ShouldPanic)
	})
}
