package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/attrition/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.ModelDir, convey.ShouldEqual, "models")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFile, convey.ShouldBeEmpty)
			convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 100)
			convey.So(cfg.RateLimitBurst, convey.ShouldEqual, 200)
			convey.So(cfg.OTelEndpoint, convey.ShouldBeEmpty)
			convey.So(cfg.ServiceName, convey.ShouldEqual, "attrition")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		cases := []struct {
			name   string
			mutate func(*config.Config)
			want   string
		}{
			{"an empty model dir", func(c *config.Config) { c.ModelDir = "" }, "model_dir must not be empty"},
			{"an empty addr", func(c *config.Config) { c.Addr = "" }, "addr must not be empty"},
			{"a negative rate", func(c *config.Config) { c.RateLimitRPS = -1 }, "rate_limit_rps"},
			{"a negative burst", func(c *config.Config) { c.RateLimitBurst = -1 }, "rate_limit_burst"},
		}
		for _, tc := range cases {
			tc := tc
			convey.Convey("When it has "+tc.name, func() {
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then validation fails", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(err.Error(), convey.ShouldContainSubstring, tc.want)
				})
			})
		}

		convey.Convey("When rate limiting is disabled", func() {
			cfg.RateLimitRPS = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
