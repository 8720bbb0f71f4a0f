package config

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFromFlagsAndEnv(t *testing.T) {
	Convey("Given no flags and no environment", t, func() {
		os.Unsetenv(envListenAddr)
		os.Unsetenv(envLogLevel)
		os.Unsetenv(envDebug)

		Convey("defaults are used", func() {
			cfg := FromFlagsAndEnv("", ":8080", "", "info", false, false, "", "")
			So(cfg.ListenAddr, ShouldEqual, ":8080")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Debug, ShouldBeFalse)
		})

		Convey("environment fills in when no flag given", func() {
			os.Setenv(envListenAddr, ":9090")
			defer os.Unsetenv(envListenAddr)

			cfg := FromFlagsAndEnv("", ":8080", "", "info", false, false, "", "")
			So(cfg.ListenAddr, ShouldEqual, ":9090")
		})

		Convey("a flag value wins over environment", func() {
			os.Setenv(envListenAddr, ":9090")
			defer os.Unsetenv(envListenAddr)

			cfg := FromFlagsAndEnv(":7070", ":8080", "", "info", false, false, "", "")
			So(cfg.ListenAddr, ShouldEqual, ":7070")
		})

		Convey("an explicitly set false flag beats a true environment value", func() {
			os.Setenv(envDebug, "true")
			defer os.Unsetenv(envDebug)

			cfg := FromFlagsAndEnv("", ":8080", "", "info", false, true, "", "")
			So(cfg.Debug, ShouldBeFalse)
		})
	})
}

func TestLoadDotEnvDoesNotOverwriteExisting(t *testing.T) {
	Convey("Given a pre-existing environment variable", t, func() {
		os.Setenv(envLogLevel, "warn")
		defer os.Unsetenv(envLogLevel)

		Convey("LoadDotEnv leaves it untouched even with no .env file present", func() {
			LoadDotEnv()
			So(os.Getenv(envLogLevel), ShouldEqual, "warn")
		})
	})
}
