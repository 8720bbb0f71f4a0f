/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Authors:
 *   Michael Woolnough <mw31@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// Package config resolves process configuration from flags, environment
// variables, and an optional .env/.env.local file (§6 "Environment"). The
// share root and cache directory are fixed constants, not configurable: only
// the server's own bind/log/debug knobs participate in flag-or-env-or-default
// resolution, following cmd/clickhouse_config.go's pattern.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Fixed per §6: the share root and cache directory are baked-in constants,
// not part of the configurable surface.
const (
	ShareRoot = "/mnt/testfloor-share"
	CacheDir  = "/var/lib/bonepile-view"

	AutoScanEverySeconds   = 60
	RefreshWindowMinutes   = 180
	RetentionDays          = 90
	RetentionCheckInterval = 12 * time.Hour
)

const (
	envListenAddr  = "BONEPILE_VIEW_LISTEN_ADDR"
	envLogLevel    = "BONEPILE_VIEW_LOG_LEVEL"
	envDebug       = "BONEPILE_VIEW_DEBUG"
	envTLSCertFile = "BONEPILE_VIEW_TLS_CERT"
	envTLSKeyFile  = "BONEPILE_VIEW_TLS_KEY"
)

var dotEnvKeys = []string{
	envListenAddr,
	envLogLevel,
	envDebug,
	envTLSCertFile,
	envTLSKeyFile,
}

// Config is the resolved set of process knobs for the serve command.
type Config struct {
	ListenAddr string
	LogLevel   string
	Debug      bool
	TLSCert    string
	TLSKey     string
}

// LoadDotEnv fills gaps in the process environment from .env and
// .env.local, in that order, without overwriting variables that were
// already set before this call.
func LoadDotEnv() {
	orig := originalEnvKeys(dotEnvKeys)

	loadDotEnvFile(".env", orig)
	loadDotEnvFile(".env.local", orig)
}

func originalEnvKeys(keys []string) map[string]struct{} {
	orig := map[string]struct{}{}

	for _, key := range keys {
		if _, ok := os.LookupEnv(key); ok {
			orig[key] = struct{}{}
		}
	}

	return orig
}

func loadDotEnvFile(path string, orig map[string]struct{}) {
	env, err := godotenv.Read(path)
	if err != nil {
		return
	}

	for _, key := range dotEnvKeys {
		val, ok := env[key]
		if !ok {
			continue
		}

		if _, ok := orig[key]; ok {
			continue
		}

		_ = os.Setenv(key, val)
	}
}

// FromFlagsAndEnv resolves the server config, giving flag values priority,
// then environment (including anything LoadDotEnv filled in), then the
// supplied defaults.
func FromFlagsAndEnv(
	listenAddrFlag string,
	listenAddrDefault string,
	logLevelFlag string,
	logLevelDefault string,
	debugFlag bool,
	debugFlagSet bool,
	tlsCertFlag string,
	tlsKeyFlag string,
) Config {
	return Config{
		ListenAddr: flagOrEnvOrDefault(listenAddrFlag, envListenAddr, listenAddrDefault),
		LogLevel:   flagOrEnvOrDefault(logLevelFlag, envLogLevel, logLevelDefault),
		Debug:      boolFlagOrEnv(debugFlag, debugFlagSet, envDebug),
		TLSCert:    flagOrEnvOrDefault(tlsCertFlag, envTLSCertFile, ""),
		TLSKey:     flagOrEnvOrDefault(tlsKeyFlag, envTLSKeyFile, ""),
	}
}

func flagOrEnvOrDefault(flagValue, envKey, defaultValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}

	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}

	return defaultValue
}

func boolFlagOrEnv(flagValue bool, flagSet bool, envKey string) bool {
	if flagSet {
		return flagValue
	}

	v := strings.TrimSpace(os.Getenv(envKey))
	if v == "" {
		return false
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}

	return b
}
