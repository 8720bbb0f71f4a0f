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

package cmd

import (
	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"

	"github.com/TTinTonT/Bonepile-view/engine"
	"github.com/TTinTonT/Bonepile-view/httpapi"
	"github.com/TTinTonT/Bonepile-view/internal/config"
)

const defaultListenAddr = ":8080"

var (
	serveListenAddr string
	serveLogLevel   string
	serveDebug      bool
	serveTLSCert    string
	serveTLSKey     string
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and background ingestion loops",
	Long: `Start the HTTP server and background ingestion loops.

Opens the cache and scan-state store under the fixed cache directory,
starts the auto-refresh/retention scheduler and the periodic backup
snapshotter, and serves the HTTP API described by the 'httpapi' package
until interrupted.

Listen address, log level, debug flag, and TLS cert/key can each be set
by flag, by a BONEPILE_VIEW_* environment variable, or in a .env /
.env.local file; flags take priority, then environment, then the
defaults shown.`,
	Run: func(cmd *cobra.Command, _ []string) {
		setCLIFormat()
		config.LoadDotEnv()

		cfg := config.FromFlagsAndEnv(
			serveListenAddr, defaultListenAddr,
			serveLogLevel, "info",
			serveDebug, cmd.Flags().Changed("debug"),
			serveTLSCert, serveTLSKey,
		)

		applyLogLevel(cfg.LogLevel, cfg.Debug)

		e, err := engine.Open(config.CacheDir)
		if err != nil {
			die("opening engine: %s", err)
		}

		e.Start()
		defer e.Stop() //nolint:errcheck

		r := httpapi.New(e).Router()

		info("listening on %s", cfg.ListenAddr)

		if cfg.TLSCert != "" && cfg.TLSKey != "" {
			err = r.RunTLS(cfg.ListenAddr, cfg.TLSCert, cfg.TLSKey)
		} else {
			err = r.Run(cfg.ListenAddr)
		}

		if err != nil {
			die("serving: %s", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListenAddr, "listen", "l", "",
		"address to listen on, eg host:port (default \":8080\")")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "",
		"log level: debug, info, warn, or error (default \"info\")")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false,
		"shorthand for --log-level=debug")
	serveCmd.Flags().StringVar(&serveTLSCert, "tls-cert", "",
		"path to a TLS certificate; serves over HTTPS when set alongside --tls-key")
	serveCmd.Flags().StringVar(&serveTLSKey, "tls-key", "",
		"path to a TLS key; serves over HTTPS when set alongside --tls-cert")

	RootCmd.AddCommand(serveCmd)
}

// applyLogLevel narrows appLogger's handler to level, falling back to Info
// on an unrecognised value; debug forces Debug regardless of level.
func applyLogLevel(level string, debug bool) {
	lvl := log15.LvlInfo

	if parsed, err := log15.LvlFromString(level); err == nil {
		lvl = parsed
	}

	if debug {
		lvl = log15.LvlDebug
	}

	appLogger.SetHandler(log15.LvlFilterHandler(lvl, log15.StderrHandler))
}
