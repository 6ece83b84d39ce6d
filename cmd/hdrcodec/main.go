// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/blinklabs-io/hdrcodec/codec"
	"github.com/blinklabs-io/hdrcodec/metrics"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	programName = "hdrcodec"
	envPrefix   = "HDRCODEC"
)

// app holds the state shared by all subcommands for one invocation
type app struct {
	v             *viper.Viper
	logger        *slog.Logger
	registry      *prometheus.Registry
	recorder      *metrics.Recorder
	metricsServer *http.Server
}

func newApp() *app {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &app{
		v:        viper.New(),
		logger:   slog.Default(),
		registry: registry,
		recorder: metrics.New(registry),
	}
}

func newRootCommand() *cobra.Command {
	a := newApp()
	cmd := &cobra.Command{
		Use:           programName,
		Short:         "Compress and decompress block header chains",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.teardown()
		},
	}
	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (YAML, TOML or JSON)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flags.String("network", "mainnet", "network (mainnet, testnet3, regtest, signet, simnet)")
	flags.Bool("strict", false, "reject reserved bits and mismatched literal prev hashes")
	cmd.AddCommand(
		newCompressCommand(a),
		newDecompressCommand(a),
		newRoundtripCommand(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if cfgFile := a.v.GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	level, err := parseLogLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	a.logger = slog.New(
		slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}),
	)
	if addr := a.v.GetString("metrics-addr"); addr != "" {
		if err := a.startMetricsServer(addr); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) teardown() error {
	if a.metricsServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.metricsServer.Shutdown(ctx)
}

func (a *app) startMetricsServer(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		a.registry,
		promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
	))
	a.metricsServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.logger.Info(
		"serving metrics",
		"component", "cli",
		"address", listener.Addr().String(),
	)
	go func() {
		if err := a.metricsServer.Serve(listener); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"metrics server failed",
				"component", "cli",
				"error", err,
			)
		}
	}()
	return nil
}

// codecOptions returns the options applied to every encoder and decoder
func (a *app) codecOptions() []codec.CodecOptionFunc {
	return []codec.CodecOptionFunc{
		codec.WithLogger(a.logger),
		codec.WithRecorder(a.recorder),
		codec.WithStrict(a.v.GetBool("strict")),
	}
}

func (a *app) networkParams() (*chaincfg.Params, error) {
	return networkByName(a.v.GetString("network"))
}

func networkByName(name string) (*chaincfg.Params, error) {
	switch strings.ToLower(name) {
	case "mainnet", "main":
		return &chaincfg.MainNetParams, nil
	case "testnet3", "testnet":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "simnet":
		return &chaincfg.SimNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network: %s", name)
	}
}

func parseLogLevel(level string) (slog.Level, error) {
	var ret slog.Level
	if err := ret.UnmarshalText([]byte(level)); err != nil {
		return ret, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return ret, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
