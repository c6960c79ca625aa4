package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	httpadapter "github.com/aretw0/espalier/pkg/adapters/http"
	"github.com/aretw0/espalier/pkg/definition"
	"github.com/aretw0/espalier/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve <definition.yaml>",
	Short: "Serve a machine over HTTP",
	Long:  `Builds the machine from a definition file and exposes it over a REST API, with Prometheus metrics under /metrics.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		debug, _ := cmd.Flags().GetBool("debug")

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		if err := runServe(args[0], addr, logger); err != nil {
			fmt.Printf("Serve failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(path, addr string, logger *slog.Logger) error {
	def, err := definition.Load(path)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	// Lenient build: definitions served standalone have no host registry to
	// supply guard or hook implementations.
	machine, err := def.Build(nil,
		definition.Lenient(),
		definition.WithMachineOptions(
			espalier.WithLogger[string, string](logger),
			espalier.WithObserver(metrics.Observer()),
		),
	)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", httpadapter.NewHandler(machine, httpadapter.WithLogger(logger)))

	logger.Info("serving machine", "definition", path, "addr", addr)
	return http.ListenAndServe(addr, mux)
}
