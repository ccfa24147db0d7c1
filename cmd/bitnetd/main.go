package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bitnetd/internal/bootstrap"
	"bitnetd/internal/common/fsutil"
	"bitnetd/internal/config"
	"bitnetd/internal/httpapi"
	"bitnetd/internal/manager"
	"bitnetd/internal/runner"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := config.Config{
		Addr:             envOr("BITNETD_ADDR", ":8080"),
		ModelsDir:        envOr("BITNETD_MODELS_DIR", "~/models/bitnet"),
		WorkDir:          envOr("BITNETD_WORK_DIR", "."),
		Python:           envOr("BITNETD_PYTHON", "python"),
		QuantType:        envOr("BITNETD_QUANT_TYPE", "i2_s"),
		DefaultNamespace: envOr("BITNETD_DEFAULT_NAMESPACE", "microsoft"),
		LogLevel:         envOr("BITNETD_LOG_LEVEL", "info"),
	}
	var configPath string
	var corsEnabled bool
	var corsOrigins string

	root := &cobra.Command{
		Use:           "bitnetd",
		Short:         "Browser-accessible BitNet model download and inference daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("BITNETD_CONFIG"), "Config file (.yaml/.json/.toml); flags override file values")
	root.PersistentFlags().StringVar(&cfg.ModelsDir, "models-dir", cfg.ModelsDir, "Directory holding one subdirectory per model")
	root.PersistentFlags().StringVar(&cfg.WorkDir, "work-dir", cfg.WorkDir, "Directory holding the inference scripts and the BitNet checkout")
	root.PersistentFlags().StringVar(&cfg.Python, "python", cfg.Python, "Python interpreter used for external scripts")
	root.PersistentFlags().StringVar(&cfg.QuantType, "quant-type", cfg.QuantType, "Quantization type passed to environment setup")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			fileCfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config %s: %w", configPath, err)
			}
			mergeConfig(&cfg, fileCfg, cmd)
		}
		return nil
	}

	var createDummy bool
	var serveDummySize string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg, corsEnabled, corsOrigins, createDummy, serveDummySize)
		},
	}
	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address, e.g. :8080")
	serveCmd.Flags().IntVar(&cfg.MaxUploadMB, "max-upload-mb", cfg.MaxUploadMB, "Maximum accepted upload size in MB (0 = unlimited)")
	serveCmd.Flags().BoolVar(&corsEnabled, "cors", false, "Enable permissive CORS for browser clients on other origins")
	serveCmd.Flags().StringVar(&corsOrigins, "cors-origins", "*", "Comma-separated allowed CORS origins")
	serveCmd.Flags().BoolVar(&createDummy, "create-dummy", false, "Generate a dummy model before serving")
	serveCmd.Flags().StringVar(&serveDummySize, "dummy-size", "125M", "Dummy model size when --create-dummy is set")

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check host requirements for the bitnet.cpp toolchain",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := bootstrap.CheckRequirements(cmd.Context(), cfg.Python)
			failed := false
			for _, r := range results {
				mark := "ok"
				if !r.OK {
					mark = "FAIL"
					failed = true
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-5s %s\n", r.Name, mark, r.Detail)
			}
			if failed {
				return fmt.Errorf("some requirements are missing")
			}
			return nil
		},
	}

	var dummySize string
	dummyCmd := &cobra.Command{
		Use:   "dummy",
		Short: "Generate a dummy GGUF model for smoke testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			modelsDir, err := fsutil.ExpandHome(cfg.ModelsDir)
			if err != nil {
				return err
			}
			return bootstrap.CreateDummyModel(cmd.Context(), cfg.WorkDir, cfg.Python, modelsDir, dummySize, cfg.QuantType)
		},
	}
	dummyCmd.Flags().StringVar(&dummySize, "model-size", "125M", "Dummy model size, e.g. 125M")

	root.AddCommand(serveCmd, doctorCmd, dummyCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// mergeConfig applies file values for settings the user did not set on the
// command line.
func mergeConfig(cfg *config.Config, file config.Config, cmd *cobra.Command) {
	set := func(name string) bool {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			return true
		}
		if f := cmd.InheritedFlags().Lookup(name); f != nil && f.Changed {
			return true
		}
		return false
	}
	if file.Addr != "" && !set("addr") {
		cfg.Addr = file.Addr
	}
	if file.ModelsDir != "" && !set("models-dir") {
		cfg.ModelsDir = file.ModelsDir
	}
	if file.WorkDir != "" && !set("work-dir") {
		cfg.WorkDir = file.WorkDir
	}
	if file.Python != "" && !set("python") {
		cfg.Python = file.Python
	}
	if file.QuantType != "" && !set("quant-type") {
		cfg.QuantType = file.QuantType
	}
	if file.DefaultNamespace != "" {
		cfg.DefaultNamespace = file.DefaultNamespace
	}
	if file.LogLevel != "" && !set("log-level") {
		cfg.LogLevel = file.LogLevel
	}
	if file.MaxUploadMB != 0 && !set("max-upload-mb") {
		cfg.MaxUploadMB = file.MaxUploadMB
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func runServe(cfg config.Config, corsEnabled bool, corsOrigins string, createDummy bool, dummySize string) error {
	log := newLogger(cfg.LogLevel)

	modelsDir, err := fsutil.ExpandHome(cfg.ModelsDir)
	if err != nil {
		return fmt.Errorf("resolve models dir: %w", err)
	}
	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		return fmt.Errorf("create models dir: %w", err)
	}

	// Best effort: missing toolchain or clone failure only degrades to the
	// fallback runtime, it never blocks serving.
	if err := bootstrap.EnsureBitNetRepo(context.Background(), cfg.WorkDir, log); err != nil {
		log.Warn().Err(err).Msg("BitNet repository bootstrap failed, primary inference may be unavailable")
	}
	if createDummy {
		if err := bootstrap.CreateDummyModel(context.Background(), cfg.WorkDir, cfg.Python, modelsDir, dummySize, cfg.QuantType); err != nil {
			log.Warn().Err(err).Msg("dummy model creation failed")
		}
	}

	run := runner.NewExecRunner(cfg.Python, cfg.WorkDir, log)
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		ModelsDir:        modelsDir,
		DefaultNamespace: cfg.DefaultNamespace,
		QuantType:        cfg.QuantType,
		Runner:           run,
		Logger:           log,
	})

	httpapi.SetLogger(log)
	if cfg.MaxUploadMB > 0 {
		httpapi.SetMaxUploadBytes(int64(cfg.MaxUploadMB) << 20)
	}
	if corsEnabled {
		origins := strings.Split(corsOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		httpapi.SetCORSOptions(true, origins, nil, nil)
	}

	mux := httpapi.NewMux(mgr)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("models_dir", modelsDir).Msg("bitnetd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	// Wait for background downloads before exiting.
	mgr.Close()
	return nil
}
