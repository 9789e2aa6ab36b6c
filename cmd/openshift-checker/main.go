package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/redhat-developer/openshift-checker/internal/log"
	"github.com/redhat-developer/openshift-checker/internal/model"

	"github.com/spf13/cobra"
)

const (
	configEnv  = "CHECKERCONFIG"
	configName = "openshift-checker.yaml"
)

var (
	userConfigPath string // /default/config/path/openshift-checker on given OS
	configPath     string // actual config file used (if loaded)
	config         model.Config

	flagConfigFilePath string // value of --config flag
	flagVerbose        bool   // value of --verbose flag
)

func init() {
	d, err := os.UserConfigDir()
	if err != nil {
		d = "."
	}
	userConfigPath = filepath.Join(d, "openshift-checker")
}

func main() {
	// root flags
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "Config file to load - default is "+configName+" in current directory or in "+userConfigPath)
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")

	// never print messages
	rootCmd.SilenceErrors = true

	// parse the config, setup logging
	rootCmd.PersistentPreRunE = initChecker

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	switch {
	case err == nil:
	case errors.Is(err, model.ErrCancelled):
		// cancellation is not an error worth reporting
		os.Exit(130)
	case errors.Is(err, errThreshold):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		slog.Error("openshift-checker failed", "error", err, "kind", model.Kind(err))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "openshift-checker",
	Short:        "Checks container images for issues when deployed on OpenShift",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "version provide version of a openshift-checker",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		info, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Fprintln(out, "openshift-checker: version info not available")
			return
		}

		if configPath != "" {
			fmt.Fprintf(out, "config: %s\n", configPath)
		}
		fmt.Fprintf(out, "openshift-checker: %s\n", info.Main.Version)
		fmt.Fprintf(out, "schema: %s\n", model.SchemaVersion)
		fmt.Fprintf(out, "go:     %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Fprintf(out, "commit: %s\n", s.Value)
			case "vcs.time":
				fmt.Fprintf(out, "date:   %s\n", s.Value)
			case "vcs.modified":
				fmt.Fprintf(out, "dirty:  %s\n", s.Value)
			}
		}
		fmt.Fprintln(out)
	},
}

func initChecker(cmd *cobra.Command, _ []string) error {
	configPath = ""
	if envConfig := os.Getenv(configEnv); envConfig != "" {
		configPath = envConfig
	} else if flagConfigFilePath != "" {
		configPath = flagConfigFilePath
	} else {
		for _, d := range []string{userConfigPath, "."} {
			path := filepath.Join(d, configName)
			if exists(path) {
				configPath = path
				break
			}
		}
	}

	if configPath == "" {
		config = model.DefaultConfig()
	} else {
		f, err := os.Open(configPath)
		if err != nil {
			return fmt.Errorf("opening config file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		config, err = model.LoadConfig(f)
		if err != nil {
			return fmt.Errorf("parsing config %s: %w", configPath, err)
		}
	}

	// --verbose has a precedence over config file
	if flagVerbose {
		config.Verbose = true
	}

	slog.SetDefault(log.New(cmd.ErrOrStderr(), config.Verbose))

	slog.Debug("openshift-checker run", "configPath", configPath)
	slog.Debug("openshift-checker run", "config", config)
	return nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
