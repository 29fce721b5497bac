package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "irqsim",
		Short: "Run interrupt scenarios against the irq package",
		Long: "irqsim replays interrupt scenarios through a simulated two-level\n" +
			"interrupt controller, exercising scoped handler registration and the\n" +
			"priority lock, and reports per-source dispatch statistics.",
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every trigger and dispatch")
	rootCmd.AddCommand(listCmd, runCmd)
}

// logger builds the event logger: nop by default, development config with
// --verbose.
func logger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
