package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonas-schievink/irq/sim"
)

var (
	runOpts = struct {
		file string
	}{}

	runCmd = &cobra.Command{
		Use:   "run [scenario]",
		Short: "Run a scenario and print dispatch statistics",
		Long: "Run a built-in scenario by name, or a scenario loaded from a YAML\n" +
			"file with --file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				sc  *sim.Scenario
				err error
			)
			switch {
			case runOpts.file != "":
				sc, err = sim.LoadScenario(runOpts.file)
			case len(args) == 1:
				sc, err = sim.FindScenario(args[0])
			default:
				return fmt.Errorf("name a built-in scenario or pass --file")
			}
			if err != nil {
				return err
			}

			log, err := logger()
			if err != nil {
				return err
			}
			defer log.Sync()

			res, err := sim.Run(sc, log)
			if err != nil {
				return err
			}

			fmt.Printf("scenario %s\n", res.Scenario)
			fmt.Printf("%-10s %-5s %10s %9s %12s %12s\n",
				"SOURCE", "PRIO", "DISPATCHES", "DEFERRED", "MEAN", "P90")
			for _, st := range res.Stats {
				fmt.Printf("%-10s %-5s %10d %9d %12s %12s\n",
					st.Source, st.Priority, st.Dispatches, st.Deferred,
					st.MeanLatency, st.P90Latency)
			}
			fmt.Printf("shared counter: %d (high-priority misses: %d)\n",
				res.Shared, res.LockMisses)
			return nil
		},
	}
)

func init() {
	runCmd.Flags().StringVarP(&runOpts.file, "file", "f", "", "scenario YAML file")
}
