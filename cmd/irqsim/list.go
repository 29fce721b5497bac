package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonas-schievink/irq/sim"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		for _, sc := range sim.Catalog() {
			sources := make([]string, len(sc.Sources))
			for i, src := range sc.Sources {
				sources[i] = fmt.Sprintf("%s(%s)", src.Name, src.Priority)
			}
			fmt.Printf("%-10s %s\n", sc.Name, strings.Join(sources, " "))
			if sc.Description != "" {
				fmt.Printf("           %s\n", strings.TrimSpace(sc.Description))
			}
		}
	},
}
