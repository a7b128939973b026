// Package main provides the trojan command-line interface: a
// cycle-accurate simulator for a RISC-V out-of-order core.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trojan",
	Short: "Cycle-accurate RISC-V out-of-order core simulator",
	Long: `trojan simulates a superscalar out-of-order RISC-V (RV64IMC) core ` +
		`with register renaming, reservation stations, a reorder buffer, ` +
		`speculative loads, and a branch/target predictor with a return-address stack.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
