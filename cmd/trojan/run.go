package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lesc-ufv/RISC-V-Trojan/emu"
	"github.com/lesc-ufv/RISC-V-Trojan/loader"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/core"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/params"
)

var runCmd = &cobra.Command{
	Use:   "run <program>",
	Short: "Run a RISC-V program to completion",
	Long: `Run loads a 64-bit RISC-V ELF executable (or a flat binary with --flat) ` +
		`and simulates it cycle by cycle until the program halts or the cycle ` +
		`limit is reached.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runProgram(cmd, args[0])
	},
}

func init() {
	runCmd.Flags().String("params", "", "path to a JSON parameter file")
	runCmd.Flags().Uint64("max-cycles", 10_000_000, "cycle limit")
	runCmd.Flags().Uint64("entry", 0, "entry point override (also the base for --flat)")
	runCmd.Flags().Bool("flat", false, "treat the program as a raw flat binary")
	runCmd.Flags().String("trace", "", "write a per-commit trace to a file ('-' for stdout)")
	runCmd.Flags().BoolP("verbose", "v", false, "print the statistics report")
	rootCmd.AddCommand(runCmd)
}

func runProgram(cmd *cobra.Command, path string) error {
	paramsPath, _ := cmd.Flags().GetString("params")
	maxCycles, _ := cmd.Flags().GetUint64("max-cycles")
	entry, _ := cmd.Flags().GetUint64("entry")
	flat, _ := cmd.Flags().GetBool("flat")
	tracePath, _ := cmd.Flags().GetString("trace")
	verbose, _ := cmd.Flags().GetBool("verbose")

	p := params.Default()
	if paramsPath != "" {
		var err error
		p, err = params.Load(paramsPath)
		if err != nil {
			return err
		}
	}

	var prog *loader.Program
	var err error
	if flat {
		prog, err = loader.LoadFlat(path, entry)
	} else {
		prog, err = loader.Load(path)
	}
	if err != nil {
		return err
	}
	if entry != 0 {
		prog.EntryPoint = entry
	}

	memory := emu.NewMemory()
	prog.Place(memory)

	var opts []core.Option
	var traceFile *os.File
	if tracePath != "" {
		var w io.Writer = os.Stdout
		if tracePath != "-" {
			traceFile, err = os.Create(tracePath)
			if err != nil {
				return fmt.Errorf("failed to create trace file: %w", err)
			}
			w = traceFile
		}
		opts = append(opts, core.WithTrace(w))
	}

	c := core.New(memory, p, opts...)
	c.Pipeline.RegisterFile().SetValue(2, prog.InitialSP)
	c.SetPC(prog.EntryPoint)

	halted := c.Run(maxCycles)
	if !halted {
		fmt.Fprintf(os.Stderr, "cycle limit reached after %d cycles\n", maxCycles)
	}

	if verbose {
		printReport(path, c)
	}

	// os.Exit skips deferred calls, so the trace file is closed here.
	if traceFile != nil {
		_ = traceFile.Close()
	}
	os.Exit(int(c.ExitCode() & 0xff))
	return nil
}

func printReport(path string, c *core.Core) {
	stats := c.Stats()
	fmt.Printf("\n")
	fmt.Printf("Program: %s\n", path)
	fmt.Printf("Exit code: %d\n", c.ExitCode())
	fmt.Printf("Instructions committed: %d\n", stats.Engine.Committed)
	fmt.Printf("Cycles: %d\n", stats.Engine.Cycles)
	fmt.Printf("CPI: %.2f\n", stats.Engine.CPI())
	fmt.Printf("\n")
	fmt.Printf("Engine events:\n")
	fmt.Printf("  Issue stalls:      %d\n", stats.Engine.IssueStalls)
	fmt.Printf("  Flushes:           %d\n", stats.Engine.Flushes)
	fmt.Printf("  Mispredicts:       %d\n", stats.Engine.Mispredicts)
	fmt.Printf("  Hazard flushes:    %d\n", stats.Engine.HazardFlushes)
	fmt.Printf("  Misaligned stores: %d\n", stats.Engine.MisalignedStores)
	fmt.Printf("\n")
	fmt.Printf("Predictor:\n")
	fmt.Printf("  Lookups: %d\n", stats.Predictor.Lookups)
	fmt.Printf("  Hit rate: %.1f%%\n", stats.Predictor.HitRate())
	fmt.Printf("  Direction accuracy: %.1f%%\n", stats.Predictor.DirectionAccuracy())
	fmt.Printf("\n")
	fmt.Printf("Caches:\n")
	fmt.Printf("  I-cache hit rate: %.1f%% (%d accesses)\n",
		stats.ICache.HitRate()*100, stats.ICache.Hits+stats.ICache.Misses)
	fmt.Printf("  D-cache hit rate: %.1f%% (%d accesses)\n",
		stats.DCache.HitRate()*100, stats.DCache.Hits+stats.DCache.Misses)
}
