package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lesc-ufv/RISC-V-Trojan/timing/params"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Write the default parameter file",
	Long: `Params writes the default core parameters as JSON, as a starting ` +
		`point for a custom --params file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		out, _ := cmd.Flags().GetString("output")
		p := params.Default()
		if out == "" || out == "-" {
			data, err := p.MarshalIndent()
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		}
		return p.Save(out)
	},
}

func init() {
	paramsCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(paramsCmd)
}
