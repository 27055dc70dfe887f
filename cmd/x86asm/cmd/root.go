package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "x86asm",
	Short: "A table-driven x86 assembler and disassembler",
	Long:  `x86asm assembles single lines or whole files of x86 assembly to machine code, and disassembles machine code back to text.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core operations",
	})

	rootCmd.AddCommand(assembleLineCmd)
	rootCmd.AddCommand(assembleFileCmd)
	rootCmd.AddCommand(disassembleCmd)

	assembleFileCmd.Flags().StringP("output", "o", "", "write the assembled binary to this file instead of printing hex")
	assembleFileCmd.Flags().Int64("base", 0, "code base address used to resolve absolute label references")
}
