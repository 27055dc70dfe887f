package cmd

import (
	"fmt"

	"github.com/keurnel/x86asm/codec"
	"github.com/spf13/cobra"
)

var assembleLineCmd = &cobra.Command{
	Use:     "assemble-line <instruction>",
	GroupID: "core",
	Short:   "Assemble a single instruction and print its machine code as hex.",
	Long:    `Assemble a single instruction and print its machine code as hex.`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAssembleLine(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
		}
	},
}

func runAssembleLine(cmd *cobra.Command, args []string) error {
	text := args[0]
	for _, a := range args[1:] {
		text += " " + a
	}

	c := codec.New()
	encoded, err := c.AssembleHex(text)
	if err != nil {
		return fmt.Errorf("failed to assemble %q: %w", text, err)
	}

	cmd.Println(encoded)
	return nil
}
