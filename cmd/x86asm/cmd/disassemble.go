package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/keurnel/x86asm/codec"
	"github.com/spf13/cobra"
)

var disassembleCmd = &cobra.Command{
	Use:     "disassemble <hex-bytes>",
	GroupID: "core",
	Short:   "Disassemble a hex byte stream into instruction text.",
	Long:    `Disassemble a hex byte stream into instruction text, one instruction per line.`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDisassemble(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
		}
	},
}

func runDisassemble(cmd *cobra.Command, args []string) error {
	data, err := hex.DecodeString(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("invalid hex input: %w", err)
	}

	c := codec.New()
	for len(data) > 0 {
		text, n, ok := c.Decode(data)
		if !ok {
			return fmt.Errorf("no template matched the remaining %d byte(s)", len(data))
		}
		cmd.Println(text)
		data = data[n:]
	}
	return nil
}
