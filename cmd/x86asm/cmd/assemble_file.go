package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/keurnel/x86asm/codec"
	"github.com/keurnel/x86asm/program"
	"github.com/spf13/cobra"
)

var assembleFileCmd = &cobra.Command{
	Use:     "assemble-file <assembly-file>",
	GroupID: "core",
	Short:   "Assemble a program file into machine code.",
	Long:    `Assemble a program file into machine code, resolving labels and arithmetic across the whole file.`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAssembleFile(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
		}
	},
}

// runAssembleFile resolves the source file, parses and processes it, and
// either prints the resulting hex or writes the raw binary to --output.
func runAssembleFile(cmd *cobra.Command, args []string) error {
	fullPath, source, err := loadProgramSource(args)
	if err != nil {
		return err
	}

	base, err := cmd.Flags().GetInt64("base")
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	a := program.New(codec.New())
	if err := a.ParseFile(source); err != nil {
		return fmt.Errorf("failed to parse %s: %w", fullPath, err)
	}
	if err := a.ProcessNodes(base); err != nil {
		return fmt.Errorf("failed to process %s: %w", fullPath, err)
	}

	if output != "" {
		bin, err := a.Assemble()
		if err != nil {
			return fmt.Errorf("failed to assemble %s: %w", fullPath, err)
		}
		if err := os.WriteFile(output, bin, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		return nil
	}

	hexText, err := a.Hexify()
	if err != nil {
		return fmt.Errorf("failed to assemble %s: %w", fullPath, err)
	}
	cmd.Println(hexText)
	return nil
}

// loadProgramSource validates the single positional argument, resolves it to
// an absolute path, and reads it whole. It rejects a directory explicitly
// rather than letting os.ReadFile fail with a less specific error.
func loadProgramSource(args []string) (fullPath, source string, err error) {
	if len(args) != 1 || args[0] == "" {
		return "", "", fmt.Errorf("expected exactly one assembly file argument")
	}

	fullPath, err = filepath.Abs(args[0])
	if err != nil {
		return "", "", fmt.Errorf("resolving path %s: %w", args[0], err)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return "", "", fmt.Errorf("assembly file %s: %w", fullPath, err)
	}
	if info.IsDir() {
		return "", "", fmt.Errorf("assembly file %s is a directory", fullPath)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", fullPath, err)
	}
	return fullPath, string(data), nil
}
