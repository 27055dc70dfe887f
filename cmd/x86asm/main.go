package main

import "github.com/keurnel/x86asm/cmd/x86asm/cmd"

func main() {
	cmd.Execute()
}
