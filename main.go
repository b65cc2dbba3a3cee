package main

import (
	"os"

	"github.com/kbhargava/promptline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
