package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/wayfarer-labs/planner/internal/pkg/proctitle"
)

func main() {
	_ = proctitle.Set(proctitle.For("ctl"))
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
