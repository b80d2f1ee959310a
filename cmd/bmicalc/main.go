package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/somanole/bmicalc/internal/bmi"
	"github.com/somanole/bmicalc/internal/render"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bmicalc",
		Short: "Body mass index calculator",
		Long: `bmicalc computes body mass index from weight (kg) and height (m)
and reports one of four categories: Underweight, Normal weight,
Overweight or Obese.

Run "bmicalc serve" to start the web form and JSON API, or
"bmicalc calc" for a one-off calculation in the terminal.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newCalcCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var verr *bmi.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, render.Error(verr.Message))
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, render.Error(err.Error()))
		os.Exit(1)
	}
}
