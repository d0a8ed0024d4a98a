// Command symreg is the CLI entry point of the search engine: fit a
// population of programs against a CSV dataset, predict with the result,
// or compute the Xicor/Pearson correlation between two data columns (§6).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "symreg",
		Short: "Symbolic-regression search engine",
	}
	root.AddCommand(newFitCmd(), newPredictCmd(), newXicorCmd())
	return root
}
