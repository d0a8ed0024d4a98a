package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symreg-dev/symreg/sr/csvdata"
	"github.com/symreg-dev/symreg/sr/xicor"
)

func newXicorCmd() *cobra.Command {
	var dataPath string
	var colX, colY int

	cmd := &cobra.Command{
		Use:   "xicor",
		Short: "Print the Xicor and Pearson correlation between two CSV columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := csvdata.Load(dataPath)
			if err != nil {
				return err
			}
			if colX < 0 || colX >= f.ColumnsCount() || colY < 0 || colY >= f.ColumnsCount() {
				return fmt.Errorf("symreg: --col-x/--col-y must be in [0, %d)", f.ColumnsCount())
			}

			x := make([]float64, len(f.Rows))
			y := make([]float64, len(f.Rows))
			for i, row := range f.Rows {
				x[i] = row[colX]
				y[i] = row[colY]
			}

			fmt.Printf("xicor: %g\n", xicor.Xicor(x, y))
			fmt.Printf("pearson: %g\n", xicor.Pearson(x, y))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "CSV path (required)")
	cmd.Flags().IntVar(&colX, "col-x", 0, "column index of X")
	cmd.Flags().IntVar(&colY, "col-y", 1, "column index of Y")
	cmd.MarkFlagRequired("data")
	return cmd
}
