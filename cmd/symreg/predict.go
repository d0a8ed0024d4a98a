package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symreg-dev/symreg/engine"
	"github.com/symreg-dev/symreg/sr"
)

// newPredictCmd fits against --train-data, exactly as "fit" does, then
// predicts --predict-data and prints one value per row. A one-shot CLI
// process has no solver handle to reuse across invocations the way the
// C-ABI's CreateSolver/DeleteSolver pair does, so "predict" always refits
// first; this is the documented resolution to that gap.
func newPredictCmd() *cobra.Command {
	var f searchFlags
	var trainPath, predictPath string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Fit against training data, then predict a features-only CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			X, y, err := loadXY(trainPath, f.targetCol)
			if err != nil {
				return err
			}

			cs := sr.CodeSettings{
				InputSize:   uint32(len(X[0])),
				ConstSize:   f.constSize,
				MinCodeSize: f.minCodeSize,
				MaxCodeSize: f.maxCodeSize,
			}
			sp, err := f.solverParams(cs)
			if err != nil {
				return err
			}

			eng, err := engine.CreateEngine(sp)
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.Fit(X, y, nil, f.fitParams(), progressLogger(f.verbose)); err != nil {
				return err
			}

			predX, err := loadX(predictPath)
			if err != nil {
				return err
			}
			out, err := eng.Predict(predX, engine.PredictBest)
			if err != nil {
				return err
			}
			for _, v := range out {
				fmt.Println(v)
			}
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&trainPath, "train-data", "", "training CSV path (required)")
	cmd.Flags().StringVar(&predictPath, "predict-data", "", "features-only CSV path (required)")
	cmd.MarkFlagRequired("train-data")
	cmd.MarkFlagRequired("predict-data")
	return cmd
}
