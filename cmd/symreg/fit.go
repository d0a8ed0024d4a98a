package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symreg-dev/symreg/engine"
	"github.com/symreg-dev/symreg/sr"
)

func newFitCmd() *cobra.Command {
	var f searchFlags
	var dataPath string
	var predictPath string

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a program population against a CSV dataset and print the best model",
		RunE: func(cmd *cobra.Command, args []string) error {
			X, y, err := loadXY(dataPath, f.targetCol)
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

			model, err := eng.GetBestModel()
			if err != nil {
				return err
			}
			fmt.Printf("score: %g\n", model.Score)
			fmt.Printf("expression: %s\n", model.Expression)
			if model.Coeffs.Fitted {
				fmt.Printf("affine refit: y ~= %g + %g*expr\n", model.Coeffs.B0, model.Coeffs.B1)
			}
			fmt.Printf("numpy source:\n%s\n", model.GeneratedCode)

			if predictPath == "" {
				return nil
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
	cmd.Flags().StringVar(&dataPath, "data", "", "training CSV path (required)")
	cmd.Flags().StringVar(&predictPath, "predict-data", "", "optional features-only CSV to predict after fitting")
	cmd.MarkFlagRequired("data")
	return cmd
}
