package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/somanole/bmicalc/internal/bmi"
	"github.com/somanole/bmicalc/internal/render"
	"github.com/somanole/bmicalc/internal/server"
)

func newCalcCmd() *cobra.Command {
	var (
		weight string
		height string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate BMI for a single measurement",
		Example: `  bmicalc calc --weight 70 --height 1.75
  bmicalc calc -w 120 -H 1.80 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			m, err := bmi.ParseMeasurement(weight, height)
			if err != nil {
				var verr *bmi.ValidationError
				if asJSON && errors.As(err, &verr) {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					if encErr := enc.Encode(server.ErrorResponse{Error: verr.Message, Code: string(verr.Code)}); encErr != nil {
						return fmt.Errorf("write json: %w", encErr)
					}
				}
				return err
			}

			res := bmi.Classify(m)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(server.NewCalculateResponse(res)); err != nil {
					return fmt.Errorf("write json: %w", err)
				}
				return nil
			}

			fmt.Fprintln(out, render.Result(res))
			return nil
		},
	}

	cmd.Flags().StringVarP(&weight, "weight", "w", "", "weight in kilograms")
	cmd.Flags().StringVarP(&height, "height", "H", "", "height in meters (e.g. 1.75)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the API response body instead of a summary")

	return cmd
}
