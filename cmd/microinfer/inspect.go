package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <model-file>",
		Short: "Print a loaded model's full shape and flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModelFile(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("task:                %s\n", m.TaskType)
			fmt.Printf("quantization:        %s\n", m.Quantization)
			fmt.Printf("inputs:              %d\n", m.InputsDim)
			fmt.Printf("outputs:             %d\n", m.OutputsDim)
			fmt.Printf("neurons:             %d\n", m.NeuronsCount)
			fmt.Printf("weights:             %d\n", m.WeightDim)
			fmt.Printf("mapped (zero-copy):  %v\n", m.Mapped())
			fmt.Printf("one-limit-for-all:   %v\n", m.OneLimitForAllInputs)
			fmt.Printf("log-scale-outputs:   %v\n", m.LogScaleOutExists)
			fmt.Printf("force-integer-calc:  %v\n", m.ForceIntegerCalculations)
			return nil
		},
	}
}
