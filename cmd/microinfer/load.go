package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <model-file>",
		Short: "Load a model file and report whether it parses cleanly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModelFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("loaded %s: task=%s quantization=%s inputs=%d outputs=%d neurons=%d weights=%d\n",
				args[0], m.TaskType, m.Quantization, m.InputsDim, m.OutputsDim, m.NeuronsCount, m.WeightDim)
			return nil
		},
	}
}
