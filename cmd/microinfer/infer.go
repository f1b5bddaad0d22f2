package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orneryd/microinfer/pkg/kernel"
	"github.com/orneryd/microinfer/pkg/telemetry"
)

func newInferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "infer <model-file> <comma-separated-inputs>",
		Short: "Run one inference pass and print the denormalized output",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModelFile(args[0])
			if err != nil {
				return err
			}

			inputs, err := parseInputs(args[1], int(m.InputsDim))
			if err != nil {
				return err
			}

			m.NormalizeSample(inputs)
			if err := kernel.Run(context.Background(), m, inputs, telemetry.Noop()); err != nil {
				return fmt.Errorf("inference failed: %w", err)
			}

			result := append([]float32(nil), m.OutputBuffer...)
			m.DenormalizeResult(result)

			parts := make([]string, len(result))
			for i, v := range result {
				parts[i] = strconv.FormatFloat(float64(v), 'f', 6, 32)
			}
			fmt.Println(strings.Join(parts, ","))
			return nil
		},
	}
}

// parseInputs accepts either inputsDim values, or inputsDim-1 values
// with the bias slot appended automatically — matching the bias
// convention pkg/dataset applies when reading samples from a dataset
// file (ReadSample always appends the trailing 1.0 itself).
func parseInputs(csv string, inputsDim int) ([]float32, error) {
	fields := strings.Split(csv, ",")
	values := make([]float32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid input value %q: %w", f, err)
		}
		values = append(values, float32(v))
	}

	switch len(values) {
	case inputsDim:
		return values, nil
	case inputsDim - 1:
		return append(values, 1.0), nil
	default:
		return nil, fmt.Errorf("expected %d or %d input values, got %d", inputsDim-1, inputsDim, len(values))
	}
}
