package main

import (
	"github.com/spf13/cobra"

	"github.com/orneryd/microinfer/pkg/config"
)

var profilePath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "microinfer",
		Short: "Load and run compact feed-forward inference models",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if profilePath == "" {
				return nil
			}
			profile, err := config.LoadBuildProfileFile(profilePath)
			if err != nil {
				return err
			}
			profile.Apply()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&profilePath, "profile", "", "path to a microinfer.yaml BuildProfile")

	root.AddCommand(newLoadCmd())
	root.AddCommand(newInferCmd())
	root.AddCommand(newInspectCmd())

	return root
}
