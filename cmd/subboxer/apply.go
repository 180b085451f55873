package main

import (
	"github.com/aretw0/subboxer/internal/cli"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <transforms.star> <particles.star> <output.star>",
	Short: "Apply subparticle transforms to particle poses",
	Long: `Composes every local transform with every particle pose and writes the derived
subparticle poses, grouped by transform.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ApplyOptions{
			Transforms: args[0],
			Poses:      args[1],
			Output:     args[2],
			Stdout:     cmd.OutOrStdout(),
			Stderr:     cmd.ErrOrStderr(),
		}
		opts.ConfigPath, opts.ConfigSet, opts.Debug = configFlags(cmd)
		opts.Workers, _ = cmd.Flags().GetInt("workers")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		_, err := cli.Apply(cmd.Context(), opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().IntP("workers", "w", 0, "Concurrent workers (default: configured, else one per CPU)")
	applyCmd.Flags().Bool("json", false, "Print the summary as JSON")
}
