package main

import (
	"fmt"
	"os"

	"github.com/aretw0/subboxer/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "subboxer",
	Short: "Subboxer defines subparticles on a cryo-EM map and applies them to particle poses",
	Long: `Subboxer lets you place subparticle origins and orientations on a reference map,
exports them as local transforms, and derives one subparticle pose per transform and particle.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Settings file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable verbose logging of session events")
}

// configFlags reads the persistent flags shared by every command.
func configFlags(cmd *cobra.Command) (path string, explicit, debug bool) {
	path, _ = cmd.Flags().GetString("config")
	explicit = cmd.Flags().Changed("config")
	debug, _ = cmd.Flags().GetBool("debug")
	return path, explicit, debug
}
