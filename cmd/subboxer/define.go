package main

import (
	"github.com/aretw0/subboxer/internal/cli"
	"github.com/spf13/cobra"
)

// defineCmd represents the define command
var defineCmd = &cobra.Command{
	Use:   "define [map.mrc]",
	Short: "Define subparticles on a map",
	Long: `Opens an annotation session on the given map. Commands are read from stdin as
text lines, or as NDJSON with --json, or as MCP tool calls with --mcp. With --serve the
session is also driven over HTTP, and --publish mirrors its events to Redis.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.DefineOptions{
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}
		if len(args) > 0 {
			opts.MapPath = args[0]
		}
		opts.ConfigPath, opts.ConfigSet, opts.Debug = configFlags(cmd)
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Events, _ = cmd.Flags().GetBool("events")
		opts.Serve, _ = cmd.Flags().GetString("serve")
		opts.ExportDir, _ = cmd.Flags().GetString("export-dir")
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.Validate, _ = cmd.Flags().GetBool("validate")
		opts.MCP, _ = cmd.Flags().GetBool("mcp")
		opts.Publish, _ = cmd.Flags().GetString("publish")
		return cli.Define(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(defineCmd)

	defineCmd.Flags().Bool("json", false, "Read and write NDJSON instead of text")
	defineCmd.Flags().Bool("events", false, "Stream session events (with --json)")
	defineCmd.Flags().String("serve", "", "Also serve the annotation API on this address, e.g. :8080")
	defineCmd.Flags().String("export-dir", "", "Directory HTTP exports are written to (default: working directory)")
	defineCmd.Flags().Bool("headless", false, "Serve only; do not read commands from stdin")
	defineCmd.Flags().Bool("validate", true, "Check HTTP request bodies against the OpenAPI description")
	defineCmd.Flags().Bool("mcp", false, "Serve MCP tools on stdin/stdout instead of the command loop")
	defineCmd.Flags().String("publish", "", "Publish session events to Redis, e.g. redis://localhost:6379/0")
}
