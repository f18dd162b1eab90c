package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the outlook-mcp application
var rootCmd = &cobra.Command{
	Use:   "outlook-mcp",
	Short: "MCP server for Microsoft Outlook mail, calendar and contacts",
	Long: `outlook-mcp exposes a locally running Microsoft Outlook to AI assistants
through the Model Context Protocol (MCP).

It automates the desktop Outlook application, so it needs Windows with
Outlook installed and signed in. Tools cover mail, attachments, folders,
calendar and meetings, contacts and out-of-office replies.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// configFile is the --config flag shared by every command.
var configFile string

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "outlook-mcp version %s\n" .Version}}`)

	// Without a subcommand the server is started on stdio, which is how MCP
	// clients launch it.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is the user config dir, outlook-mcp/config.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newConfigCmd())
}
