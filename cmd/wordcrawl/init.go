package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/wordcrawl/internal/config"
)

//go:embed templates/wordcrawl.yaml
var configTemplate embed.FS

// templatePath is the path of the starter configuration inside configTemplate.
const templatePath = "templates/wordcrawl.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter wordcrawl configuration file",
		Long: `Init writes a commented .wordcrawl.yaml to the current directory.

The generated file documents every setting: start pages, timeout, depth,
parallelism, ignored URLs and words, output paths, and HTTP options.

Examples:
  # Create .wordcrawl.yaml in current directory
  wordcrawl init

  # Create config file at a specific path
  wordcrawl init -o crawl.yaml

  # Force overwrite existing file
  wordcrawl init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if err := ensureParentDir(outputPath); err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to set:")
	fmt.Fprintln(out, "  - Start pages, depth and timeout")
	fmt.Fprintln(out, "  - URL and word patterns to ignore")
	fmt.Fprintln(out, "  - Cookies and headers for authenticated sites")

	return nil
}

// ensureParentDir creates the directory of path if it does not exist.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
