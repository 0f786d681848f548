package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bluehealth/cooccur/internal/artifact"
	"github.com/bluehealth/cooccur/internal/config"
)

// NewArtifactsCmd creates the artifacts command.
func NewArtifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts [category...]",
		Short: "List counts artifacts under the project root",
		Long: `Artifacts lists every counts artifact found under the project root with
its shape and collection mode.

With category arguments it shows instead which artifact 'analyze' would
load for each category and which locations were searched.

Examples:
  # List every artifact
  cooccur artifacts

  # Show where the activities artifact is found
  cooccur artifacts activities`,
		RunE: runArtifactsCmd,
	}

	addProjectFlags(cmd)

	return cmd
}

// runArtifactsCmd executes the artifacts command.
func runArtifactsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	logger, err := setupLogger(cmd, cfg.Verbose)
	if err != nil {
		return err
	}
	resolver := newResolver(cfg, logger)
	out := cmd.OutOrStdout()

	if len(args) > 0 {
		return resolveArtifacts(out, cfg, resolver)
	}
	return listArtifacts(out, cfg, resolver)
}

// listArtifacts prints every artifact under the project root.
func listArtifacts(out io.Writer, cfg *config.Config, resolver *artifact.Resolver) error {
	paths, err := resolver.List()
	if err != nil {
		return fmt.Errorf("failed to list artifacts: %w", err)
	}

	if len(paths) == 0 {
		fmt.Fprintf(out, "No artifacts found under %s\n", displayRoot(cfg))
		fmt.Fprintln(out, "\nUse 'cooccur collect' to collect counts.")
		return nil
	}

	fmt.Fprintf(out, "Artifacts under %s (%d):\n\n", displayRoot(cfg), len(paths))
	fmt.Fprintf(out, "  %-50s  %-11s  %-8s  %s\n", "Path", "Shape", "Mode", "Collected")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))

	for _, path := range paths {
		rel := relPath(cfg.ProjectRoot, path)
		m, err := artifact.Load(path)
		if err != nil {
			fmt.Fprintf(out, "  %-50s  invalid: %v\n", rel, err)
			continue
		}
		nA, nB := m.Shape()
		collected := "unknown"
		if !m.CollectedAt.IsZero() {
			collected = m.CollectedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "  %-50s  %-11s  %-8s  %s\n",
			rel, fmt.Sprintf("%d x %d", nA, nB), m.Mode(), collected)
	}

	fmt.Fprintln(out, "\nUse 'cooccur artifacts <category>' to see which artifact analyze loads.")
	return nil
}

// resolveArtifacts prints the artifact each selected category resolves to.
func resolveArtifacts(out io.Writer, cfg *config.Config, resolver *artifact.Resolver) error {
	for _, cat := range cfg.Categories {
		name := cat.ArtifactName()
		fmt.Fprintf(out, "%s (%s):\n", cat.DisplayName(), name)

		path, err := resolver.Resolve(name)
		switch {
		case errors.Is(err, artifact.ErrArtifactNotFound):
			fmt.Fprintln(out, "  not found, searched:")
			for _, c := range resolver.Candidates(name) {
				fmt.Fprintf(out, "    %s\n", relPath(cfg.ProjectRoot, c))
			}
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "  %s\n", relPath(cfg.ProjectRoot, path))
		}
	}
	return nil
}

// displayRoot returns the project root for messages.
func displayRoot(cfg *config.Config) string {
	if cfg.ProjectRoot == "" {
		return "."
	}
	return cfg.ProjectRoot
}

// relPath returns path relative to root when possible.
func relPath(root, path string) string {
	if root == "" {
		root = "."
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
