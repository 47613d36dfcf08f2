package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Fallou236/blackbox-cleaner/internal/classify"
	"github.com/Fallou236/blackbox-cleaner/internal/cli"
	"github.com/Fallou236/blackbox-cleaner/internal/config"
	"github.com/Fallou236/blackbox-cleaner/internal/loader"
	"github.com/Fallou236/blackbox-cleaner/internal/model"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the inferred category of every field in an export",
		Long: `Load one export file and report, per field, the semantic category the
classifier infers from the field name and a sample of its values. Useful
for checking how a dataset will be treated before running 'clean'.`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := config.ExpandPath(args[0])

	set, skipped, err := loader.LoadTransactions(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", path, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Records: %d", set.Len())
	if skipped > 0 {
		fmt.Fprintf(&b, " (skipped %d)", skipped)
	}
	b.WriteString("\n\n")

	for _, field := range set.Fields {
		category := classify.Classify(field, set.Sample(field, classify.SampleSize))
		line := fmt.Sprintf("%-24s %s", field, category)
		if category == model.CategorySensitiveID {
			line += fmt.Sprintf(" (%s)", classify.SensitiveKindOf(field))
		}
		b.WriteString(line + "\n")
	}

	slog.Info(cli.RenderBox(path, strings.TrimRight(b.String(), "\n")))
	return nil
}
