package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Fallou236/blackbox-cleaner/internal/cli"
	"github.com/Fallou236/blackbox-cleaner/internal/common"
	"github.com/Fallou236/blackbox-cleaner/internal/config"
	"github.com/Fallou236/blackbox-cleaner/internal/model"
	"github.com/Fallou236/blackbox-cleaner/internal/service"
)

func cleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean, scrub, and merge the user and transaction exports",
		Long: `Run the full pipeline: load both exports (tolerating partially corrupt
input), classify every field, mask PII, normalize dates and numbers, merge
the two sets on an automatically detected key, and write the result as CSV.`,
		RunE: runClean,
	}

	cmd.Flags().StringP("users", "u", "", "path to the users JSON export (required)")
	cmd.Flags().StringP("transactions", "t", "", "path to the transactions export, JSON or OFX (required)")
	cmd.Flags().StringP("output", "o", "cleaned.csv", "path of the CSV to write")
	cmd.Flags().Bool("no-progress", false, "disable the transform progress bar")
	_ = cmd.MarkFlagRequired("users")
	_ = cmd.MarkFlagRequired("transactions")

	// Bind to viper
	_ = viper.BindPFlag("clean.users", cmd.Flags().Lookup("users"))
	_ = viper.BindPFlag("clean.transactions", cmd.Flags().Lookup("transactions"))
	_ = viper.BindPFlag("clean.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("clean.no_progress", cmd.Flags().Lookup("no-progress"))

	return cmd
}

func runClean(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	usersPath := config.ExpandPath(viper.GetString("clean.users"))
	transactionsPath := config.ExpandPath(viper.GetString("clean.transactions"))
	outputPath := config.ExpandPath(viper.GetString("clean.output"))

	var opts []service.Option
	if !viper.GetBool("clean.no_progress") {
		opts = append(opts, service.WithProgress())
	}

	slog.Info(cli.FormatTitle("Cleaning and merging exports"))

	cleaner := service.NewCleaner(opts...)
	_, report, err := cleaner.Clean(ctx, usersPath, transactionsPath, outputPath)
	if err != nil {
		common.LogError(err, cli.FormatError("Run aborted"), common.Fields{
			"users":        usersPath,
			"transactions": transactionsPath,
		})
		return common.NewUserError("cleaning run failed", err)
	}

	slog.Info(cli.RenderBox("Run summary", summarize(report, outputPath)))
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Wrote %s", outputPath)))

	return nil
}

func summarize(report *model.Report, outputPath string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Users loaded: %d (skipped %d)\n", report.UsersLoaded, report.UsersSkipped)
	fmt.Fprintf(&b, "Transactions loaded: %d (skipped %d)\n", report.TransactionsLoaded, report.TransactionsSkipped)

	if report.DegradedJoin {
		b.WriteString(cli.FormatWarning("Join: DEGRADED (no common key, concatenated)") + "\n")
	} else {
		fmt.Fprintf(&b, "Join key: %s\n", report.JoinKey)
	}

	fmt.Fprintf(&b, "Identifier column: %s\n", report.IDColumn)
	if report.SynthesizedIDs > 0 {
		fmt.Fprintf(&b, "Synthesized identifiers: %d\n", report.SynthesizedIDs)
	}
	if report.TransformFallbacks > 0 {
		fmt.Fprintf(&b, "Transform fallbacks: %d\n", report.TransformFallbacks)
	}

	fmt.Fprintf(&b, "Output: %s (%d rows × %d columns, %s)",
		outputPath, report.Rows, report.Columns, report.Duration.Round(time.Millisecond))

	return b.String()
}
