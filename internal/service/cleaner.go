// Package service wires the pipeline stages together: load both inputs,
// classify and transform each set, merge, normalize, and export.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Fallou236/blackbox-cleaner/internal/classify"
	"github.com/Fallou236/blackbox-cleaner/internal/common"
	"github.com/Fallou236/blackbox-cleaner/internal/export"
	"github.com/Fallou236/blackbox-cleaner/internal/loader"
	"github.com/Fallou236/blackbox-cleaner/internal/merge"
	"github.com/Fallou236/blackbox-cleaner/internal/model"
	"github.com/Fallou236/blackbox-cleaner/internal/transform"
)

// Cleaner runs the full cleaning pipeline. The zero value is usable;
// options tweak presentation only, never semantics.
type Cleaner struct {
	showProgress bool
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithProgress enables a terminal progress bar during the transform stage.
func WithProgress() Option {
	return func(c *Cleaner) { c.showProgress = true }
}

// NewCleaner creates a pipeline runner.
func NewCleaner(opts ...Option) *Cleaner {
	c := &Cleaner{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean ingests the users and transactions exports, scrubs and normalizes
// them, merges them into one table, and writes it to outputPath as CSV.
// The in-memory table is returned alongside the run report so callers can
// inspect or re-export it. Stage-local problems (bad lines, unparseable
// values) are absorbed into the report; only dataset-level failures abort.
func (c *Cleaner) Clean(ctx context.Context, usersPath, transactionsPath, outputPath string) (*model.OutputTable, *model.Report, error) {
	start := time.Now()
	report := &model.Report{}

	users := loadInput(ctx, usersPath, "users", loader.Load, &report.UsersLoaded, &report.UsersSkipped)
	transactions := loadInput(ctx, transactionsPath, "transactions", loader.LoadTransactions, &report.TransactionsLoaded, &report.TransactionsSkipped)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	usersDone := c.transformSet(&users, "users", report)
	transactionsDone := c.transformSet(&transactions, "transactions", report)

	merged, res, err := merge.Merge(users, transactions)
	if err != nil {
		return nil, nil, fmt.Errorf("merging record sets: %w", err)
	}
	report.JoinKey = res.JoinKey
	report.DegradedJoin = res.Degraded
	report.IDColumn = res.IDColumn
	report.SynthesizedIDs = res.SynthesizedIDs

	if res.Degraded {
		slog.Warn("No common join key found; transactions were concatenated with user fields left empty")
	} else {
		slog.Info("Merged record sets", "join_key", res.JoinKey, "rows", merged.Len())
	}

	transformRemaining(&merged, usersDone, transactionsDone, report)

	cols := export.Columns(merged, res.IDColumn)
	table := export.Table(merged, cols)
	report.Rows = len(table.Rows)
	report.Columns = len(table.Columns)

	if err := export.WriteFile(outputPath, table); err != nil {
		return nil, nil, err
	}

	report.Duration = time.Since(start)
	slog.Info("Wrote cleaned dataset",
		"path", outputPath,
		"rows", report.Rows,
		"columns", report.Columns,
		"duration", report.Duration.Round(time.Millisecond))

	return table, report, nil
}

type loadFn func(context.Context, string) (model.RecordSet, int, error)

// loadInput loads one source file. A file with no recoverable records is
// fatal for that input only: the pipeline continues with an empty set and
// the merge stage decides whether the run as a whole can proceed.
func loadInput(ctx context.Context, path, label string, load loadFn, loaded, skipped *int) model.RecordSet {
	set, skip, err := load(ctx, path)
	*skipped = skip
	if err != nil {
		if errors.Is(err, common.ErrNoRecords) {
			slog.Warn("Input contains no recoverable records", "input", label, "path", path)
		} else {
			slog.Warn("Failed to load input", "input", label, "path", path, "error", err)
		}
		return model.RecordSet{}
	}
	*loaded = set.Len()
	if skip > 0 {
		slog.Warn("Skipped unparseable entries", "input", label, "path", path, "skipped", skip)
	}
	slog.Info("Loaded records", "input", label, "path", path, "records", set.Len())
	return set
}

// transformSet classifies every field of the set from a value sample and
// rewrites each value under its category. Returns the set of transformed
// field names so the post-merge pass only touches new columns.
func (c *Cleaner) transformSet(set *model.RecordSet, label string, report *model.Report) map[string]bool {
	done := make(map[string]bool, len(set.Fields))
	if set.Empty() {
		return done
	}

	bar := c.newBar(len(set.Fields), fmt.Sprintf("Transforming %s...", label))
	for _, field := range set.Fields {
		category := classify.Classify(field, set.Sample(field, classify.SampleSize))
		kind := model.KindNone
		if category == model.CategorySensitiveID {
			kind = classify.SensitiveKindOf(field)
		}
		slog.Debug("Classified field", "input", label, "field", field, "category", category)

		applyColumn(set, field, category, kind, report)
		done[field] = true
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	return done
}

// transformRemaining handles columns introduced by the merge itself:
// renamed identifiers and conflict-suffixed user fields map back to their
// already-transformed source columns, anything genuinely new is classified
// against the merged set.
func transformRemaining(set *model.RecordSet, usersDone, transactionsDone map[string]bool, report *model.Report) {
	for _, field := range set.Fields {
		if usersDone[field] || transactionsDone[field] {
			continue
		}
		if base := strings.TrimSuffix(field, "_user"); base != field && usersDone[base] {
			continue
		}
		if field == merge.IDColumn {
			// Either a renamed, already-transformed transaction ID or a
			// freshly synthesized sequence.
			continue
		}

		category := classify.Classify(field, set.Sample(field, classify.SampleSize))
		kind := model.KindNone
		if category == model.CategorySensitiveID {
			kind = classify.SensitiveKindOf(field)
		}
		applyColumn(set, field, category, kind, report)
	}
}

func applyColumn(set *model.RecordSet, field string, category model.FieldCategory, kind model.SensitiveKind, report *model.Report) {
	for _, rec := range set.Records {
		v, ok := rec[field]
		if !ok {
			continue
		}
		out, parsed := transform.Transform(v, category, kind)
		if !parsed {
			report.TransformFallbacks++
		}
		rec[field] = out
	}
}

func (c *Cleaner) newBar(total int, description string) *progressbar.ProgressBar {
	if !c.showProgress {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
	)
}
