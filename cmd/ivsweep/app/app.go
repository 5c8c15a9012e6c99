package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"

	"github.com/peregrinescode/keithley2614B/instrument"
	"github.com/peregrinescode/keithley2614B/logger"
	"github.com/peregrinescode/keithley2614B/storage"
	"github.com/peregrinescode/keithley2614B/sweep"
)

// Run executes the configured sweep, reads the measurement buffer back and,
// when a database is configured, persists the run.
func Run(ctx context.Context, config *Config, log logger.Logger) error {
	spec, err := config.Spec()
	if err != nil {
		return err
	}

	var sessionOpts []instrument.Option
	if config.Settings.QueryTimeout > 0 {
		sessionOpts = append(sessionOpts, instrument.WithQueryTimeout(time.Duration(config.Settings.QueryTimeout)))
	}

	if idn, err := identify(config.Settings.Address, sessionOpts); err != nil {
		log.Warn("instrument identification failed", "error", err)
	} else {
		log.Info("instrument identified", "idn", idn)
	}

	engine, err := sweep.NewEngine(ctx,
		sweep.WithLogger(log),
		sweep.WithSessionOptions(sessionOpts...),
	)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	op, err := engine.Execute(ctx, spec, config.Settings.Address)
	if err != nil {
		return fmt.Errorf("starting sweep: %w", err)
	}

	log.Info("sweep started",
		"variant", spec.Variant.String(),
		"points", spec.Points(),
		"estimate", op.EstimatedDuration().Round(time.Second).String(),
	)

	for ev := range op.Progress() {
		switch ev.Kind {
		case sweep.ProgressFraction:
			log.Info("sweep in progress", "percent", fmt.Sprintf("%.0f%%", ev.Fraction*100))
		case sweep.ProgressFailed:
			return fmt.Errorf("sweep failed: %w", ev.Err)
		}
	}
	if err = op.Err(); err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	records, err := engine.ReadBuffer(config.Settings.Address)
	if err != nil {
		return fmt.Errorf("reading buffer: %w", err)
	}

	log.Info("sweep complete", "records", len(records))

	if config.Storage.Database == "" {
		return nil
	}

	store := storage.NewSqliteStore(config.Storage.Database)
	defer store.Close()

	runID, err := store.CreateRun(ctx, config.Settings.Address, spec)
	if err != nil {
		return fmt.Errorf("persisting run: %w", err)
	}
	if err = store.StoreRecords(ctx, runID, records); err != nil {
		return fmt.Errorf("persisting records: %w", err)
	}

	log.Info("run stored", "id", runID, "database", config.Storage.Database)

	return nil
}

// identify opens a short-lived session and queries the identification
// string. Some firmware revisions leave *IDN? unanswered in TSP mode, so a
// failure here is advisory, not fatal.
func identify(address string, opts []instrument.Option) (idn string, err error) {
	sess, err := instrument.Open(address, opts...)
	if err != nil {
		return "", err
	}
	defer func() {
		err = multierr.Append(err, sess.Close())
	}()

	return sess.Identify()
}

// ListRuns prints the stored sweep runs, newest first.
func ListRuns(ctx context.Context, config *Config, w io.Writer) error {
	if config.Storage.Database == "" {
		return fmt.Errorf("no database configured")
	}

	store := storage.NewSqliteStore(config.Storage.Database)
	defer store.Close()

	runs, err := store.Runs(ctx)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	for _, run := range runs {
		fmt.Fprintf(w, "%6d  %-15s  %-30s  %s\n",
			run.ID, run.Variant, run.Address, humanize.Time(run.CreatedAt))
	}

	return nil
}

// ShowRecords prints a run's records as voltage/current pairs.
func ShowRecords(ctx context.Context, config *Config, runID int64, w io.Writer) error {
	if config.Storage.Database == "" {
		return fmt.Errorf("no database configured")
	}

	store := storage.NewSqliteStore(config.Storage.Database)
	defer store.Close()

	records, err := store.Records(ctx, runID)
	if err != nil {
		return fmt.Errorf("reading records: %w", err)
	}

	for _, rec := range records {
		fmt.Fprintf(w, "%12s  %12s\n",
			humanize.SIWithDigits(rec.Source, 3, "V"),
			humanize.SIWithDigits(rec.Measured, 3, "A"))
	}

	return nil
}
