// Command diary reads and writes the diary store directly, without the
// HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/okian/dietcause/internal/adapters/repository"
	service "github.com/okian/dietcause/internal/app"
	"github.com/okian/dietcause/internal/config"
	"github.com/okian/dietcause/internal/domain/estimator"
	"github.com/okian/dietcause/internal/domain/model"
	"github.com/okian/dietcause/pkg/logger"
)

// ErrUsage reports a bad command line.
var ErrUsage = errors.New("usage")

const usage = `Usage: diary [-backend csv|sqlite] [-path FILE] <command> [flags]

Commands:
  add      append one day (-date -exercise -sleep -calories -weight -gender -age)
  tail     print the last rows (-n)
  analyze  estimate the effect of a treatment (-treatment)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, ErrUsage) {
			_, _ = io.WriteString(os.Stderr, usage)
			stop()
			os.Exit(2) //nolint:gocritic // stop called above
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(os.Stderr)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	fs := flag.NewFlagSet("diary", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	backend := fs.String("backend", cfg.StoreBackend, "store backend")
	path := fs.String("path", cfg.StorePath, "store file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	cfg.StoreBackend, cfg.StorePath = *backend, *path
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := repository.Open(ctx, cfg.StoreBackend, cfg.StorePath)
	if err != nil {
		return err
	}
	svc := service.New(
		service.WithStore(store),
		service.WithLearner(estimator.NewLRS(
			estimator.WithAlpha(cfg.CIAlpha),
			estimator.WithCovariance(estimator.Covariance(cfg.CICovariance)),
			estimator.WithBootstrap(cfg.BootstrapSamples, cfg.BootstrapSize),
			estimator.WithSeed(cfg.Seed),
		)),
		service.WithTailSize(cfg.TailSize),
		service.WithDefaultTreatment(model.Treatment(cfg.DefaultTreatment)),
		service.WithLogger(logger.Named("diary")),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return err
	}
	defer svc.Stop()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "add":
		return runAdd(ctx, svc, rest, out)
	case "tail":
		return runTail(ctx, svc, rest, out)
	case "analyze":
		return runAnalyze(ctx, svc, rest, out)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func runAdd(ctx context.Context, svc *service.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	date := fs.String("date", time.Now().Format(model.DateLayout), "calendar date, YYYY-MM-DD")
	exercise := fs.Int("exercise", 0, "exercise minutes")
	sleep := fs.Float64("sleep", 0, "sleep hours")
	calories := fs.Int("calories", 0, "calorie intake in kcal")
	weight := fs.Float64("weight", 0, "body weight in kg")
	gender := fs.String("gender", "female", "female|male or 0|1")
	age := fs.Int("age", 0, "age in years")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	d, err := model.ParseDate(*date)
	if err != nil {
		return err
	}
	g, err := model.ParseGender(*gender)
	if err != nil {
		return err
	}
	e := model.Entry{
		Date:        d,
		ExerciseMin: *exercise,
		SleepHr:     *sleep,
		CalorieKcal: *calories,
		WeightKg:    *weight,
		Gender:      g,
		Age:         *age,
	}
	if err := svc.Submit(ctx, e); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Saved %s.\n", e.DateString())
	return err
}

func runTail(ctx context.Context, svc *service.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tail", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	n := fs.Int("n", svc.TailSize(), "number of rows")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if *n < 1 {
		return fmt.Errorf("%w: -n must be positive", ErrUsage)
	}

	log, err := svc.Tail(ctx, *n)
	if errors.Is(err, service.ErrNoData) {
		_, err = fmt.Fprintln(out, "No data yet.")
		return err
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range model.Columns() {
		_, _ = fmt.Fprintf(tw, "%s\t", c)
	}
	_, _ = fmt.Fprintln(tw)
	for _, e := range log {
		for _, c := range model.Columns() {
			_, _ = fmt.Fprintf(tw, "%s\t", cell(e, c))
		}
		_, _ = fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func cell(e model.Entry, c model.Column) string {
	if !e.Has(c) {
		return ""
	}
	switch c {
	case model.ColDate:
		return e.DateString()
	case model.ColGender:
		return model.GenderLabel(e.Gender)
	default:
		v, err := e.Value(c)
		if err != nil {
			return ""
		}
		return fmt.Sprint(v)
	}
}

func runAnalyze(ctx context.Context, svc *service.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	treatment := fs.String("treatment", svc.DefaultTreatment().String(), "exercise_min|sleep_hr|calorie_kcal")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	t, err := model.ParseTreatment(*treatment)
	if err != nil {
		return err
	}

	report, err := svc.Analyze(ctx, t)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, report.Narrative())
	_, _ = fmt.Fprintln(out, report.IntervalSentence())
	for _, g := range report.GroupMeans {
		_, _ = fmt.Fprintf(out, "%s: mean %.3f kg over %d days\n", g.Label, service.Round3(g.Mean), g.Count)
	}
	_, err = fmt.Fprintf(out, "Rows: %d, median %s: %g\n", report.Rows, report.Treatment, report.Median)
	return err
}
