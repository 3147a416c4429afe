package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/advisor/internal/config"
	"github.com/alexisbeaulieu97/advisor/internal/demo/bank"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

const shutdownTimeout = 5 * time.Second

type demoOptions struct {
	iterations     int
	auditThreshold int
	serveMetrics   bool
	watch          bool
}

func newDemoCmd(flags *rootFlags) *cobra.Command {
	opts := &demoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a bank account workload through the configured advices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.iterations < 0 {
				return newCommandError("run demo", "reading --iterations", fmt.Errorf("negative value %d", opts.iterations), "Pass zero or a positive number of iterations.")
			}
			return runDemo(cmd, flags, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.iterations, "iterations", "n", 5, "Number of deposit/withdraw rounds")
	cmd.Flags().IntVar(&opts.auditThreshold, "audit-threshold", defaultAuditThreshold, "Smallest withdrawal recorded by the audit plugin")
	cmd.Flags().BoolVar(&opts.serveMetrics, "metrics", false, "Serve Prometheus metrics until interrupted")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reapply plugin switches when the configuration file changes")

	return cmd
}

func runDemo(cmd *cobra.Command, flags *rootFlags, opts *demoOptions) error {
	const operation = "run demo"

	cfg, err := loadConfig(operation, flags.configPath)
	if err != nil {
		return err
	}

	a, err := newApp(operation, cfg, appOptions{
		verbose:        flags.verbose,
		auditThreshold: opts.auditThreshold,
		logOutput:      cmd.ErrOrStderr(),
		traceOutput:    cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.Background()) }()

	typ, err := bank.Weave(a.registry)
	if err != nil {
		return newCommandError(operation, "weaving the demo type", err, "Check the class and method globs of every advisor.")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.watch {
		watcher := config.NewWatcher(flags.configPath, a.log, func(next *config.Config) error {
			return next.ApplyEnabled(a.registry)
		})
		if err := watcher.Start(ctx); err != nil {
			return newCommandError(operation, "watching the configuration", err, "Check that the configuration directory is readable.")
		}
		defer func() { _ = watcher.Close() }()
	}

	var server *http.Server
	if opts.serveMetrics {
		server = newMetricsServer(a)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error(err, "metrics server stopped")
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	summary, err := runWorkload(ctx, typ, opts.iterations)
	if err != nil {
		return newCommandError(operation, "running the workload", err, "Re-run with --verbose to see every advised call.")
	}
	printSummary(cmd.OutOrStdout(), summary, a.audit.Auditor().Entries())

	if opts.serveMetrics || opts.watch {
		if server != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Serving metrics on %s%s, press Ctrl+C to stop\n", cfg.Metrics.ListenAddress, cfg.Metrics.Path)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Watching configuration, press Ctrl+C to stop")
		}
		<-ctx.Done()
	}
	return nil
}

func newMetricsServer(a *app) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(a.config.Metrics.Path, promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              a.config.Metrics.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

type workloadSummary struct {
	Calls    int
	Rejected int
	Rate     int
	Balance  int
}

// runWorkload opens an account through the woven constructor and alternates
// deposits and withdrawals. Insufficient funds are counted, any other
// failure stops the run.
func runWorkload(ctx context.Context, typ *weave.Type, iterations int) (workloadSummary, error) {
	var summary workloadSummary

	created, err := typ.New("demo", 1000)
	if err != nil {
		return summary, err
	}
	acct, ok := created.(*bank.Account)
	if !ok {
		return summary, fmt.Errorf("constructor returned %T", created)
	}

	rate, err := typ.InvokeStatic("InterestRate", ctx, "premium")
	if err != nil {
		return summary, err
	}
	summary.Rate = rate.(int)
	summary.Calls++

	for i := 0; i < iterations && ctx.Err() == nil; i++ {
		if _, err := typ.Invoke(acct, "Deposit", ctx, 100*(i%3+1)); err != nil {
			return summary, err
		}
		summary.Calls++

		_, err := typ.Invoke(acct, "Withdraw", ctx, 250*(i%4+1))
		summary.Calls++
		switch {
		case errors.Is(err, bank.ErrInsufficientFunds):
			summary.Rejected++
		case err != nil:
			return summary, err
		}
	}

	balance, err := typ.Invoke(acct, "Balance", ctx)
	if err != nil {
		return summary, err
	}
	summary.Balance = balance.(int)
	summary.Calls++
	return summary, nil
}

func printSummary(w io.Writer, summary workloadSummary, audit []bank.AuditEntry) {
	fmt.Fprintf(w, "Calls: %d\n", summary.Calls)
	fmt.Fprintf(w, "Rejected withdrawals: %d\n", summary.Rejected)
	fmt.Fprintf(w, "Premium rate: %d bps\n", summary.Rate)
	fmt.Fprintf(w, "Final balance: %d\n", summary.Balance)
	fmt.Fprintf(w, "Audited withdrawals: %d\n", len(audit))
	for _, e := range audit {
		status := "ok"
		if e.Err != nil {
			status = e.Err.Error()
		}
		fmt.Fprintf(w, "  %s %d (%s)\n", e.Owner, e.Amount, status)
	}
}
