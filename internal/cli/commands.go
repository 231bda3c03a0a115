// Package cli implements the sentinel command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"ThemeSentinel/internal/api"
	"ThemeSentinel/internal/config"
	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/network"
	"ThemeSentinel/internal/notifier"
	"ThemeSentinel/internal/report"
	"ThemeSentinel/internal/scheduler"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var (
		cfgPath string
		a       *app
	)

	rootCmd := &cobra.Command{
		Use:   "sentinel",
		Short: "ThemeSentinel - theme cohesion and breakout monitor",
		Long: `ThemeSentinel loads daily theme rankings, classifies themes into conviction tiers,
tracks cohesion changes, scans price series for upper-band breakouts and serves
the results over HTTP and Telegram.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(config.Path(cfgPath))
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			return nil
		},
	}
	closeApp := func() {
		if a != nil {
			a.Close()
			a = nil
		}
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) { closeApp() }

	appFn := func() *app { return a }
	rootCmd.AddCommand(newServeCmd(appFn))
	rootCmd.AddCommand(newScanCmd(appFn))
	rootCmd.AddCommand(newTrendCmd(appFn))
	rootCmd.AddCommand(newTiersCmd(appFn))
	rootCmd.AddCommand(newSearchCmd(appFn))
	rootCmd.AddCommand(newGraphCmd(appFn))
	rootCmd.AddCommand(newHistoryCmd(appFn))
	for _, c := range rootCmd.Commands() {
		closeAfterRun(c, closeApp)
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Configuration file path (default $CONFIG_PATH or config.yaml)")
	return rootCmd
}

// closeAfterRun runs closeFn once RunE returns, including on error, where
// cobra skips the post-run hooks.
func closeAfterRun(c *cobra.Command, closeFn func()) {
	run := c.RunE
	if run == nil {
		return
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		defer closeFn()
		return run(cmd, args)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// newServeCmd runs the API, the cron jobs and Telegram polling until interrupted.
func newServeCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, scheduled jobs and Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(appFn())
		},
	}
}

func runServe(a *app) error {
	cfg := a.cfg
	gin.SetMode(cfg.API.Mode)

	ctx, stop := signalContext()
	defer stop()

	if _, err := a.data.Get(); err != nil {
		log.Printf("[WARN] initial load failed, serving degraded until next refresh: %v", err)
	}

	var (
		sender scheduler.Sender
		tn     *notifier.TelegramNotifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Println("[WARN] Telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, a.data, a.breakouts, sender, a.rec, scheduler.Settings{
		TrendLookbackDays: cfg.Trend.LookbackDays,
		TopN:              cfg.Trend.TopN,
		SearchLimit:       cfg.Graph.SearchLimit,
		ReportDir:         cfg.Data.ReportDir,
	})
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ScanCron, cfg.Schedule.TrendCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing dataset now")
		go sched.RunRefreshNow()
	}

	router := api.NewRouter(api.Deps{
		Data:              a.data,
		Tiers:             a.tiers,
		Breakouts:         a.breakouts,
		Graph:             cfg.Graph.Options,
		SearchLimit:       cfg.Graph.SearchLimit,
		TrendLookbackDays: cfg.Trend.LookbackDays,
	})
	log.Println("[INFO] ThemeSentinel is running. Press Ctrl+C to stop.")
	if err := api.NewServer(cfg.API.Addr, router).Run(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}
	log.Println("[INFO] ThemeSentinel stopped")
	return nil
}

// newScanCmd runs one band breakout scan over the symbol universe.
func newScanCmd(appFn func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan price series for upper-band breakouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
				a.breakouts.Limit = limit
			}
			ctx, stop := signalContext()
			defer stop()

			res, err := a.breakouts.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Println(renderBreakouts(res, a.tiers))
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "Maximum breakouts to keep (default from config)")
	return cmd
}

// newTrendCmd compares cohesion against an older snapshot.
func newTrendCmd(appFn func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show cohesion changes against an older snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			lookback, _ := cmd.Flags().GetInt("lookback")
			if lookback <= 0 {
				lookback = a.cfg.Trend.LookbackDays
			}
			top, _ := cmd.Flags().GetInt("top")
			if top <= 0 {
				top = a.cfg.Trend.TopN
			}
			writeReport, _ := cmd.Flags().GetBool("report")

			d, err := a.data.Get()
			if err != nil {
				return err
			}
			cmp, ok := d.Trend(lookback)
			if !ok {
				return errors.New("at least two snapshots are required for a trend comparison")
			}
			fmt.Println(renderTrend(cmp, top))

			if writeReport {
				if err := a.rec.RecordTrend(cmp); err != nil {
					log.Printf("[ERROR] record trend: %v", err)
				}
				path, err := report.WriteCohesion(a.cfg.Data.ReportDir, cmp)
				if err != nil {
					return err
				}
				fmt.Println(successStyle.Render("Report written to " + path))
			}
			return nil
		},
	}
	cmd.Flags().Int("lookback", 0, "Days between compared snapshots (default from config)")
	cmd.Flags().Int("top", 0, "Movers listed per direction (default from config)")
	cmd.Flags().Bool("report", false, "Record the comparison and write the markdown report")
	return cmd
}

// newTiersCmd prints the market summary and the theme health table.
func newTiersCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Show the tier summary, tier rules and theme health",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			d, err := a.data.Get()
			if err != nil {
				return err
			}
			fmt.Println(renderSummary(d.Summary()))
			fmt.Println(renderTierRules(a.tiers))
			fmt.Println(renderThemeHealth(d.ThemeHealth(), a.tiers))
			return nil
		},
	}
}

func newSearchCmd(appFn func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search tickers, companies and themes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				limit = a.cfg.Graph.SearchLimit
			}
			d, err := a.data.Get()
			if err != nil {
				return err
			}
			fmt.Println(renderSearch(d.Index.Search(strings.Join(args, " "), limit)))
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "Maximum hits per category (default from config)")
	return cmd
}

// newGraphCmd prints a relationship graph as JSON.
func newGraphCmd(appFn func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the theme/ticker graph as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			stock, _ := cmd.Flags().GetString("stock")
			theme, _ := cmd.Flags().GetString("theme")
			depth, _ := cmd.Flags().GetInt("depth")

			d, err := a.data.Get()
			if err != nil {
				return err
			}
			b := network.NewBuilder(d.Index, a.cfg.Graph.Options)

			var g model.Graph
			switch {
			case stock != "":
				g, err = b.SymbolGraph(stock)
			case theme != "":
				g, err = b.ThemeGraph(theme, depth)
			default:
				g = b.GlobalGraph()
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		},
	}
	cmd.Flags().String("stock", "", "Center the graph on a ticker")
	cmd.Flags().String("theme", "", "Center the graph on a theme")
	cmd.Flags().Int("depth", 1, "Theme graph depth (1 or 2)")
	cmd.MarkFlagsMutuallyExclusive("stock", "theme")
	return cmd
}

// newHistoryCmd reads back what the recorder stored.
func newHistoryCmd(appFn func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [THEME]",
		Short: "Show recorded cohesion of a theme, or recent scans",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			limit, _ := cmd.Flags().GetInt("limit")
			if len(args) == 0 {
				runs, err := a.rec.RecentScans(limit)
				if err != nil {
					return err
				}
				fmt.Println(renderScans(runs))
				return nil
			}
			recs, err := a.rec.CohesionHistory(args[0], limit)
			if err != nil {
				return err
			}
			fmt.Println(renderCohesionHistory(args[0], recs))
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "Rows to show (recorder default when 0)")
	return cmd
}
