package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/agenda"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/config"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/deliver"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/ics"
	appLog "github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/log"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/render"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/timeutil"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/weather"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	renderOnly bool
	verbose    bool
}

func main() {
	flags := parseFlags()
	if flags.verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("dashboard starting", "version", "1.0.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"feeds", len(conf.Feeds),
		"max_items_per_page", conf.MaxItemsPerPage,
		"once", flags.once,
		"render_only", flags.renderOnly,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	htmlPath := filepath.Join(conf.OutputDir, "dashboard.html")
	srv := web.NewServer(conf, htmlPath)

	run := func() {
		st := runOnce(ctx, conf, flags.renderOnly)
		srv.SetStatus(st)
	}

	if flags.once {
		run()
		return
	}

	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, run); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	// One immediate run so the preview is populated before the first tick.
	go run()

	if err := srv.Serve(ctx); err != nil {
		appLog.Error("web server failed", err, "listen", conf.Listen)
	}
	appLog.Info("dashboard exiting")
}

// runOnce executes one full pipeline pass: fetch feeds, resolve and
// validate events, fetch weather, assemble pages, render, and deliver.
// Every stage degrades rather than aborts; the returned status carries
// whatever the run managed to produce.
func runOnce(ctx context.Context, conf *config.Config, renderOnly bool) web.RunStatus {
	st := web.RunStatus{LastRun: time.Now()}

	loc := timeutil.LoadLocation(conf.Timezone)
	now := time.Now().In(loc)

	sources := make([]ics.Source, 0, len(conf.Feeds))
	for _, f := range conf.Feeds {
		sources = append(sources, ics.Source{ID: f.ID, URL: f.URL})
	}
	payload := ics.NewFetcher(conf.CacheDir).FetchMerged(ctx, sources)

	resolved := ics.Resolve(payload, ics.ResolveConfig{Location: loc, Now: now})
	events, issues := agenda.Validate(resolved.Events, loc)
	st.Events = len(events)
	st.Findings = len(resolved.Findings) + len(issues)

	wx := weather.NewClient(conf.Timezone)
	points := make([]weather.Location, 0, len(conf.Locations))
	for _, l := range conf.Locations {
		points = append(points, weather.Location{Label: l.Label, Lat: l.Lat, Lon: l.Lon})
	}
	forecasts := wx.FetchAll(ctx, points)

	todayBlocks := make([]agenda.WeatherBlock, 0, len(points))
	tomorrowBlocks := make([]agenda.WeatherBlock, 0, len(points))
	for _, p := range points {
		fc := forecasts[p.Label]
		todayBlocks = append(todayBlocks, agenda.WeatherBlock{Location: p.Label, Narrative: weather.Narrative(fc, false)})
		tomorrowBlocks = append(tomorrowBlocks, agenda.WeatherBlock{Location: p.Label, Narrative: weather.Narrative(fc, true)})
	}

	contexts := agenda.BuildDocument(agenda.BuildInput{
		Now:               now,
		Location:          loc,
		Events:            events,
		ChecklistToday:    conf.ChecklistToday,
		ChecklistTomorrow: conf.ChecklistTomorrow,
		MaxItemsPerPage:   conf.MaxItemsPerPage,
		Epigraph:          agenda.Epigraph{Quote: conf.Epigraph.Quote, Author: conf.Epigraph.Author},
		TomorrowEpigraph:  agenda.Epigraph{Quote: conf.TomorrowEpigraph.Quote, Author: conf.TomorrowEpigraph.Author},
		WeatherToday:      todayBlocks,
		WeatherTomorrow:   tomorrowBlocks,
	})
	st.Pages = len(contexts)

	htmlPath := filepath.Join(conf.OutputDir, "dashboard.html")
	if err := render.WriteHTML(htmlPath, contexts); err != nil {
		appLog.Error("render html failed", err)
		st.LastError = err.Error()
		return st
	}

	if renderOnly {
		appLog.Info("render-only run complete", "html", htmlPath, "pages", st.Pages)
		return st
	}

	var fileName, visibleName string
	if len(contexts) > 0 {
		fileName, visibleName = contexts[0].FileName, contexts[0].VisibleName
	}
	pdfPath := filepath.Join(conf.OutputDir, fileName+".pdf")
	if err := render.PrintPDF(ctx, htmlPath, pdfPath, 0); err != nil {
		appLog.Error("render pdf failed", err)
		st.LastError = err.Error()
		return st
	}

	if err := deliver.NewUploader(conf.Device).Upload(ctx, pdfPath, visibleName); err != nil {
		// The local PDF copy in OutputDir is the fallback artifact.
		appLog.Error("upload failed, local copy retained", err, "pdf", pdfPath)
		st.LastError = err.Error()
		return st
	}
	st.Uploaded = true

	appLog.Info("run complete", "pages", st.Pages, "events", st.Events, "pdf", pdfPath)
	return st
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/dashboard/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one fetch+render(+deliver) cycle and exit")
	flag.BoolVar(&cfg.renderOnly, "render-only", false, "Render HTML only; skip PDF and device upload")
	flag.BoolVar(&cfg.verbose, "verbose", false, "Enable debug logging")

	flag.Parse()
	return cfg
}
