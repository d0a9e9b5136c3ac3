// Program factionwatch renders a read-only activity dashboard for a
// faction's members from two collector-produced JSON datasets: periodic
// activity snapshots and member metadata.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"factionwatch/aggregate"
	"factionwatch/config"
	"factionwatch/dataset"
	"factionwatch/ui"

	"golang.org/x/term"
)

const defaultConfigPath = "data/config.yaml"

const (
	modeTview = "tview"
	modePlain = "plain"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to YAML config")
	days := flag.Int("days", 0, "override the lookback window in days")
	memberID := flag.String("member", "", "print one member's timeline and exit")
	noUI := flag.Bool("no-ui", false, "print a one-shot dashboard instead of the interactive UI")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *days > 0 {
		cfg.Window.DefaultDays = *days
	}
	fanout := setupLogging(cfg.Logging)
	defer fanout.Close()

	mode := resolveUIMode(cfg.UI.Mode, *noUI || *memberID != "")
	if mode == modePlain {
		cfg.Print()
	}

	bundle, loadErr := dataset.Fetch(context.Background(), cfg.Data.ActivitySource, cfg.Data.MembersSource)
	if loadErr != nil {
		log.Printf("Load failed: %v", loadErr)
	}
	summarizer := aggregate.NewSummarizer(&bundle)

	if mode == modePlain {
		runPlain(cfg, summarizer, bundle, *memberID, loadErr)
		return
	}

	reload := func() (ui.Provider, error) {
		fresh, err := dataset.Fetch(context.Background(), cfg.Data.ActivitySource, cfg.Data.MembersSource)
		if err != nil {
			return nil, err
		}
		return aggregate.NewSummarizer(&fresh), nil
	}
	dash := ui.NewDashboard(cfg, summarizer, loadErr, reload)
	fanout.SetConsoleSink(dash.SystemWriter(), false)
	runErr := dash.Run()
	fanout.SetConsoleSink(os.Stderr, true)
	if runErr != nil {
		log.Printf("UI error: %v", runErr)
		os.Exit(1)
	}
}

func runPlain(cfg *config.Config, summarizer *aggregate.Summarizer, bundle dataset.Bundle, memberID string, loadErr error) {
	days := cfg.Window.DefaultDays
	now := time.Now()
	if memberID != "" {
		name := bundle.Roster[memberID].Name
		tl := ui.BuildTimeline(name, summarizer.MemberWindow(memberID, days), now)
		ui.RenderPlainTimeline(os.Stdout, tl)
		return
	}
	var view ui.View
	if loadErr != nil {
		view = ui.ErrorView(days)
	} else {
		summary := summarizer.Summarize(days)
		stats := summarizer.Overview(summary)
		view = ui.BuildView(summary, stats, "", days, now)
	}
	ui.RenderPlain(os.Stdout, view)
}

func resolveUIMode(mode string, forcePlain bool) string {
	if forcePlain {
		return modePlain
	}
	switch mode {
	case modePlain:
		return modePlain
	case modeTview:
		return modeTview
	}
	if stdoutIsTerminal() {
		return modeTview
	}
	return modePlain
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
