// Package main provides the interactive client entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	appclient "github.com/hibiki-dev/encore/internal/app/client"
	"github.com/hibiki-dev/encore/internal/app/dispatch"
	"github.com/hibiki-dev/encore/internal/app/filter"
	"github.com/hibiki-dev/encore/internal/app/notify"
	"github.com/hibiki-dev/encore/internal/app/protocol"
	"github.com/hibiki-dev/encore/internal/app/state"
	appsync "github.com/hibiki-dev/encore/internal/app/sync"
	"github.com/hibiki-dev/encore/internal/app/view"
	"github.com/hibiki-dev/encore/internal/domain/queue"
	"github.com/hibiki-dev/encore/internal/infra/catalog"
	"github.com/hibiki-dev/encore/internal/infra/config"
	"github.com/hibiki-dev/encore/internal/infra/logger"
	"github.com/hibiki-dev/encore/internal/infra/prefs"
	"github.com/hibiki-dev/encore/internal/tui"
)

var (
	app        = kingpin.New("encore", "Terminal client for the encore song-request queue")
	configPath = app.Flag("config", "Path to config file").Default("encore.yaml").String()
	prefsPath  = app.Flag("prefs", "Path to the preference database").Default("encore.db").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file").Default("encore.log").String()
	adminFlag  = app.Flag("admin", "Join with admin privileges").Bool()
	searchSeed = app.Flag("search", "Initial search query").String()
	nameFlag   = app.Flag("name", "Display name (persisted)").String()

	startCmd       = app.Command("start", "Start the client").Default()
	listFiltersCmd = app.Command("list-filters", "List available display filters and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	// A TUI owns the terminal, so logging always goes to a file.
	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{Output: *logfile, Level: level}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Client error: %v", err)
		fmt.Fprintf(os.Stderr, "encore: %v\n", err)
		os.Exit(1)
	}
}

// run executes the main client logic. A separate function ensures defer
// statements execute even when returning with an error.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pstore, err := prefs.Open(*prefsPath)
	if err != nil {
		return err
	}
	defer pstore.Close()

	userID, err := pstore.UserID()
	if err != nil {
		return err
	}
	name, avatar, err := resolveIdentity(pstore, cfg)
	if err != nil {
		return err
	}

	chain, err := buildChain(cfg)
	if err != nil {
		return err
	}

	store := state.New()
	hub := notify.NewHub()
	engine := view.NewEngine(chain, cfg.UI.PageSize)

	// The dispatcher needs the sync client for sending and the sync
	// client needs the orchestrator for handling; break the cycle with a
	// function sender.
	var syncClient *appsync.Client
	sender := dispatch.SenderFunc(func(cmd protocol.Command) error {
		return syncClient.Send(cmd)
	})
	dispatcher := dispatch.New(sender, userID, *adminFlag)

	upNextSort, err := pstore.GetDefault(prefs.KeyUpNextSort, "mirror")
	if err != nil {
		return err
	}

	orchestrator, err := appclient.New(store, engine, dispatcher, pstore, hub, appclient.Options{
		UserID:         userID,
		IsAdmin:        *adminFlag,
		UpNextSort:     queue.ParseUpNextSort(upNextSort),
		SearchDebounce: time.Duration(cfg.UI.SearchDebounceMs) * time.Millisecond,
		ScrollDebounce: time.Duration(cfg.UI.ScrollDebounceMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer orchestrator.Close()

	syncClient = appsync.NewClient(appsync.Config{
		URL: cfg.WebSocketURL(),
		Identity: appsync.Identity{
			UserID:  userID,
			Name:    name,
			Avatar:  avatar,
			IsAdmin: *adminFlag,
		},
		InitialDelay: time.Duration(cfg.Reconnect.InitialDelayMs) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.Reconnect.MaxDelayMs) * time.Millisecond,
		MaxAttempts:  cfg.Reconnect.MaxAttempts,
	}, orchestrator)

	go func() {
		if err := syncClient.Run(ctx); err != nil && ctx.Err() == nil {
			zlog.Error().Msgf("Sync client stopped: %v", err)
		}
	}()

	// The catalog loads in the background; a failure disables browsing
	// but leaves the queue features alone.
	go func() {
		songs, err := catalog.Load(ctx, cfg.Server.CatalogURL)
		if err != nil {
			zlog.Error().Msgf("Catalog load failed: %v", err)
			orchestrator.SetCatalogError(err)
			return
		}
		zlog.Info().Msgf("Loaded %d raw catalog records", len(songs))
		orchestrator.SetCatalog(songs)
	}()

	lastTab, err := pstore.GetDefault(prefs.KeyLastTab, cfg.UI.DefaultTab)
	if err != nil {
		return err
	}

	model := tui.New(orchestrator, tui.ParseTab(lastTab), *searchSeed)
	hub.Subscribe(model.Sink())

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return pstore.Set(prefs.KeyLastTab, model.ActiveTab().String())
}

// resolveIdentity reads the persisted display name and avatar, letting
// the --name flag update the stored name.
func resolveIdentity(pstore *prefs.Store, cfg *config.Config) (name, avatar string, err error) {
	if *nameFlag != "" {
		if err := pstore.Set(prefs.KeyUserName, *nameFlag); err != nil {
			return "", "", err
		}
	}
	name, err = pstore.GetDefault(prefs.KeyUserName, "guest")
	if err != nil {
		return "", "", err
	}
	avatar, err = pstore.GetDefault(prefs.KeyUserAvatar, cfg.User.DefaultAvatar)
	if err != nil {
		return "", "", err
	}
	return name, avatar, nil
}

// buildChain assembles the display filter chain from the config,
// validating each filter's settings.
func buildChain(cfg *config.Config) (*filter.Chain, error) {
	chain := filter.NewChain()
	for _, f := range filter.Default().Filters() {
		if !cfg.IsFilterEnabled(f.Name()) {
			zlog.Info().Msgf("Display filter %s disabled by config", f.Name())
			continue
		}
		if err := f.ValidateConfig(cfg.FilterSettings(f.Name())); err != nil {
			return nil, errors.Wrapf(err, "invalid config for filter %s", f.Name())
		}
		chain.Add(f)
	}
	return chain, nil
}

func printFilters() {
	for _, f := range filter.Default().Filters() {
		fmt.Printf("%s\n    %s\n", f.Name(), f.Description())
	}
}
