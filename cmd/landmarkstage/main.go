package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/landmarkstage/internal/app"
	"github.com/ayusman/landmarkstage/internal/config"
	"github.com/ayusman/landmarkstage/internal/logging"
	"github.com/ayusman/landmarkstage/internal/server"
	"github.com/ayusman/landmarkstage/internal/store"
	"github.com/ayusman/landmarkstage/internal/tray"
)

func main() {
	envFile := flag.String("env", "", "path to an env file (default: .env if present)")
	flag.Parse()

	if err := run(*envFile); err != nil {
		log.Error().Err(err).Msg("Landmark Stage stopped with error")
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	logFile, err := logging.Setup(cfg.Logging())
	if err != nil {
		return err
	}
	defer logFile.Close()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	appCfg, err := cfg.App()
	if err != nil {
		return err
	}
	appCfg.Store = st

	application, err := app.New(appCfg)
	if err != nil {
		return err
	}

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir(cfg.DataDir)
	}
	if staticDir != "" {
		log.Info().Str("dir", staticDir).Msg("Serving static files")
	}
	srv := server.New(server.ConfigFromApp(application, st, staticDir))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return application.Run(ctx)
	})
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Addr)
	})

	log.Info().Str("addr", cfg.Addr).Str("source", cfg.Source).Bool("tray", cfg.Tray).Msg("Landmark Stage started")

	if !cfg.Tray {
		return g.Wait()
	}

	// The tray owns the main goroutine until it quits.
	t := tray.New(application.Video(), application.Frames())
	t.OnOpen(func() { openBrowser(browserURL(cfg.Addr)) })
	t.OnQuit(stop)
	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()

	stop()
	return g.Wait()
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
		return
	}
	go cmd.Wait()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
