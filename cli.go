package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Serve a personal portfolio page",
	Long: `folio renders biography, skills and projects into a single page with
light/dark theming, skill and project filters, a project detail dialog and a
contact form.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portfolio web server",
	RunE:  runServe,
}

var renderCmd = &cobra.Command{
	Use:       "render <header|about|skills|projects|project>",
	Short:     "Print the markup for one section",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"header", "about", "skills", "projects", "project"},
	RunE:      runRender,
}

var validateCmd = &cobra.Command{
	Use:   "validate <content-file>",
	Short: "Check a portfolio content file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := LoadPortfolio(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d skills, %d projects)\n", args[0], len(p.Skills), len(p.Projects))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of folio",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "folio %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "folio.yaml", "path to config file")
	renderCmd.Flags().String("filter", FilterAll, "kind to filter skills or projects by")
	renderCmd.Flags().String("id", "", "project id for the project section")
	rootCmd.AddCommand(serveCmd, renderCmd, validateCmd, versionCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	gin.SetMode(cfg.Mode)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	content, err := NewContentStore(cfg.ContentFile)
	if err != nil {
		return err
	}
	if cfg.Watch {
		if err := content.Watch(ctx); err != nil {
			return err
		}
	}

	renderer, err := NewRenderer()
	if err != nil {
		return err
	}

	themes, closeThemes, err := openThemeStore(cfg)
	if err != nil {
		return err
	}
	defer closeThemes()

	site := NewSite(content, renderer, themes, NewDelaySubmitter(cfg.SubmitDelay))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(site),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutting down: %v", err)
		}
	}()

	log.Printf("serving portfolio on :%s (theme store: %s)", cfg.Port, cfg.ThemeStore)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openThemeStore builds the configured ThemeStore and a func releasing it.
func openThemeStore(cfg *Config) (ThemeStore, func(), error) {
	if cfg.ThemeStore != themeStoreSQLite {
		return NewCookieThemeStore(), func() {}, nil
	}

	db, err := OpenThemeDB(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	store := NewSQLiteThemeStore(db)
	sched, err := store.SchedulePrune(cfg.CleanupSchedule, cfg.PreferenceTTL)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() {
		<-sched.Stop().Done()
		db.Close()
	}, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	content, err := NewContentStore(cfg.ContentFile)
	if err != nil {
		return err
	}
	renderer, err := NewRenderer()
	if err != nil {
		return err
	}
	filter, _ := cmd.Flags().GetString("filter")
	id, _ := cmd.Flags().GetString("id")

	p := content.Snapshot()
	var out template.HTML
	switch args[0] {
	case "header":
		out, err = renderer.Header(p)
	case "about":
		out, err = renderer.About(p)
	case "skills":
		out, err = renderer.Skills(p, filter)
	case "projects":
		out, err = renderer.Projects(p, filter)
	case "project":
		var ok bool
		out, ok, err = renderer.ProjectDetail(p, id)
		if err == nil && !ok {
			return fmt.Errorf("no project with id %q", id)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
