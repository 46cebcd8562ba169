// Package cli implements the mindweave command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/internal/config"
	"github.com/mindweave/mindweave/pkg/buildinfo"
	"github.com/mindweave/mindweave/pkg/cloud"
	"github.com/mindweave/mindweave/pkg/history"
	"github.com/mindweave/mindweave/pkg/llm"
	"github.com/mindweave/mindweave/pkg/pipeline"
	"github.com/mindweave/mindweave/pkg/reconcile"
	"github.com/mindweave/mindweave/pkg/session"
)

// appName is the application name used for directories and display.
const appName = "mindweave"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Mindweave turns any topic into an explorable concept map",
		Long:         `Mindweave asks a language model for a concept map of a topic, lays the map out as a ranked tree, and keeps your collection in a local history that syncs with the cloud.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.explainCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.organizeCommand())
	root.AddCommand(c.themeCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.loginCommand())
	root.AddCommand(c.signupCommand())
	root.AddCommand(c.logoutCommand())
	root.AddCommand(c.whoamiCommand())
	root.AddCommand(c.syncCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// ==========================================================================
// Shared construction helpers
// ==========================================================================

// openHistory opens the local map history in the config directory.
func (c *CLI) openHistory() (*history.Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	persist, err := history.NewFilePersister(dir)
	if err != nil {
		return nil, err
	}
	return history.NewStore(persist, c.Logger), nil
}

// expireSession handles a rejected token: show the session-expired
// message and drop the stored session so the next command starts
// logged out. Every cloud path that sees a session-expired error funnels
// through here, whether it was a full sync, a background push, or a
// single delete.
func (c *CLI) expireSession() {
	printError("%s", reconcile.MsgSessionExpired)
	sessions, err := openSessions()
	if err == nil {
		err = sessions.Delete()
	}
	if err != nil {
		c.Logger.Debug("clearing session failed", "error", err)
	}
	printNextStep("Log in again", appName+" login")
}

// openSessions opens the stored login session, which may be absent.
func openSessions() (*session.FileStore, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return session.NewFileStore(dir)
}

// cloudClient builds a cloud client carrying the stored token, if any.
// The second return is the active session, nil when logged out.
func cloudClient(cfg config.Config) (*cloud.Client, *session.Session, error) {
	sessions, err := openSessions()
	if err != nil {
		return nil, nil, err
	}
	sess, err := sessions.Get()
	if err != nil {
		return nil, nil, err
	}
	token := ""
	if sess != nil {
		token = sess.AccessToken
	}
	return cloud.NewClient(cfg.Cloud.BaseURL, token), sess, nil
}

// newModel builds the LLM client with the default response cache.
func (c *CLI) newModel(cfg config.Config) (*llm.Client, error) {
	cache, err := llm.DefaultCache()
	if err != nil {
		c.Logger.Debug("response cache unavailable", "error", err)
		cache = nil
	}
	return llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}, cache, c.Logger)
}

// newRunner assembles the generation pipeline. pusher may be nil when
// logged out.
func (c *CLI) newRunner(cfg config.Config, hist *history.Store, pusher pipeline.Uploader) (*pipeline.Runner, error) {
	model, err := c.newModel(cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(model, hist, pusher, cfg.ThemeMode(), c.Logger), nil
}

// stateDir returns the config directory, creating it if needed.
func stateDir() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// statePath is where display state (current map, pending layout
// snapshot) lives.
func statePath() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.json"), nil
}
