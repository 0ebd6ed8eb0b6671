// Package cmd implements the listbot command-line interface.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"listbot/internal/bot"
	"listbot/internal/config"
	"listbot/internal/credentials"
	"listbot/internal/shutdown"
	"listbot/internal/tui"
	"listbot/internal/utils"
	"listbot/internal/watcher"
	"listbot/liststore"
	"listbot/store"
	"listbot/store/file"
	"listbot/store/sqlite"
)

// Version is set at build time
var Version = "dev"

// Config holds application configuration
type Config struct {
	ConfigPath string
	DataPath   string // Overrides the configured data location
	Backend    string // Overrides the configured storage backend
	NoPrompt   bool
	Verbose    bool

	// Test hooks
	Keyring credentials.Keyring
	Stdin   io.Reader
}

func (cfg *Config) stdin() io.Reader {
	if cfg.Stdin != nil {
		return cfg.Stdin
	}
	return os.Stdin
}

// Execute runs the CLI with the given arguments and IO writers
func Execute(args []string, stdout, stderr io.Writer, cfg *Config) int {
	rootCmd := NewListBot(stdout, stderr, cfg)

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewListBot creates the root command with injectable IO
func NewListBot(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	if cfg == nil {
		cfg = &Config{}
	}

	cmd := &cobra.Command{
		Use:     "listbot",
		Short:   "Manage named lists from the terminal or Telegram",
		Long:    "listbot keeps named lists of text items, shared between a CLI, an interactive shell, and a Telegram bot.",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				cfg.Verbose = true
			}
			utils.SetVerboseMode(cfg.Verbose)
			if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); noPrompt {
				cfg.NoPrompt = true
			}
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				cfg.ConfigPath = path
			}
			if path, _ := cmd.Flags().GetString("data"); path != "" {
				cfg.DataPath = path
			}
			if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
				cfg.Backend = backend
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("no-prompt", "y", false, "Disable interactive prompts")
	cmd.PersistentFlags().BoolP("verbose", "V", false, "Enable verbose/debug output")
	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().String("data", "", "Path to the data file or database")
	cmd.PersistentFlags().String("backend", "", "Storage backend (file or sqlite)")

	cmd.AddCommand(newCreateCmd(stdout, cfg))
	cmd.AddCommand(newListsCmd(stdout, cfg))
	cmd.AddCommand(newAddCmd(stdout, cfg))
	cmd.AddCommand(newMultiCmd(stdout, cfg))
	cmd.AddCommand(newRemoveCmd(stdout, cfg))
	cmd.AddCommand(newShowCmd(stdout, cfg))
	cmd.AddCommand(newDeleteCmd(stdout, stderr, cfg))
	cmd.AddCommand(newSearchCmd(stdout, cfg))
	cmd.AddCommand(newStatsCmd(stdout, cfg))
	cmd.AddCommand(newBotCmd(stdout, stderr, cfg))
	cmd.AddCommand(newShellCmd(cfg))
	cmd.AddCommand(newCredentialsCmd(stdout, stderr, cfg))

	return cmd
}

// openStore loads configuration and opens the list store. The returned
// cleanup closes the underlying storage.
func openStore(cfg *Config) (*liststore.Store, func(), error) {
	appCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Backend != "" {
		appCfg.Storage.Backend = cfg.Backend
	}
	if cfg.DataPath != "" {
		appCfg.Storage.Path = config.ExpandPath(cfg.DataPath)
	}
	if err := appCfg.Validate(); err != nil {
		return nil, nil, utils.ErrConfigInvalid(err)
	}

	storage, err := openStorage(appCfg)
	if err != nil {
		return nil, nil, err
	}

	limits := liststore.Config{
		MaxListNameLength: appCfg.Limits.MaxListNameLength,
		MaxItemLength:     appCfg.Limits.MaxItemLength,
		MaxLists:          appCfg.Limits.MaxLists,
		MaxItemsPerList:   appCfg.Limits.MaxItemsPerList,
	}
	s, err := liststore.New(limits, storage)
	if err != nil {
		_ = storage.Close()
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

func openStorage(appCfg *config.Config) (store.Storage, error) {
	switch appCfg.Storage.Backend {
	case "file":
		return file.New(file.Config{
			Path:          appCfg.Storage.Path,
			BackupEnabled: appCfg.IsBackupEnabled(),
		})
	case "sqlite":
		return sqlite.New(appCfg.Storage.Path)
	default:
		return nil, utils.ErrBackendNotConfigured(appCfg.Storage.Backend)
	}
}

// runOp opens the store, runs one operation, and prints its result. Store
// errors carry user-facing messages and surface through the normal error
// path.
func runOp(cfg *Config, stdout io.Writer, op func(s *liststore.Store) (string, error)) error {
	s, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	msg, err := op(s)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, msg)
	return nil
}

func newCreateCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "create <list_name>",
		Short: "Create a new list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cfg, stdout, func(s *liststore.Store) (string, error) {
				return s.Create(strings.Join(args, " "))
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newListsCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show all lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cfg, stdout, func(s *liststore.Store) (string, error) {
				return s.ShowAll(), nil
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newAddCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "add <list_name> <item>",
		Short: "Add an item to a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cfg, stdout, func(s *liststore.Store) (string, error) {
				return s.AddItem(args[0], strings.Join(args[1:], " "))
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newMultiCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "multi <list_name> <item1, item2, ...>",
		Short: "Add multiple comma-separated items to a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cfg, stdout, func(s *liststore.Store) (string, error) {
				return s.AddItems(args[0], strings.Join(args[1:], " "))
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newRemoveCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <list_name> <item>",
		Short: "Remove an item from a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cfg, stdout, func(s *liststore.Store) (string, error) {
				return s.RemoveItem(args[0], strings.Join(args[1:], " "))
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newShowCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <list_name>",
		Short: "Show all items in a list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cfg, stdout, func(s *liststore.Store) (string, error) {
				return s.ShowList(strings.Join(args, " "))
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newDeleteCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <list_name>",
		Short: "Delete a list and all its items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			if !cfg.NoPrompt {
				prompt := fmt.Sprintf("Delete list '%s' and all its items?", name)
				if !utils.PromptYesNoWithReader(prompt, cfg.stdin(), stderr) {
					_, _ = fmt.Fprintln(stdout, "Cancelled")
					return nil
				}
			}
			return runOp(cfg, stdout, func(s *liststore.Store) (string, error) {
				return s.Delete(name)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newSearchCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search for items across all lists",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cfg, stdout, func(s *liststore.Store) (string, error) {
				return s.Search(strings.Join(args, " "))
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newStatsCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			stats := s.Stats()
			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				return outputStatsJSON(stdout, stats)
			}
			_, _ = fmt.Fprintln(stdout, stats.Format())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}

func outputStatsJSON(stdout io.Writer, stats liststore.Stats) error {
	out := struct {
		TotalLists          int     `json:"total_lists"`
		TotalItems          int     `json:"total_items"`
		AverageItemsPerList float64 `json:"average_items_per_list"`
		LargestListSize     int     `json:"largest_list_size"`
	}{
		TotalLists:          stats.TotalLists,
		TotalItems:          stats.TotalItems,
		AverageItemsPerList: stats.AverageItemsPerList,
		LargestListSize:     stats.LargestListSize,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, string(data))
	return nil
}

func newBotCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long:  "Start the Telegram bot in long-polling mode. The bot token is read from the system keyring or the TELEGRAM_BOT_TOKEN environment variable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(stdout, cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runBot(stdout io.Writer, cfg *Config) error {
	appCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.Backend != "" {
		appCfg.Storage.Backend = cfg.Backend
	}
	if cfg.DataPath != "" {
		appCfg.Storage.Path = config.ExpandPath(cfg.DataPath)
	}
	if err := appCfg.Validate(); err != nil {
		return utils.ErrConfigInvalid(err)
	}

	token, source, err := newCredentialsManager(cfg).GetToken()
	if err != nil {
		return utils.ErrTokenNotFound()
	}
	utils.Debugf("Bot token resolved from %s", source)

	storage, err := openStorage(appCfg)
	if err != nil {
		return err
	}
	limits := liststore.Config{
		MaxListNameLength: appCfg.Limits.MaxListNameLength,
		MaxItemLength:     appCfg.Limits.MaxItemLength,
		MaxLists:          appCfg.Limits.MaxLists,
		MaxItemsPerList:   appCfg.Limits.MaxItemsPerList,
	}
	s, err := liststore.New(limits, storage)
	if err != nil {
		_ = storage.Close()
		return err
	}
	b, err := bot.New(token, bot.NewDispatcher(s), bot.Options{
		AuthorizedChatID: appCfg.AuthorizedChatID(),
		Debug:            cfg.Verbose,
	})
	if err != nil {
		_ = s.Close()
		return err
	}

	fileLog, flErr := utils.NewFileLogger()
	if flErr != nil {
		utils.Debugf("File logging disabled: %v", flErr)
	}

	h := shutdown.New(10 * time.Second)
	h.OnStop("logfile", func(ctx context.Context) error {
		fileLog.Println("bot stopped")
		fileLog.Close()
		return nil
	})
	h.OnStop("storage", func(ctx context.Context) error {
		return s.Close()
	})

	// Pick up external edits to the data file while the bot runs
	if appCfg.Storage.Backend == "file" && appCfg.IsWatchDataFileEnabled() {
		w, err := watcher.New(watcher.Config{
			Path: appCfg.Storage.Path,
			OnChange: func() {
				if err := s.Reload(); err != nil {
					utils.Warnf("Failed to reload lists: %v", err)
				} else {
					utils.Debugf("Reloaded lists after external change")
				}
			},
		})
		if err != nil {
			utils.Warnf("File watching unavailable: %v", err)
		} else if err := w.Start(); err != nil {
			utils.Warnf("File watching unavailable: %v", err)
		} else {
			h.OnStop("watcher", func(ctx context.Context) error {
				w.Stop()
				return nil
			})
		}
	}

	h.OnStop("bot", func(ctx context.Context) error {
		b.Stop()
		return nil
	})
	h.Notify()

	_, _ = fmt.Fprintf(stdout, "Starting List Bot as @%s...\n", b.Username())
	if chatID := appCfg.AuthorizedChatID(); chatID != 0 {
		_, _ = fmt.Fprintf(stdout, "Restricted to chat ID: %d\n", chatID)
	} else {
		_, _ = fmt.Fprintln(stdout, "Open to all chats")
	}
	_, _ = fmt.Fprintln(stdout, "Press Ctrl+C to stop the bot")
	fileLog.Printf("bot started as @%s (backend: %s)", b.Username(), appCfg.Storage.Backend)

	cleanupDone := make(chan struct{})
	go func() {
		h.Run()
		close(cleanupDone)
	}()

	runErr := b.Run()
	h.Trigger()
	<-cleanupDone
	return runErr
}

func newShellCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			return tui.Run(bot.NewDispatcher(s))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newCredentialsManager(cfg *Config) *credentials.Manager {
	if cfg.Keyring != nil {
		return credentials.NewManager(credentials.WithKeyring(cfg.Keyring))
	}
	return credentials.NewManager()
}

func newCredentialsCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	credentialsCmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the Telegram bot token",
		Long:  "Store, inspect, and remove the bot token in the system keyring (macOS Keychain, Windows Credential Manager, or Linux Secret Service).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	credentialsCmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Store the bot token in the system keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := credentials.PromptToken(cfg.stdin(), stderr, credentials.NewTerminalReader())
			if err != nil {
				return err
			}
			if err := newCredentialsManager(cfg).SetToken(token); err != nil {
				return fmt.Errorf("failed to store token: %w", err)
			}
			_, _ = fmt.Fprintln(stdout, "Token stored in system keyring")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	})

	credentialsCmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show where the bot token is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, source, err := newCredentialsManager(cfg).GetToken()
			if err != nil {
				_, _ = fmt.Fprintln(stdout, "No token configured")
				_, _ = fmt.Fprintln(stdout, "Run 'listbot credentials set' or export TELEGRAM_BOT_TOKEN")
				return nil
			}
			_, _ = fmt.Fprintf(stdout, "Source: %s\n", source)
			_, _ = fmt.Fprintln(stdout, "Token: ******** (hidden)")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	})

	credentialsCmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the bot token from the system keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newCredentialsManager(cfg).DeleteToken(); err != nil {
				return fmt.Errorf("failed to delete token: %w", err)
			}
			_, _ = fmt.Fprintln(stdout, "Token removed from system keyring")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	})

	return credentialsCmd
}
