package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"udaan-chat/internal/chat"
	"udaan-chat/internal/completion"
	"udaan-chat/internal/config"
	"udaan-chat/internal/logging"
	"udaan-chat/internal/session"
	"udaan-chat/internal/store"
	"udaan-chat/internal/ui"
)

type options struct {
	configPath string
	model      string
	baseURL    string
	debug      bool
	plain      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "udaan-chat",
		Short:         "Terminal chat client for OpenAI-compatible completion services",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.udaan-chat/config.yaml)")
	root.PersistentFlags().StringVar(&opts.model, "model", "", "model to chat with")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "completion endpoint base URL")
	root.Flags().BoolVar(&opts.debug, "debug", false, "write debug logs")
	root.Flags().BoolVar(&opts.plain, "plain", false, "show messages without markdown rendering")

	root.AddCommand(newModelsCmd(opts), newConfigCmd(opts))

	return root
}

func newModelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models offered by the completion endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}

			ids, err := completion.NewOpenAIClient(cfg.Completion).ListModels(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the path of the config file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := loadConfig(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// loadConfig reads the config file and applies command line overrides
func loadConfig(opts *options) (*config.Config, string, error) {
	path := opts.configPath
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, "", err
	}

	if opts.model != "" {
		cfg.Completion.Model = opts.model
	}
	if opts.baseURL != "" {
		cfg.Completion.BaseURL = opts.baseURL
	}
	if opts.debug {
		cfg.Logging.Level = "debug"
	}

	return cfg, path, nil
}

func runChat(ctx context.Context, opts *options) error {
	cfg, path, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.LogPath(filepath.Dir(path)), cfg.Logging.Level); err != nil {
		return err
	}
	defer logging.Close()

	transcripts, err := store.NewMemoryStore()
	if err != nil {
		return fmt.Errorf("failed to initialize transcript store: %w", err)
	}
	defer transcripts.Close()

	client := completion.NewOpenAIClient(cfg.Completion)
	logging.Info("Using model %s at %s", client.Model(), cfg.Completion.BaseURL)

	conversation := chat.NewConversation(client, chat.WithSystemPrompt(cfg.Completion.SystemPrompt))
	tracker := session.NewTracker(session.WithDateFormat(cfg.DateFormat()))

	view := ui.NewChatViewModel(conversation, tracker, transcripts, ui.ViewOptions{
		Title:           cfg.UI.Title,
		Locale:          cfg.UI.Locale,
		SidebarRatio:    cfg.UI.SidebarRatio,
		SidebarMinWidth: cfg.UI.SidebarMinWidth,
		PlainText:       opts.plain,
	}, 80, 24)

	p := tea.NewProgram(view, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}
