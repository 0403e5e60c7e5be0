package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"brd-tui/internal/app"
	"brd-tui/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	workspace string
	config    string
	verbose   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "brd-tui",
		Short:         "Build business requirement documents in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), g)
		},
	}
	root.PersistentFlags().StringVarP(&g.workspace, "workspace", "w", "", "workspace directory (default ~/.brd-tui)")
	root.PersistentFlags().StringVarP(&g.config, "config", "c", "", "config file (default <workspace>/config.json)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "mirror logs to stderr")

	root.AddCommand(
		serveCmd(g),
		listCmd(g),
		showCmd(g),
		exportCmd(g),
		deleteCmd(g),
		dumpCmd(g),
		importCmd(g),
		probeCmd(g),
		suggestCmd(g),
	)
	return root
}

// openApp loads .env from the working directory, if any, and opens the
// workspace. console mirrors logs to stderr.
func openApp(ctx context.Context, g *globals, console bool) (*app.App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return app.Open(ctx, app.Options{
		Workspace:    g.workspace,
		ConfigPath:   g.config,
		LogToConsole: console,
	})
}

func runTUI(ctx context.Context, g *globals) error {
	// Console logging would draw over the alt screen.
	a, err := openApp(ctx, g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(tui.NewModel(a), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("brd-tui: %w", err)
	}
	return nil
}
