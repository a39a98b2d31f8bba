package cli

import (
	"context"

	"github.com/bbernhard/leaf-playground/internal/config"
	"github.com/bbernhard/leaf-playground/internal/tui"
	"github.com/bbernhard/leaf-playground/internal/upload"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui [image]",
		Short: "Interactive terminal playground",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// the terminal surface only ever needs one in-process session
			cfg.Store.Backend = config.BackendMemory
			controller, surface, cleanup, err := newController(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			session, err := controller.NewSession(ctx)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				if _, err := surface.DropPath(ctx, session.ID, args[0]); err != nil && !upload.IsRejection(err) {
					return err
				}
			}

			var drops chan string
			if cfg.Upload.DropFolder != "" {
				folder, err := upload.WatchDropFolder(cfg.Upload.DropFolder, cfg.Upload.SettleDelay)
				if err != nil {
					return err
				}
				defer folder.Close()

				drops = make(chan string)
				go folder.Run(ctx, func(path string) {
					select {
					case drops <- path:
					case <-ctx.Done():
					}
				})
			}

			model := tui.NewModel(ctx, controller, surface, session.ID, drops)
			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return err
			}
			return model.Err()
		},
	}

	cmd.Flags().String("drop-folder", "", "watch this folder and select images copied into it")
	cmd.Flags().Duration("timeout", 0, "timeout for prediction requests (0 waits forever)")
	return cmd
}
