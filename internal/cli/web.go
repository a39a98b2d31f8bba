package cli

import (
	"github.com/bbernhard/leaf-playground/internal/web"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newWebCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the playground page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, surface, cleanup, err := newController(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			log.Info("[Main] Sending predictions to ", cfg.Server.Origin, ", sessions in ", cfg.Store.Backend, " store")
			server := web.NewServer(controller, surface, web.Options{
				Release:        cfg.Web.Release,
				MaxUploadBytes: cfg.Web.MaxUploadBytes,
			})
			return server.Run(cfg.Web.Address)
		},
	}

	cmd.Flags().String("address", ":8081", "listen address")
	cmd.Flags().Bool("release", false, "run gin in release mode")
	cmd.Flags().String("store", "memory", "session store (memory, redis)")
	cmd.Flags().String("redis-address", ":6379", "address of the redis server")
	cmd.Flags().Duration("timeout", 0, "timeout for prediction requests (0 waits forever)")
	return cmd
}
