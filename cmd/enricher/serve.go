package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shpitdev/vc-enricher/internal/api"
	"github.com/shpitdev/vc-enricher/internal/app"
)

func newServeCmd(gf *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /enrich over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(gf)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if !cfg.Log.Development {
				gin.SetMode(gin.ReleaseMode)
			}

			if !cfg.HasLLMCredential() {
				log.Warn("model credential is not set; /enrich will fail until it is",
					zap.String("env", cfg.CredentialEnv()),
				)
			}
			svc, err := app.NewService(cmd.Context(), cfg, log)
			if err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("setup failed: %s", err)}
			}
			if err := api.NewServer(cfg.Server.Addr, svc, log).Run(cmd.Context()); err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("server error: %s", err)}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (env: ENRICHER_ADDR)")
	return cmd
}
