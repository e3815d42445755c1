package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/cbseprep/internal/app"
	"github.com/abhisek/cbseprep/internal/kv"
	"github.com/abhisek/cbseprep/internal/profile"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	client := e.client()
	return app.Run(app.Deps{
		Profile:        profile.NewController(e.store.KV(), kv.NewMemory(), e.logger.Named("profile")),
		Chats:          e.chats(),
		Asker:          e.asker(client),
		Health:         client,
		Logger:         e.logger,
		SplashDuration: e.cfg.SplashDuration,
		RequestTimeout: e.cfg.RequestTimeout,
		HealthInterval: e.cfg.HealthTTL,
	})
}
