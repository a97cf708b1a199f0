package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ibher16/antrian-lab-ibsi/internal/announce"
	"github.com/ibher16/antrian-lab-ibsi/internal/channel"
	"github.com/ibher16/antrian-lab-ibsi/internal/client"
	"github.com/ibher16/antrian-lab-ibsi/internal/config"
	"github.com/ibher16/antrian-lab-ibsi/internal/surface"
)

func newDisplayCmd(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "display",
		Short: "Run the waiting-room display",
		RunE: func(*cobra.Command, []string) error {
			return runDisplay(ctx, cfg, logger)
		},
	}
}

func runDisplay(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	apiClient := client.New(cfg.ServerURL)
	player := announce.ConsolePlayer{Logger: logger, ChimeDuration: cfg.ChimeDuration}
	sequencer := announce.NewSequencer(player, logger)

	display := surface.NewDisplay(apiClient, sequencer, logger)
	display.Render = renderDisplay

	ch, err := channel.Open(channel.Config{
		URL:            apiClient.WebSocketURL(),
		ReconnectDelay: cfg.ReconnectDelay,
		OnEvent:        display.OnEvent,
		OnOpen:         display.OnOpen,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer ch.Close()

	go sequencer.Run(ctx)
	display.Run(ctx)
	return nil
}

func renderDisplay(s *surface.State) {
	fmt.Println("========================================")
	if s.Current != nil {
		fmt.Printf("  NOMOR ANTRIAN   %s\n", s.Current.FormattedCode)
		fmt.Printf("  MENUJU LOKET    %d\n", s.Current.Counter)
	} else {
		fmt.Println("  Menunggu panggilan...")
	}
	if len(s.History) > 0 {
		fmt.Println("  ----------------------------------")
		for _, t := range s.History {
			fmt.Printf("  %s  loket %d\n", t.FormattedCode, t.Counter)
		}
	}
	if s.Settings.VideoURL != "" {
		fmt.Printf("  video: %s\n", s.Settings.VideoURL)
	}
	fmt.Println("========================================")
}
