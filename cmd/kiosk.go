package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ibher16/antrian-lab-ibsi/internal/client"
	"github.com/ibher16/antrian-lab-ibsi/internal/config"
	"github.com/ibher16/antrian-lab-ibsi/internal/models"
	"github.com/ibher16/antrian-lab-ibsi/internal/surface"
)

func newKioskCmd(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "kiosk",
		Short: "Run the ticket kiosk",
		RunE: func(*cobra.Command, []string) error {
			return runKiosk(ctx, cfg, logger)
		},
	}
}

func runKiosk(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	apiClient := client.New(cfg.ServerURL)
	kiosk := surface.NewKiosk(apiClient, surface.ConsolePrinter{}, logger)

	categories, err := kiosk.LoadCategories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	printKioskMenu(categories)
	lines := readLines(ctx)
	for {
		fmt.Print("Pilih layanan: ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "quit" || line == "exit" {
				return nil
			}
			id, err := strconv.Atoi(line)
			if err != nil {
				printKioskMenu(categories)
				continue
			}
			ticket, err := kiosk.Issue(ctx, id)
			if err != nil {
				fmt.Printf("Gagal membuat tiket: %v\n", err)
				continue
			}
			fmt.Printf("Nomor antrian Anda: %s\n", ticket.FormattedCode)
		}
	}
}

func printKioskMenu(categories []models.Category) {
	fmt.Println("Silakan pilih layanan:")
	for _, c := range categories {
		fmt.Printf("  %d. %s (%s)\n", c.ID, c.Name, c.Prefix)
	}
}
