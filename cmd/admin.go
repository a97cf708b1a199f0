package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ibher16/antrian-lab-ibsi/internal/channel"
	"github.com/ibher16/antrian-lab-ibsi/internal/client"
	"github.com/ibher16/antrian-lab-ibsi/internal/config"
	"github.com/ibher16/antrian-lab-ibsi/internal/models"
	"github.com/ibher16/antrian-lab-ibsi/internal/surface"
)

func newAdminCmd(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "admin",
		Short: "Run the operator station",
		RunE: func(*cobra.Command, []string) error {
			return runAdmin(ctx, cfg, logger)
		},
	}
}

func runAdmin(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	apiClient := client.New(cfg.ServerURL)
	admin := surface.NewAdmin(apiClient, cfg.CounterFile, logger)
	admin.RefetchEvery = cfg.RefetchEvery

	ch, err := channel.Open(channel.Config{
		URL:            apiClient.WebSocketURL(),
		ReconnectDelay: cfg.ReconnectDelay,
		OnEvent:        admin.OnEvent,
		OnOpen:         admin.OnOpen,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer ch.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go admin.Run(ctx)

	fmt.Printf("Operator station, counter %d. Type 'help' for commands.\n", admin.Counter())
	lines := readLines(ctx)
	// Reset confirmations read from the same line channel as commands so the
	// prompt loop and the confirmation never compete for stdin.
	confirm := func(prompt string) bool {
		fmt.Printf("%s [y/N] ", prompt)
		select {
		case <-ctx.Done():
			return false
		case line, ok := <-lines:
			if !ok {
				return false
			}
			answer := strings.ToLower(strings.TrimSpace(line))
			return answer == "y" || answer == "yes"
		}
	}

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := adminCommand(ctx, admin, apiClient, confirm, line); quit {
				return nil
			}
		}
	}
}

// readLines feeds stdin lines over a channel so the prompt loop can also
// observe ctx cancellation.
func readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func adminCommand(ctx context.Context, admin *surface.Admin, apiClient *client.Client, confirm surface.ConfirmFunc, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		printAdminHelp()
	case "counter":
		n, err := parseIntArg(args)
		if err != nil {
			fmt.Println("usage: counter <number>")
			return false
		}
		admin.SetCounter(n)
		fmt.Printf("Serving as counter %d\n", n)
	case "next":
		reportCall(admin.CallNext(ctx))
	case "call":
		id, err := parseIntArg(args)
		if err != nil {
			fmt.Println("usage: call <ticket id>")
			return false
		}
		reportCall(admin.Call(ctx, id))
	case "manual":
		if len(args) != 1 {
			fmt.Println("usage: manual <code>  (e.g. manual A-005)")
			return false
		}
		reportCall(admin.CallManual(ctx, strings.ToUpper(args[0])))
	case "recall":
		reportCall(admin.Recall(ctx))
	case "finish":
		reportErr(admin.Finish(ctx))
	case "done":
		reportCall(admin.FinishAndCallNext(ctx))
	case "skip":
		id, err := parseIntArg(args)
		if err != nil {
			fmt.Println("usage: skip <ticket id>")
			return false
		}
		reportErr(admin.Skip(ctx, id))
	case "list":
		printWaiting(admin.Snapshot())
	case "stats":
		printStats(admin.Snapshot().Stats)
	case "reset":
		reportErr(admin.Reset(ctx, confirm))
	case "video":
		if len(args) != 1 {
			fmt.Println("usage: video <url>")
			return false
		}
		reportErr(apiClient.UpdateDisplaySettings(ctx, models.DisplaySettings{VideoURL: args[0]}))
	case "quit", "exit":
		return true
	default:
		fmt.Printf("unknown command %q, type 'help'\n", cmd)
	}
	return false
}

func printAdminHelp() {
	fmt.Println(`Commands:
  next              call the next waiting ticket
  call <id>         call a specific ticket
  manual <code>     call a ticket by its printed code
  recall            re-announce the current ticket
  finish            finish the current ticket
  done              finish the current ticket and call the next
  skip <id>         skip a waiting ticket
  list              show the waiting list
  stats             show queue statistics
  counter <n>       set this station's counter number
  video <url>       change the display video
  reset             clear today's queue
  quit              leave`)
}

func reportCall(ticket models.Ticket, err error) {
	if err != nil {
		reportErr(err)
		return
	}
	fmt.Printf("Calling %s to counter %d\n", ticket.FormattedCode, ticket.Counter)
}

func reportErr(err error) {
	switch {
	case err == nil:
		fmt.Println("OK")
	case errors.Is(err, surface.ErrResetAborted):
		fmt.Println("Reset aborted")
	default:
		fmt.Printf("Error: %v\n", err)
	}
}

func printWaiting(s surface.State) {
	if len(s.Waiting) == 0 {
		fmt.Println("No waiting tickets")
		return
	}
	for _, t := range s.Waiting {
		fmt.Printf("  %4d  %s  %s\n", t.ID, t.FormattedCode, t.CreatedAt.Format("15:04"))
	}
}

func printStats(stats models.QueueStats) {
	fmt.Printf("waiting %d, calling %d, finished %d, skipped %d, total %d\n",
		stats.Waiting, stats.Calling, stats.Finished, stats.Skipped, stats.Total)
}

func parseIntArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected one argument")
	}
	return strconv.Atoi(args[0])
}
