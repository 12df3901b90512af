package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/peterh/liner"

	"promptbox-backend/internal/config"
	"promptbox-backend/internal/models"
	"promptbox-backend/internal/repository"
	"promptbox-backend/internal/services"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
)

// terminalDisplay prints every applied display state, the terminal's version
// of the responseText element.
type terminalDisplay struct {
	out io.Writer
}

func (d terminalDisplay) PublishDisplay(ctx context.Context, state models.DisplayState) {
	fmt.Fprintf(d.out, "%s%s%s\n\n", colorBlue, state.Text, colorReset)
}

type diagnosticLister interface {
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.Diagnostic, error)
}

// printDiagnostics lists the session's recent failures, newest first.
func printDiagnostics(ctx context.Context, out io.Writer, lister diagnosticLister, session uuid.UUID) {
	if lister == nil {
		fmt.Fprintln(out, "No diagnostics database configured (set DIAGNOSTICS_DB).")
		return
	}
	entries, err := lister.ListBySession(ctx, session, 20)
	if err != nil {
		fmt.Fprintf(out, "Diagnostics error: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No failures recorded in this session.")
		return
	}
	for _, d := range entries {
		fmt.Fprintf(out, "%s%s%s  %-15s  status=%d  %s\n",
			colorYellow, d.CreatedAt.Local().Format("15:04:05"), colorReset, d.Kind, d.StatusCode, d.Detail)
	}
}

func main() {
	cfg := config.LoadCLI()

	diagnostics := services.MultiRecorder{services.LogRecorder{}}
	var lister diagnosticLister
	if cfg.DiagnosticsDB != "" {
		repo, err := repository.NewSQLiteDiagnosticRepo(cfg.DiagnosticsDB)
		if err != nil {
			log.Fatalf("✗ Diagnostics database failed: %v", err)
		}
		defer repo.Close()
		diagnostics = append(diagnostics, repo)
		lister = repo
	}

	chatClient, closeClient, err := services.NewChatClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("✗ Completion client initialization failed: %v", err)
	}
	defer closeClient()

	svc := services.NewSubmitService(
		chatClient,
		repository.NewMemoryDisplayRepo(cfg.LatestOnly(), cfg.SessionTTL),
		diagnostics,
		terminalDisplay{out: os.Stdout},
	)

	rl := liner.NewLiner()
	defer rl.Close()
	rl.SetCtrlCAborts(true)

	fmt.Printf("%sPromptbox (%s). ':diag' lists failures, Ctrl+D or 'exit' to quit.%s\n", colorYellow, chatClient.Model(), colorReset)

	session := uuid.New()
	for {
		fmt.Print(colorGreen)
		line, err := rl.Prompt("You: ")
		fmt.Print(colorReset)

		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("\nExiting.")
				return
			}
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			continue
		}
		switch strings.TrimSpace(line) {
		case "exit":
			return
		case ":diag":
			printDiagnostics(context.Background(), os.Stdout, lister, session)
			continue
		}
		rl.AppendHistory(line)

		if _, err := svc.Submit(context.Background(), session, line); err != nil {
			fmt.Fprintf(os.Stderr, "Submit error: %v\n", err)
		}
	}
}
