package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"property-intake/internal/broker"
	"property-intake/internal/catalog"
	"property-intake/internal/chat"
	"property-intake/internal/config"
	"property-intake/internal/model"
	"property-intake/internal/pkg/logger"
	"property-intake/internal/render"
	"property-intake/internal/repository"
	"property-intake/internal/service"
)

const helpText = `Answer the current question, or type free text to describe what you want.
Commands: /say <text>  /summary  /reset  /help  /quit`

// sayCommand sends the rest of the line as free text even when it would parse as an answer
const sayCommand = "/say"

func main() {
	useMock := flag.Bool("mock", false, "use the in-memory mock broker backend")
	logFile := flag.String("log", "", "write logs to this file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		color.Red("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	var log logger.Logger = logger.NewNop()
	if *logFile != "" {
		log = logger.NewZapLogger(*logFile, cfg.Logging.Level, true)
	}
	defer log.Sync()

	cat := catalog.Default()
	var brokerClient broker.Client
	if *useMock || cfg.Broker.UseMock {
		brokerClient = broker.NewMock(cat.Set(catalog.Set3BHKIndiranagar)).Accept(cat.All()...)
		color.Yellow("Using the in-memory mock broker backend")
	} else {
		brokerClient = broker.NewHTTPClient(cfg.Broker.APIBaseURL, cfg.Broker.Timeout)
		color.Cyan("Broker backend: %s", cfg.Broker.APIBaseURL)
	}

	sessions := repository.NewMemorySessionStore(cfg.Session.TTL, cfg.Session.CleanupInterval)
	svc := service.NewChatService(brokerClient, sessions, cat, service.NewEventHub(), log, cfg.Broker.Timeout)

	if err := run(context.Background(), svc, bufio.NewScanner(os.Stdin)); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *service.ChatService, in *bufio.Scanner) error {
	color.Cyan(helpText)
	messages := chat.NewMessageFactory()

	render.Message(os.Stdout, messages.Typing())
	state, err := svc.Initialize(ctx)
	shown := show(state, 0)
	if err != nil {
		return err
	}
	sessionID := *state.SessionID

	for {
		fmt.Print("\n» ")
		if !in.Scan() {
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			color.Cyan(helpText)
			continue
		case "/summary":
			summary, err := svc.Summary(ctx, sessionID)
			if err != nil {
				color.Red("Failed to load summary: %v", err)
				continue
			}
			printSummary(summary)
			continue
		case "/reset":
			if _, err := svc.Reset(ctx, sessionID); err != nil {
				color.Red("Failed to reset: %v", err)
				continue
			}
			render.Message(os.Stdout, messages.Typing())
			state, err = svc.Initialize(ctx)
			shown = show(state, 0)
			if err != nil {
				return err
			}
			sessionID = *state.SessionID
			continue
		}

		render.Message(os.Stdout, messages.Typing())
		next, err := step(ctx, svc, sessionID, parseInput(state, line))
		switch {
		case errors.Is(err, service.ErrBackend):
			// the failure is already part of the conversation
		case err != nil:
			color.Red("%v", err)
			continue
		}
		state = next
		shown = show(state, shown)

		if state.IsComplete {
			color.Green("\nAll set. Type /summary to review your answers.")
		}
	}
}

// input is either an answer to a question message or free text
type input struct {
	messageID string
	answer    any
	text      string
}

// parseInput treats the line as an answer to the active question when it parses as one.
// Lines starting with /say are always free text.
func parseInput(state chat.State, line string) input {
	if rest, ok := strings.CutPrefix(line, sayCommand); ok && (rest == "" || rest[0] == ' ') {
		return input{text: strings.TrimSpace(rest)}
	}
	if active, ok := state.LastActiveQuestion(); ok {
		if answer, err := render.ParseAnswer(*active.Question, line); err == nil {
			return input{messageID: active.ID, answer: answer}
		}
	}
	return input{text: line}
}

func step(ctx context.Context, svc *service.ChatService, sessionID string, in input) (chat.State, error) {
	if in.messageID != "" {
		return svc.SubmitAnswer(ctx, sessionID, in.messageID, in.answer)
	}
	return svc.SendMessage(ctx, sessionID, in.text)
}

// show renders the messages after the first `from` and returns the new count
func show(state chat.State, from int) int {
	for _, m := range state.Messages[min(from, len(state.Messages)):] {
		render.Message(os.Stdout, m)
	}
	return len(state.Messages)
}

func printSummary(summary *model.ConversationSummary) {
	color.Cyan("Progress: %d%%", summary.CompletionPercentage)
	for _, a := range summary.Answers {
		fmt.Printf("  %s: %s\n", a.Label, a.Display)
	}
	if len(summary.Backend) > 0 {
		b, err := json.MarshalIndent(summary.Backend, "  ", "  ")
		if err == nil {
			fmt.Printf("  backend: %s\n", b)
		}
	}
}
