// Terminal chat client. Reads one question per line from stdin and prints
// the transcript to stdout; diagnostics go to stderr so the transcript
// stays pipeable.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/campusbot/course-ai-platform/cmd/mainconfig"
	"github.com/campusbot/course-ai-platform/internal/chat"
	appconfig "github.com/campusbot/course-ai-platform/internal/config"
	"github.com/campusbot/course-ai-platform/internal/identity"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewText(os.Stderr, cfg.LogLevel)

	if err := cfg.ValidateLex(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Widget sessions are anonymous; without static keys, exchange the
	// identity pool for scoped guest credentials the way the embedded
	// widget does.
	if cfg.IdentityPoolID != "" && cfg.AWSAccessKeyID == "" {
		awsCfg.Credentials = identity.NewPoolProvider(awsCfg, cfg.IdentityPoolID)
		logger.Debug("using identity pool credentials", "pool_id", cfg.IdentityPoolID)
	}

	botCfg := chat.Config{
		BotID:      cfg.LexBotID,
		BotAliasID: cfg.LexBotAliasID,
		LocaleID:   cfg.LexLocaleID,
	}
	dispatcher := chat.NewDispatcher(
		botCfg,
		chat.NewLexClient(awsCfg),
		chat.NewSession(),
		chat.NewWriterPresenter(os.Stdout),
		logger,
		nil,
	)

	fmt.Fprintln(os.Stderr, "Ask about courses, professors, or timetables. Ctrl-D to quit.")

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

	for {
		select {
		case <-ctx.Done():
			// In-flight exchanges finish before exit.
			dispatcher.Wait()
			return
		case line, ok := <-lines:
			if !ok {
				dispatcher.Wait()
				return
			}
			dispatcher.Dispatch(ctx, line)
		}
	}
}
