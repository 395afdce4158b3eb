package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"invoice-agent/internal/app"

	"github.com/google/uuid"
)

var errExit = errors.New("exit")

// Run starts the interactive REPL loop.
// Slash commands are dispatched deterministically; anything else is one chat
// turn against the current conversation.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) {
	conversationID := uuid.NewString()

	fmt.Fprintln(out, "Invoice Assistant")
	fmt.Fprintln(out, "Describe the invoice you want to raise, or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "draft", "d":
			result, err := svc.GetDraft(ctx, conversationID)
			if err != nil {
				return err
			}
			printDraft(out, result)

		case "new", "reset":
			if err := svc.ResetDraft(ctx, conversationID); err != nil {
				return err
			}
			conversationID = uuid.NewString()
			fmt.Fprintln(out, "Started a new invoice.")

		case "clients":
			result, err := svc.ListClients(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printClients(out, result)

		case "items", "inventory":
			result, err := svc.ListItems(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printItems(out, result)

		case "invoices":
			result, err := svc.ListInvoices(ctx)
			if err != nil {
				return err
			}
			printInvoices(out, result)

		case "download":
			if len(args) < 1 {
				fmt.Fprintln(out, "Usage: /download <filename> [directory]")
				return nil
			}
			result, err := svc.Download(ctx, args[0])
			if err != nil {
				return err
			}
			dir := "."
			if len(args) >= 2 {
				dir = args[1]
			}
			target := filepath.Join(dir, result.Filename)
			if err := os.WriteFile(target, result.Content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			fmt.Fprintf(out, "Saved %s (%d bytes).\n", target, len(result.Content))

		case "add-client":
			handleAddClient(ctx, reader, out, svc)

		case "add-item":
			handleAddItem(ctx, reader, out, svc)

		case "help", "h":
			printHelp(out)

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Fprintf(out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Fprint(out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if readErr != nil {
				return
			}
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return
				}
				printError(out, err)
			}
			continue
		}

		fmt.Fprintln(out, "[AI] Thinking...")
		result, err := svc.Chat(ctx, app.ChatRequest{ConversationID: conversationID, Message: input})
		if err != nil {
			printError(out, err)
			continue
		}
		printChat(out, result)
	}
}
