// cmd/mnemo is the stdio entry point for the mnemo memory assistant.
//
// Plain input runs the memory pipeline: statements are extracted into stored
// facts, questions are answered from the stored facts. Slash commands manage
// the store directly (/list, /edit, /delete, /export, /import).
//
// Startup sequence:
//  1. Load configuration from the optional YAML file and environment variables.
//  2. Open the configured storage engine (sqlite by default) and load memories.
//  3. Start the background saver so every mutation is written through.
//  4. Create the LLM client for the configured provider.
//  5. Read lines from stdin until EOF, /quit, or a shutdown signal.
//
// All logging goes to stderr; stdout carries only answers, confirmations, and
// command output.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/scrypster/mnemo/internal/config"
	"github.com/scrypster/mnemo/internal/engine"
	"github.com/scrypster/mnemo/internal/llm"
	"github.com/scrypster/mnemo/internal/storage"
	"github.com/scrypster/mnemo/internal/storage/postgres"
	"github.com/scrypster/mnemo/internal/storage/sqlite"
	"github.com/scrypster/mnemo/pkg/types"
)

const banner = `Memory app ready.
Try: "Remember my favorite food is pizza"
Type /help for commands.`

const helpText = `Commands:
  /list                    show stored memories
  /edit <id> <what> = <value>   change a memory's label and value
  /delete <id>             remove a memory
  /export [dir]            write memories-<date>.json (default: current dir)
  /import <file>           replace ALL memories with the file's contents
  /help                    show this help
  /quit                    exit

Anything else is sent through the pipeline: statements are remembered,
questions are answered from what is stored.`

func main() {
	log.SetOutput(os.Stderr)
	log.SetPrefix("mnemo: ")
	log.SetFlags(log.LstdFlags)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	kv, err := openKV(cfg)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("received shutdown signal")
		cancel()
	}()

	store := storage.NewStore(kv)
	store.Load(ctx)
	store.Start(ctx)
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("storage shutdown error: %v", err)
		}
	}()

	completer, err := llm.NewCompleter(cfg.LLM)
	if err != nil {
		log.Fatalf("failed to create LLM client: %v", err)
	}
	log.Printf("provider %s, model %s, %d memories loaded", cfg.LLM.Provider, completer.GetModel(), store.Len())

	pipe := engine.New(completer, store, cfg.LLM)

	fmt.Println(banner)
	repl(ctx, pipe, store)
}

// openKV opens the storage engine named in the config.
func openKV(cfg *config.Config) (storage.KV, error) {
	switch cfg.Storage.Engine {
	case "sqlite", "":
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory %q: %w", cfg.Storage.DataPath, err)
		}
		return sqlite.NewKVStore(filepath.Join(cfg.Storage.DataPath, "mnemo.db"))
	case "postgres":
		return postgres.NewKVStore(cfg.Storage.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported storage engine: %q", cfg.Storage.Engine)
	}
}

// repl reads lines until EOF, /quit, or context cancellation.
func repl(ctx context.Context, pipe *engine.Pipeline, store *storage.Store) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(line, store); quit {
				return
			}
			continue
		}

		submit(ctx, pipe, line)
	}
}

// submit runs one utterance through the pipeline and prints the outcome.
func submit(ctx context.Context, pipe *engine.Pipeline, utterance string) {
	result, err := pipe.Process(ctx, utterance)
	if err != nil {
		printPipelineError(err)
		return
	}

	switch result.Kind {
	case engine.ResultSaved:
		m := result.Memory
		fmt.Printf("Memory saved!\n\nType: %s\nWhat: %s\nValue: %s\nExpires: %s\n\nTotal memories: %d\n",
			m.Type, m.What, m.Value, m.Expires, result.Total)
	case engine.ResultAnswer:
		fmt.Printf("Answer:\n\n%s\n", result.Answer)
	case engine.ResultNothingStored:
		fmt.Println(result.Answer)
	}
}

// printPipelineError turns a pipeline failure into a single user-visible message.
func printPipelineError(err error) {
	switch {
	case errors.Is(err, engine.ErrEmptyInput):
		// Nothing to do; the REPL already skips blank lines.
	case errors.Is(err, llm.ErrUnclear):
		fmt.Println("Could not extract memory.\nTry: \"Remember that <fact> is <value>\"")
	case errors.Is(err, llm.ErrInvalidResponse):
		fmt.Println("The model returned an invalid response. Nothing was saved.")
	default:
		fmt.Println(llm.UserMessage(err))
	}
}

// runCommand executes a slash command; it returns true when the REPL should exit.
func runCommand(line string, store *storage.Store) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Println(helpText)
	case "/list":
		listMemories(store)
	case "/edit":
		editMemory(store, rest)
	case "/delete":
		if rest == "" {
			fmt.Println("Usage: /delete <id>")
			break
		}
		store.Delete(rest)
		fmt.Printf("Deleted %s.\n", rest)
	case "/export":
		exportMemories(store, rest)
	case "/import":
		importMemories(store, rest)
	default:
		fmt.Printf("Unknown command %s. Type /help for commands.\n", cmd)
	}
	return false
}

func listMemories(store *storage.Store) {
	memories := store.List()
	if len(memories) == 0 {
		fmt.Println("No memories saved yet")
		return
	}
	for _, m := range memories {
		fmt.Printf("%s  %s: %s\n", m.ID, m.What, m.Value)
	}
	fmt.Printf("Total memories: %d\n", len(memories))
}

// editMemory parses "/edit <id> <what> = <value>" arguments and applies them.
func editMemory(store *storage.Store, args string) {
	id, fields, ok := strings.Cut(args, " ")
	if !ok {
		fmt.Println("Usage: /edit <id> <what> = <value>")
		return
	}
	what, value, ok := strings.Cut(fields, "=")
	if !ok {
		fmt.Println("Usage: /edit <id> <what> = <value>")
		return
	}

	err := store.Edit(id, strings.TrimSpace(what), strings.TrimSpace(value))
	switch {
	case err == nil:
		fmt.Printf("Updated %s.\n", id)
	case errors.Is(err, types.ErrValidation):
		fmt.Println("What and value must be non-empty.")
	case errors.Is(err, types.ErrNotFound):
		fmt.Printf("No memory with id %s.\n", id)
	default:
		fmt.Printf("Edit failed: %v\n", err)
	}
}

func exportMemories(store *storage.Store, dir string) {
	if dir == "" {
		dir = "."
	}
	data, err := store.ExportAll()
	if err != nil {
		fmt.Printf("Export failed: %v\n", err)
		return
	}
	path := filepath.Join(dir, storage.ExportFilename(time.Now()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		fmt.Printf("Export failed: %v\n", err)
		return
	}
	fmt.Printf("Exported %d memories to %s\n", store.Len(), path)
}

func importMemories(store *storage.Store, path string) {
	if path == "" {
		fmt.Println("Usage: /import <file>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		return
	}
	n, err := store.ImportAll(data)
	if err != nil {
		if errors.Is(err, storage.ErrImport) {
			fmt.Println("Import failed: the file is not a JSON array of memories.")
		} else {
			fmt.Printf("Import failed: %v\n", err)
		}
		return
	}
	fmt.Printf("Imported %d memories (previous store replaced).\n", n)
}
