package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"

	"github.com/illarion/clipseal/cmd"
)

func main() {
	memguard.CatchInterrupt()
	defer memguard.Purge()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seal":
		runSeal(ctx, os.Args[2:])
	case "open":
		runOpen(ctx, os.Args[2:])
	case "serve":
		runServe(ctx, os.Args[2:])
	case "secret":
		runSecret(ctx, os.Args[2:])
	case "history":
		runHistory(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "config":
		runConfig(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func parse(name string, args []string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return fs
}

func runSeal(ctx context.Context, args []string) {
	fs := parse("seal", args)
	cmd.Seal(ctx, fs.Args())
}

func runOpen(ctx context.Context, args []string) {
	fs := parse("open", args)
	cmd.Open(ctx, fs.Args())
}

func runServe(ctx context.Context, args []string) {
	parse("serve", args)
	cmd.Serve(ctx)
}

func runSecret(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: clipseal secret <save|forget|status>")
		os.Exit(1)
	}

	switch args[0] {
	case "save":
		cmd.SecretSave(ctx)
	case "forget", "delete":
		cmd.SecretForget(ctx)
	case "status":
		cmd.SecretStatus(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown secret subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func runHistory(ctx context.Context, args []string) {
	if len(args) < 1 {
		cmd.HistoryList(ctx)
		return
	}

	switch args[0] {
	case "list", "ls":
		cmd.HistoryList(ctx)
	case "show":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: clipseal history show <seq>")
			os.Exit(1)
		}
		cmd.HistoryShow(ctx, args[1])
	case "diff":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "Usage: clipseal history diff <seq> <seq>")
			os.Exit(1)
		}
		cmd.HistoryDiff(ctx, args[1], args[2])
	case "rm", "remove":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: clipseal history rm <seq>")
			os.Exit(1)
		}
		cmd.HistoryRemove(ctx, args[1])
	case "clear":
		cmd.HistoryClear(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown history subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func runCompact(ctx context.Context, args []string) {
	parse("compact", args)
	cmd.Compact(ctx)
}

func runConfig(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: clipseal config <init|show>")
		os.Exit(1)
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("config init", flag.ExitOnError)
		force := fs.Bool("force", false, "Overwrite an existing settings file")
		if err := fs.Parse(args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		cmd.ConfigInit(ctx, *force)
	case "show":
		cmd.ConfigShow(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: clipseal completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("clipseal - end-to-end encryption for clipboard sync")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  clipseal <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  seal        Encrypt text into an envelope")
	fmt.Println("  open        Decrypt an envelope")
	fmt.Println("  serve       Answer JSON-lines requests on stdin/stdout")
	fmt.Println("  secret      Manage the secret in the OS keyring")
	fmt.Println("  history     Inspect sealed clipboard history")
	fmt.Println("  compact     Compact the history database")
	fmt.Println("  config      Create or show the settings file")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  clipseal secret save            # Store secret in OS keyring")
	fmt.Println("  echo hello | clipseal seal      # Encrypt stdin")
	fmt.Println("  clipseal open < envelope.json   # Decrypt an envelope")
	fmt.Println("  clipseal history diff 3 4       # Compare two clipboard entries")
	fmt.Println()
	fmt.Println("Use 'clipseal help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "seal":
		fmt.Println("clipseal seal [text...]")
		fmt.Println()
		fmt.Println("Encrypts text and prints the envelope as JSON.")
		fmt.Println("Reads stdin when no text is given.")
		fmt.Println("Each envelope uses a fresh salt and nonce.")
		fmt.Println()
		fmt.Println("Secret sources, in order:")
		fmt.Println("  CLIPSEAL_SECRET, the OS keyring, a terminal prompt")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  clipseal seal hello")
		fmt.Println("  pbpaste | clipseal seal > envelope.json")
	case "open":
		fmt.Println("clipseal open [envelope-json]")
		fmt.Println()
		fmt.Println("Decrypts an envelope and prints its text.")
		fmt.Println("Reads stdin when no envelope is given.")
		fmt.Println("A wrong secret and a modified envelope give the same error.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  clipseal open < envelope.json")
	case "serve":
		fmt.Println("clipseal serve")
		fmt.Println()
		fmt.Println("Reads one JSON request per line on stdin and writes one response")
		fmt.Println("per line on stdout. Requests run concurrently, up to max_concurrency.")
		fmt.Println()
		fmt.Println("Request:  {\"id\":\"1\",\"command\":\"encrypt_message\",\"args\":{\"plaintext\":\"hi\"}}")
		fmt.Println("Response: {\"id\":\"1\",\"ok\":true,\"result\":{\"salt\":...,\"iv\":...,\"ciphertext\":...}}")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  set_secret, clear_secret, encrypt_message, decrypt_message,")
		fmt.Println("  save_secret, load_secret, delete_secret, secret_status,")
		fmt.Println("  publish_clipboard, receive_clipboard")
	case "secret":
		fmt.Println("clipseal secret <save|forget|status>")
		fmt.Println()
		fmt.Println("Manages the secret stored in the OS keyring.")
		fmt.Println()
		fmt.Println("Subcommands:")
		fmt.Println("  save     Prompt for the secret and store it")
		fmt.Println("  forget   Remove the stored secret")
		fmt.Println("  status   Show where a secret is available")
	case "history":
		fmt.Println("clipseal history [list|show <seq>|diff <seq> <seq>|rm <seq>|clear]")
		fmt.Println()
		fmt.Println("Sealed clipboard history written by 'clipseal serve'.")
		fmt.Println("Records are stored encrypted; list does not require the secret.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  clipseal history")
		fmt.Println("  clipseal history show 12")
		fmt.Println("  clipseal history diff 11 12")
		fmt.Println("  clipseal history rm 11")
	case "compact":
		fmt.Println("clipseal compact")
		fmt.Println()
		fmt.Println("Compacts the history database to reclaim unused disk space.")
		fmt.Println()
		fmt.Println("Does not require the secret.")
	case "config":
		fmt.Println("clipseal config <init [--force]|show>")
		fmt.Println()
		fmt.Println("Manages the TOML settings file (CLIPSEAL_CONFIG overrides its location).")
		fmt.Println()
		fmt.Println("Subcommands:")
		fmt.Println("  init   Write the default settings; --force replaces an existing file")
		fmt.Println("  show   Print the settings in effect")
	case "completion":
		fmt.Println("clipseal completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(clipseal completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(clipseal completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  clipseal completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
