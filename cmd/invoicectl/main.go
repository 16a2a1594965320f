// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/carterperez-dev/invoice-manager/internal/client"
)

const usage = `usage: invoicectl [flags] <command> [command flags]

commands:
  me          show the signed-in user
  users       list users (Admin)
  customers   list customers
  invoices    list invoices
  summary     dashboard totals
  export      download invoices as csv or xlsx
  pdf <id>    download one invoice as PDF

flags:
`

// readPassword is swapped out in tests so no terminal is needed.
var readPassword = term.ReadPassword

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "invoicectl:", err)
		if errors.Is(err, client.ErrSessionExpired) || client.StatusCode(err) == http.StatusUnauthorized {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("invoicectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	baseURL := fs.String("url", envOr("INVOICE_API_URL", "http://localhost:8080"), "API base URL")
	email := fs.String("email", os.Getenv("INVOICE_EMAIL"), "account email")
	verbose := fs.Bool("v", false, "log HTTP session events")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}

	if *email == "" {
		return errors.New("an account email is required (-email or INVOICE_EMAIL)")
	}

	password, err := promptPassword(stderr)
	if err != nil {
		return err
	}

	c, err := client.New(*baseURL)
	if err != nil {
		return err
	}

	if _, err := c.Login(ctx, *email, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer func() {
		if err := c.Logout(context.WithoutCancel(ctx)); err != nil {
			slog.Debug("logout failed", "error", err)
		}
	}()

	return cmd(ctx, c, fs.Args()[1:], stdout)
}

// promptPassword prefers INVOICE_PASSWORD so the tool can run unattended.
func promptPassword(w io.Writer) (string, error) {
	if pw := os.Getenv("INVOICE_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(w, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	return strings.TrimSpace(string(pw)), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
