package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hrmspro/hrms/internal/apiclient"
	"github.com/hrmspro/hrms/internal/notify"
	"github.com/hrmspro/hrms/internal/session"
	"github.com/hrmspro/hrms/pkg/logger"
	"go.yaml.in/yaml/v3"
)

var errNotLoggedIn = errors.New("not logged in, run `hrms login` first")

// clientDeps is everything a client command needs: the authenticated API
// client, the restored session and a toast center printing to stderr.
type clientDeps struct {
	api     *apiclient.Client
	session *session.Store
	toasts  *notify.Center
	logger  *slog.Logger
}

func newClient(ctx context.Context, requireLogin bool) (*clientDeps, error) {
	if err := cfg.Client.Validate(); err != nil {
		return nil, fmt.Errorf("client config: %w", err)
	}
	lg := logger.LoggerWrapper()

	base := apiclient.New(apiclient.Config{
		BaseURL: cfg.Client.APIBaseURL,
		Timeout: cfg.Client.RequestTimeout,
		Logger:  lg,
	})
	store := session.NewStore(base, session.NewFileStorage(cfg.Client.SessionFile), lg)
	if state := store.Init(ctx); requireLogin && state != session.StateAuthenticated {
		return nil, errNotLoggedIn
	}

	toasts := notify.NewCenter(notify.DefaultDuration, lg)
	toasts.Subscribe(notify.Printer(os.Stderr))

	return &clientDeps{
		api:     base.WithTokens(store),
		session: store,
		toasts:  toasts,
		logger:  lg,
	}, nil
}

func (d *clientDeps) Close() { d.toasts.Close() }

// writeOutput prints v as JSON or YAML. Table output is left to callers.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// prompt reads one line from in after printing question to out. Callers
// share one reader per command so buffered input survives between prompts.
func prompt(in *bufio.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func confirm(in *bufio.Reader, out io.Writer, question string) (bool, error) {
	answer, err := prompt(in, out, question+" [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// parseAssignments turns key=value pairs into a map, keeping the raw
// strings for the form to convert.
func parseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		out[key] = value
	}
	return out, nil
}
