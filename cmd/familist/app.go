package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dukerupert/familist/internal/apiclient"
	"github.com/dukerupert/familist/internal/guard"
	"github.com/dukerupert/familist/internal/logging"
	"github.com/dukerupert/familist/internal/session"
)

// routeAnnotation marks a command as a protected page. Its value is the
// route the guard checks before the command runs.
const routeAnnotation = "familist/route"

type app struct {
	v       *viper.Viper
	out     io.Writer
	in      io.Reader
	jsonOut bool

	level   *slog.LevelVar
	logger  *slog.Logger
	session *session.Manager
	prefs   *session.Preferences
	client  *apiclient.Client
}

func newRootCmd(version string) *cobra.Command {
	a := &app{v: viper.New(), level: new(slog.LevelVar)}

	var configPath string
	root := &cobra.Command{
		Use:           "familist",
		Short:         "FamiList - share household tasks with your family",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			a.in = cmd.InOrStdin()
			if err := a.setup(configPath); err != nil {
				return err
			}
			return a.guard(cmd)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.familist/config.yaml)")
	root.PersistentFlags().String("api-url", "", "FamiList API base URL")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print raw JSON")
	a.v.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url"))

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.familyCmd(),
		a.membersCmd(),
		a.tasksCmd(),
		a.recordsCmd(),
		a.familyEventsCmd(),
		a.chatCmd(),
		a.reportsCmd(),
		a.calendarCmd(),
		a.debugCmd(),
		a.langCmd(),
		a.watchCmd(),
	)
	return root
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".familist"
	}
	return filepath.Join(home, ".familist")
}

// loadConfig reads the YAML config file when present. FAMILIST_* env vars
// and flags override it.
func (a *app) loadConfig(path string) error {
	dir := defaultDir()
	a.v.SetDefault("api_url", "http://localhost:3000")
	a.v.SetDefault("state_file", filepath.Join(dir, "state.json"))
	a.v.SetEnvPrefix("FAMILIST")
	a.v.AutomaticEnv()

	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}
	a.v.SetConfigFile(path)
	a.v.SetConfigType("yaml")
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func (a *app) setup(configPath string) error {
	if err := a.loadConfig(configPath); err != nil {
		return err
	}

	storage := session.NewFileStorage(a.v.GetString("state_file"))
	a.prefs = session.NewPreferences(storage)
	prefs, err := a.prefs.Get()
	if err != nil {
		return err
	}
	a.setLevel(prefs)
	a.logger = logging.NewLeveled(os.Stderr, a.level, "text")
	a.prefs.Subscribe(a.setLevel)

	a.session = session.NewManager(storage, nil)
	a.client = apiclient.New(a.v.GetString("api_url"), a.session,
		apiclient.WithHTTPClient(&http.Client{
			Timeout:   15 * time.Second,
			Transport: &debugTransport{base: http.DefaultTransport, logger: a.logger},
		}))
	a.session.SetAuthenticator(a.client)

	wasSignedIn := false
	a.session.Subscribe(func(s session.Snapshot) {
		if wasSignedIn && !s.Authenticated() {
			a.logger.Debug("session cleared")
		}
		wasSignedIn = s.Authenticated()
	})
	return a.session.Load()
}

func (a *app) setLevel(p session.Prefs) {
	if p.Debug {
		a.level.Set(slog.LevelDebug)
	} else {
		a.level.Set(slog.LevelWarn)
	}
}

// guard stops protected commands the current session may not reach.
func (a *app) guard(cmd *cobra.Command) error {
	route, ok := cmd.Annotations[routeAnnotation]
	if !ok {
		return nil
	}
	state, d := guard.Check(a.session, route)
	if d.Allow {
		return nil
	}
	a.logger.Debug("guard redirect", "route", route, "state", state.String(), "redirect", d.Redirect)
	switch d.Redirect {
	case guard.RouteLogin:
		return errors.New("not logged in: run `familist login` first")
	case guard.RouteFamilySetup:
		return errors.New("you are not in a family yet: run `familist family create <name>` or `familist family join <id>`")
	}
	return fmt.Errorf("session not ready (%s)", state)
}

func protect(cmd *cobra.Command, route string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[routeAnnotation] = route
	return cmd
}

// debugTransport logs every API call at debug level.
type debugTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Debug("api request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, err
	}
	t.logger.Debug("api request", "method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}
