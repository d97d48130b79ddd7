// Package cli is the command line front end: account commands plus the
// protected report commands that need a restored session.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"mangrovewatch/backend/api"
	"mangrovewatch/backend/auth"
	"mangrovewatch/backend/config"
	"mangrovewatch/backend/dashboard"
	"mangrovewatch/backend/geo"
	"mangrovewatch/backend/photo"
	"mangrovewatch/backend/report"
	"mangrovewatch/backend/store"

	"github.com/apex/log"
)

var ErrUsage = errors.New("usage")

// App wires the session store into every command. Location and Extractor
// default from Config when nil.
type App struct {
	Config    *config.Config
	Store     store.Store
	Out       io.Writer
	Location  geo.Provider
	Extractor photo.Extractor

	session *auth.Session
	repo    *report.Repository
}

type command struct {
	name      string
	summary   string
	protected bool
	run       func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":     {"login", "Log in with any username and password", false, (*App).login},
	"signup":    {"signup", "Create an account", false, (*App).signup},
	"logout":    {"logout", "End the current session", false, (*App).logout},
	"dashboard": {"dashboard", "Show your profile and report statistics", true, (*App).dashboard},
	"report":    {"report", "Submit a mangrove incident report", true, (*App).report},
	"reports":   {"reports", "List submitted reports", true, (*App).reports},
	"export":    {"export", "Export submitted reports as GeoJSON", true, (*App).export},
}

func New(cfg *config.Config, st store.Store, out io.Writer) *App {
	if out == nil {
		out = os.Stdout
	}
	return &App{Config: cfg, Store: st, Out: out}
}

// Run executes one command. The session is restored first so that
// protected commands can refuse anonymous use.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	a.session = auth.NewSession(a.Store)
	a.repo = report.NewRepository(a.Store)
	a.session.Restore(ctx)

	if cmd.protected && !a.session.IsAuthenticated() {
		fmt.Fprintln(a.Out, "Please log in first: mangrovewatch login -username <name> -password <password>")
		return report.ErrNotAuthenticated
	}
	return cmd.run(a, ctx, args[1:])
}

func (a *App) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(a.Out, "Usage: mangrovewatch <command> [flags]")
	fmt.Fprintln(a.Out)
	for _, name := range names {
		fmt.Fprintf(a.Out, "  %-10s %s\n", name, commands[name].summary)
	}
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Out)
	return fs
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	var la auth.LoginArgs
	fs.StringVar(&la.Username, "username", "", "username")
	fs.StringVar(&la.Password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := auth.NewAuthenticator(a.session).Login(ctx, la)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Logged in as %s\n", u.Username)
	return nil
}

func (a *App) signup(ctx context.Context, args []string) error {
	fs := a.flags("signup")
	var sa auth.SignUpArgs
	fs.StringVar(&sa.Username, "username", "", "username")
	fs.StringVar(&sa.Phone, "phone", "", "phone number, digits with optional leading +")
	fs.StringVar(&sa.Password, "password", "", "password, at least 6 characters")
	fs.StringVar(&sa.ConfirmPassword, "confirm", "", "password again")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := auth.NewAuthenticator(a.session).SignUp(ctx, sa)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Welcome aboard, %s\n", u.Username)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.Out, "Logged out")
	return nil
}

func (a *App) dashboard(ctx context.Context, _ []string) error {
	v, err := dashboard.Build(ctx, a.session, a.repo)
	if err != nil {
		return err
	}
	return v.Render(a.Out)
}

func (a *App) locationProvider() (geo.Provider, error) {
	if a.Location != nil {
		return a.Location, nil
	}
	if a.Config.DeviceLocation == "" {
		return geo.NewLocator(geo.Unsupported{}), nil
	}
	c, err := geo.ParseDeviceLocation(a.Config.DeviceLocation)
	if err != nil {
		return nil, err
	}
	return geo.NewLocator(geo.Static{Coords: c}), nil
}

func (a *App) extractor() photo.Extractor {
	if a.Extractor != nil {
		return a.Extractor
	}
	switch a.Config.PhotoGPS {
	case "mock":
		return photo.NewMock(a.Config.MockGPSDelay, time.Now().UnixNano())
	case "none":
		return photo.None{}
	}
	return photo.Exif{}
}

func (a *App) workflowOptions() report.Options {
	opts := report.DefaultOptions
	opts.SubmitDelay = a.Config.SubmitDelay
	opts.ExtractTimeout = a.Config.ExtractTimeout
	opts.Location.Timeout = a.Config.LocationTimeout
	opts.Location.MaximumAge = a.Config.LocationMaxAge
	return opts
}

func (a *App) report(ctx context.Context, args []string) error {
	fs := a.flags("report")
	photoPath := fs.String("photo", "", "path to the incident photo")
	description := fs.String("description", "", "what happened")
	severity := fs.String("severity", string(api.DefaultSeverity), "low, medium, high or critical")
	location := fs.String("location", "", `manual location, "lat, lon"`)
	locate := fs.Bool("locate", false, "use the current device location")
	if err := fs.Parse(args); err != nil {
		return err
	}

	provider, err := a.locationProvider()
	if err != nil {
		return err
	}
	policy, ok := geo.ParsePolicy(a.Config.LocationPolicy)
	if !ok {
		log.Warnf("Unknown location policy %q, using last writer wins", a.Config.LocationPolicy)
	}
	w, err := report.NewWorkflow(report.Deps{
		Users:     a.session,
		Reports:   a.repo,
		Location:  provider,
		Extractor: a.extractor(),
		Policy:    policy,
	}, a.workflowOptions())
	if err != nil {
		return err
	}
	defer w.Close()

	if *photoPath != "" {
		p, err := photo.Load(*photoPath)
		if err != nil {
			return err
		}
		if err := w.SelectPhoto(p); err != nil {
			return err
		}
		w.Wait()
		if loc := w.State().Draft.Location; loc != "" {
			fmt.Fprintf(a.Out, "Location from photo: %s\n", loc)
		}
	}
	if *locate {
		if err := w.RequestCurrentLocation(ctx); err != nil {
			fmt.Fprintln(a.Out, w.State().Message)
		} else {
			fmt.Fprintf(a.Out, "Current location: %s\n", w.State().Draft.Location)
		}
	}
	if *location != "" {
		if err := w.SetLocation(*location); err != nil {
			return err
		}
	}
	if err := w.SetDescription(*description); err != nil {
		return err
	}
	if err := w.SetSeverity(*severity); err != nil {
		return err
	}

	if err := w.Submit(ctx); err != nil {
		var serr *report.SubmissionError
		if errors.As(err, &serr) {
			fmt.Fprintln(a.Out, serr.Message())
		}
		return err
	}
	rep := w.State().Report
	fmt.Fprintf(a.Out, "Report submitted successfully! (id %s, %s, %s)\n", rep.ID, rep.Location, rep.Severity)
	return nil
}

func (a *App) reports(ctx context.Context, args []string) error {
	fs := a.flags("reports")
	all := fs.Bool("all", false, "include reports of every user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := a.list(ctx, *all)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.Out, "No reports yet")
		return nil
	}
	for _, r := range list {
		fmt.Fprintf(a.Out, "%s  %-8s  %-22s  %-8s  %s  %s\n", r.Timestamp, r.Severity, r.Location, r.Status, r.Username, r.Description)
	}
	return nil
}

func (a *App) list(ctx context.Context, all bool) ([]api.Report, error) {
	if all {
		return a.repo.List(ctx)
	}
	u, _ := a.session.User()
	return a.repo.ListByUser(ctx, u.ID)
}

func (a *App) export(ctx context.Context, args []string) error {
	fs := a.flags("export")
	out := fs.String("o", "", "output file, stdout when empty")
	all := fs.Bool("all", false, "include reports of every user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := a.list(ctx, *all)
	if err != nil {
		return err
	}
	b, err := report.ExportGeoJSON(list)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = fmt.Fprintln(a.Out, string(b))
		return err
	}
	if err := os.WriteFile(*out, b, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(a.Out, "Exported %d reports to %s\n", len(list), *out)
	return nil
}
