// Command telecare is a CLI client for the telecare backend: it drives the
// session manager against a running server and shows where the navigation
// gate would route.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"telecare/internal/backend/client"
	"telecare/internal/errors"
	"telecare/internal/navigation"
	"telecare/internal/session"
)

// ---- session store ----

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "telecare")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "telecare")
}

func sessionPath() string { return filepath.Join(cfgDir(), "session.json") }

func saveSession(sess *client.Session) error {
	if sess == nil {
		return os.Remove(sessionPath())
	}
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(sessionPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(sess)
}

func loadSession() *client.Session {
	b, err := os.ReadFile(sessionPath())
	if err != nil {
		return nil
	}
	var sess client.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil
	}
	return &sess
}

// ---- helpers ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `telecare CLI
Usage:
  telecare -addr URL <cmd> [args]

Commands:
  signup       -email E -password P -name N -type patient|doctor|admin [-contact C]
  login        -email E -password P
  login-admin  -email E -password P
  logout
  whoami
  profile                                      (refreshes and prints the profile)
  profile-edit [-name N] [-contact C]
  route                                        (prints the gated screen)
  delete-account
`)
	os.Exit(2)
}

// newManager builds the client and manager, restoring any persisted session.
func newManager(addr string) (*session.Manager, *client.HTTPClient) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	backend, err := client.NewHTTPClient(addr, client.WithLogger(logger))
	if err != nil {
		fail(err)
	}
	backend.RestoreSession(loadSession())

	mgr := session.NewManager(backend, backend, logger)
	mgr.Start()

	return mgr, backend
}

// persist writes the client's current session to disk, or removes the file
// when signed out.
func persist(backend *client.HTTPClient) {
	if err := saveSession(backend.Session()); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "warning: persist session:", err)
	}
}

// refreshAndPrintProfile fetches the current profile and prints the state.
func refreshAndPrintProfile(ctx context.Context, mgr *session.Manager) {
	if err := mgr.RefreshProfile(ctx); err != nil {
		fail(err)
	}
	snap := mgr.Snapshot()
	switch snap.Profile.Status {
	case session.ProfileLoaded:
		printJSON(snap.Profile.Profile)
	case session.ProfileMissing:
		fmt.Println("no profile yet")
	default:
		fmt.Println("profile not loaded")
	}
}

// main dispatches subcommands against the session manager.
func main() {
	addr := flag.String("addr", "http://localhost:8080", "backend base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mgr, backend := newManager(*addr)
	defer mgr.Close()

	switch cmd {

	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		name := fs.String("name", "", "full name")
		userType := fs.String("type", "patient", "patient|doctor|admin")
		contact := fs.String("contact", "", "contact number")
		_ = fs.Parse(flag.Args()[1:])
		if *email == "" || *password == "" || *name == "" {
			fmt.Fprintln(os.Stderr, "need -email, -password and -name")
			os.Exit(1)
		}

		user, err := mgr.SignUp(ctx, *email, *password, client.ProfileAttributes{
			FullName:      *name,
			UserType:      *userType,
			ContactNumber: *contact,
		})
		if err != nil {
			fail(err)
		}
		persist(backend)
		if backend.Session() == nil {
			fmt.Println("account created, confirmation pending; profile will be created at first login")
		}
		printJSON(user)

	case "login", "login-admin":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *email == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "need -email and -password")
			os.Exit(1)
		}

		signIn := mgr.SignIn
		if cmd == "login-admin" {
			signIn = mgr.SignInAsAdmin
		}
		user, err := signIn(ctx, *email, *password)
		if err != nil {
			if errors.Is(err, session.ErrAccessDenied) {
				persist(backend)
			}
			fail(err)
		}
		persist(backend)
		printJSON(user)

	case "logout":
		if err := mgr.SignOut(ctx); err != nil {
			fail(err)
		}
		// give the background revocation a moment before exiting
		time.Sleep(300 * time.Millisecond)
		persist(backend)
		fmt.Println("ok")

	case "whoami":
		snap := mgr.Snapshot()
		if snap.User == nil {
			fmt.Println("not signed in")
			os.Exit(1)
		}
		printJSON(snap.User)

	case "profile":
		refreshAndPrintProfile(ctx, mgr)

	case "profile-edit":
		fs := flag.NewFlagSet("profile-edit", flag.ExitOnError)
		name := fs.String("name", "", "full name")
		contact := fs.String("contact", "", "contact number")
		_ = fs.Parse(flag.Args()[1:])

		var changes client.ProfileChanges
		if *name != "" {
			changes.FullName = name
		}
		if *contact != "" {
			changes.ContactNumber = contact
		}
		if changes.FullName == nil && changes.ContactNumber == nil {
			fmt.Fprintln(os.Stderr, "nothing to change; pass -name or -contact")
			os.Exit(1)
		}

		if err := mgr.UpdateProfile(ctx, changes); err != nil {
			fail(err)
		}
		refreshAndPrintProfile(ctx, mgr)

	case "route":
		fmt.Println(navigation.Route(mgr.Snapshot()))

	case "delete-account":
		if err := mgr.DeleteAccount(ctx); err != nil {
			fail(err)
		}
		persist(backend)
		fmt.Println("ok")

	default:
		usage()
	}
}
