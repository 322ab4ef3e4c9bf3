package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/cznethub/go-catalog-client/catalog"
	"github.com/cznethub/go-catalog-client/internal/config"
	"github.com/cznethub/go-catalog-client/internal/utils"
	"github.com/cznethub/go-catalog-client/notifications"
	"github.com/cznethub/go-catalog-client/persist"
	"github.com/cznethub/go-catalog-client/session"
	"github.com/cznethub/go-catalog-client/submissions"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(os.Args) < 2 {
		usage()
		return nil
	}

	c := config.New()
	displayAppname(c.GetAppName())

	store, err := persist.Open(c.GetCachePath())
	if err != nil {
		return fmt.Errorf("opening cache store: %w", err)
	}

	ctx := context.Background()
	authorizeURL := c.GetLoginURL()
	if authorizeURL == "" && c.GetOIDCIssuer() != "" {
		authorizeURL, err = session.ResolveAuthorizeEndpoint(ctx, c.GetOIDCIssuer())
		if err != nil {
			return fmt.Errorf("resolving authorize endpoint: %w", err)
		}
	}
	if authorizeURL == "" {
		return errors.New("set LOGIN_URL or OIDC_ISSUER")
	}

	bus := session.NewMessageBus()
	notifier := notifications.LogNotifier{}

	manager, err := session.NewManager(c.GetAppURL(), c.GetClientID(), session.Endpoints{
		Authorize:      authorizeURL,
		Search:         c.GetAPIBase() + "/discovery/search",
		Schema:         c.GetAPIBase() + "/schemas/schema.json",
		UISchema:       c.GetAPIBase() + "/schemas/ui-schema.json",
		SchemaDefaults: c.GetAPIBase() + "/schemas/schema-defaults.json",
	}, session.Collaborators{
		Window:   browserWindow{},
		Messages: bus,
		Notifier: notifier,
	}, session.WithStateStore(store))
	if err != nil {
		return fmt.Errorf("building session manager: %w", err)
	}

	client, err := catalog.NewClient(c.GetAPIBase(), manager)
	if err != nil {
		return fmt.Errorf("building catalog client: %w", err)
	}
	synchronizer, err := catalog.NewSynchronizer(client, manager, store, notifier)
	if err != nil {
		return fmt.Errorf("building synchronizer: %w", err)
	}

	switch os.Args[1] {
	case "login":
		return logIn(c, bus, manager)
	case "logout":
		manager.LogOut()
		return nil
	case "list":
		return list(ctx, synchronizer, store)
	case "register":
		return register(ctx, synchronizer, store, os.Args[2:])
	case "refresh":
		return refresh(ctx, synchronizer, store, os.Args[2:])
	case "delete":
		return remove(ctx, synchronizer, os.Args[2:])
	case "schemas":
		manager.FetchSchemas(ctx)
		state := manager.Snapshot()
		fmt.Printf("schema: %d bytes, ui-schema: %d bytes, defaults: %d bytes\n",
			len(state.Schema), len(state.UISchema), len(state.SchemaDefaults))
		return nil
	default:
		usage()
		return nil
	}
}

// logIn serves the auth-redirect page on the application origin's port,
// opens the authorize URL in the browser, and waits for the popup to
// deliver a token (or for an interrupt).
func logIn(c config.Config, bus *session.MessageBus, manager *session.Manager) error {
	addr, err := listenAddr(c.GetAppURL())
	if err != nil {
		return err
	}

	done := make(chan struct{})
	server := serveAuthRedirect(addr, c.GetAppURL(), bus)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := manager.LogIn(func() { close(done) }); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-done:
	case <-stop:
		fmt.Println("login cancelled")
	}
	return nil
}

func list(ctx context.Context, synchronizer *catalog.Synchronizer, store *persist.Store) error {
	synchronizer.FetchSubmissions(ctx)

	all, err := store.ReadAll()
	if err != nil {
		return err
	}

	view := submissions.NewView()
	for _, record := range view.Apply(all) {
		date := time.UnixMilli(record.Date).UTC().Format("2006-01-02")
		fmt.Printf("%-26s %-34s %s  %s\n", record.ID, record.Identifier, date, record.Title)
	}
	fmt.Printf("%d submission(s)\n", len(all))
	return nil
}

func register(ctx context.Context, synchronizer *catalog.Synchronizer, store *persist.Store, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: catalogctl register <identifier>")
	}

	record := synchronizer.RegisterSubmission(ctx, args[0])
	if record == nil {
		return nil
	}
	// Registration only maps the record; persisting it is on us.
	return store.Upsert([]submissions.Submission{*record})
}

func refresh(ctx context.Context, synchronizer *catalog.Synchronizer, store *persist.Store, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: catalogctl refresh <repo-identifier>")
	}

	record := synchronizer.UpdateSubmission(ctx, args[0])
	if record == nil {
		return nil
	}
	return store.Upsert([]submissions.Submission{*record})
}

func remove(ctx context.Context, synchronizer *catalog.Synchronizer, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: catalogctl delete <identifier> <id>")
	}
	synchronizer.DeleteSubmission(ctx, args[0], args[1])
	return nil
}

// serveAuthRedirect handles the popup's redirect target: it lifts the
// token off the query string and republishes it as a window message on
// the application origin.
func serveAuthRedirect(addr, origin string, bus *session.MessageBus) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth-redirect", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("access_token")
		bus.Publish(session.LoginMessage{Origin: origin, AccessToken: utils.Ptr(token)})
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintln(w, "<p>You may close this window.</p>")
	})

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("auth-redirect listener: %s\n", err)
		}
	}()
	return server
}

func listenAddr(appURL string) (string, error) {
	u, err := url.Parse(appURL)
	if err != nil {
		return "", fmt.Errorf("parsing APP_URL: %w", err)
	}
	port := u.Port()
	if port == "" {
		port = "8080"
	}
	return ":" + port, nil
}

// browserWindow opens URLs with the platform's default browser.
type browserWindow struct{}

func (browserWindow) Open(openURL string) error {
	fmt.Printf("Opening %s\n", openURL)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", openURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", openURL)
	default:
		cmd = exec.Command("xdg-open", openURL)
	}
	if err := cmd.Start(); err != nil {
		// The URL is already printed; the user can open it by hand.
		log.Printf("could not launch browser: %s\n", err)
	}
	return nil
}

func usage() {
	fmt.Println("usage: catalogctl <login|logout|list|register|refresh|delete|schemas> [args]")
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
