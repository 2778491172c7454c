package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ihwang125/NewsToText/internal/alerts"
	"github.com/ihwang125/NewsToText/internal/api"
	"github.com/ihwang125/NewsToText/internal/app"
	"github.com/ihwang125/NewsToText/internal/models"
	"github.com/ihwang125/NewsToText/internal/session"
	"github.com/ihwang125/NewsToText/pkg/config"
	"github.com/ihwang125/NewsToText/pkg/keystore"
	"github.com/ihwang125/NewsToText/pkg/utils"
)

func main() {
	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.Client.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().
		Str("base_url", cfg.Client.BaseURL).
		Str("session_backend", cfg.Session.Backend).
		Msg("Starting NewsToText client")

	// Open the durable session keystore
	keys, err := openKeystore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session keystore")
	}
	defer keys.Close()

	// Session store: resolve persisted state before any guard decision
	sessions := session.New(keys)

	ctx := context.Background()
	if err := sessions.ResolveInitial(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve persisted session")
	}

	// Authorized request client and alert collection
	retryCfg := utils.RetryConfig{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
		Multiplier:   2.0,
		Jitter:       true,
	}
	client := api.New(cfg.Client.BaseURL, sessions, cfg.Client.Timeout, retryCfg)
	alertStore := alerts.New(client)

	// Router and views
	router := app.NewRouter(os.Stdout, sessions)
	router.Register(app.LoginView{})
	router.Register(app.DashboardView{Alerts: alertStore, Users: sessions})
	router.Register(app.HistoryView{API: client})

	// 401 anywhere lands on the login view, regardless of the caller
	client.OnAuthFailure(func() {
		fmt.Println("\nYour session has expired. Please log in again.")
		if err := router.Navigate(ctx, app.ViewLogin); err != nil {
			log.Error().Err(err).Msg("Failed to navigate to login")
		}
	})

	if err := router.Navigate(ctx, "dashboard"); err != nil {
		printError(err)
	}

	runREPL(ctx, bufio.NewReader(os.Stdin), router, client, sessions, alertStore)
}

// openKeystore selects the durable backend per configuration.
func openKeystore(cfg *config.Config) (keystore.Store, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		return keystore.NewRedisStore(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	default:
		return keystore.NewFileStore(cfg.Session.FilePath)
	}
}

func runREPL(
	ctx context.Context,
	in *bufio.Reader,
	router *app.Router,
	client *api.Client,
	sessions *session.Store,
	alertStore *alerts.Store,
) {
	for {
		fmt.Print("\n> ")
		line, err := in.ReadString('\n')
		if err != nil {
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "help":
			printHelp()

		case "login", "register":
			if len(args) != 2 {
				fmt.Printf("usage: %s <email> <password>\n", cmd)
				continue
			}
			handleAuth(ctx, cmd, args[0], args[1], client, sessions, router)

		case "logout":
			// Best effort server-side; the local session goes either way
			if err := client.Logout(ctx); err != nil && !api.IsAuth(err) {
				log.Warn().Err(err).Msg("Server logout failed")
			}
			if sessions.Clear(ctx) {
				navigate(ctx, router, app.ViewLogin)
			}

		case "alerts", "dashboard":
			navigate(ctx, router, "dashboard")

		case "history":
			navigate(ctx, router, "history")

		case "create":
			draft := promptDraft(in, alerts.Draft{Frequency: models.FrequencyDaily})
			if _, err := alertStore.Create(ctx, draft); err != nil {
				printError(err)
				continue
			}
			navigate(ctx, router, "dashboard")

		case "edit":
			handleEdit(ctx, in, args, alertStore, router)

		case "toggle", "delete", "test":
			id, ok := parseID(args)
			if !ok {
				fmt.Printf("usage: %s <id>\n", cmd)
				continue
			}
			handleAlertAction(ctx, cmd, id, alertStore, router)

		case "quit", "exit":
			return

		default:
			fmt.Printf("unknown command %q, try: help\n", cmd)
		}
	}
}

func handleAuth(ctx context.Context, cmd, email, password string, client *api.Client, sessions *session.Store, router *app.Router) {
	var resp *models.AuthResponse
	var err error
	if cmd == "register" {
		resp, err = client.Register(ctx, models.UserCreateRequest{Email: email, Password: password})
	} else {
		resp, err = client.Login(ctx, models.UserLoginRequest{Email: email, Password: password})
	}
	if err != nil {
		printError(err)
		return
	}

	if err := sessions.Set(ctx, resp.User, resp.Token); err != nil {
		printError(err)
		return
	}
	navigate(ctx, router, "dashboard")
}

func handleEdit(ctx context.Context, in *bufio.Reader, args []string, alertStore *alerts.Store, router *app.Router) {
	id, ok := parseID(args)
	if !ok {
		fmt.Println("usage: edit <id>")
		return
	}

	current, found := alertStore.Get(id)
	seed := alerts.Draft{Frequency: models.FrequencyDaily}
	if found {
		seed = alerts.Draft{
			Topic:     current.Topic,
			Keywords:  strings.Join(current.Keywords, ", "),
			Frequency: current.Frequency,
		}
	}

	draft := promptDraft(in, seed)
	keywords := alerts.ParseKeywords(draft.Keywords)
	if len(keywords) == 0 {
		fmt.Println("Please enter at least one keyword")
		return
	}

	patch := models.AlertUpdateRequest{
		Topic:     &draft.Topic,
		Keywords:  &keywords,
		Frequency: &draft.Frequency,
	}
	if _, err := alertStore.Update(ctx, id, patch); err != nil {
		printError(err)
		return
	}
	navigate(ctx, router, "dashboard")
}

func handleAlertAction(ctx context.Context, cmd string, id uint, alertStore *alerts.Store, router *app.Router) {
	var err error
	switch cmd {
	case "toggle":
		_, err = alertStore.ToggleActive(ctx, id)
	case "delete":
		err = alertStore.Delete(ctx, id)
	case "test":
		err = alertStore.Test(ctx, id)
	}
	if err != nil {
		printError(err)
		return
	}

	if cmd == "test" {
		fmt.Println("Test alert sent successfully!")
		return
	}
	navigate(ctx, router, "dashboard")
}

// promptDraft collects alert form fields, keeping seed values on empty
// input so edit pre-fills the current values.
func promptDraft(in *bufio.Reader, seed alerts.Draft) alerts.Draft {
	draft := seed
	if v := promptLine(in, fmt.Sprintf("Topic [%s]: ", seed.Topic)); v != "" {
		draft.Topic = v
	}
	if v := promptLine(in, fmt.Sprintf("Keywords, comma-separated [%s]: ", seed.Keywords)); v != "" {
		draft.Keywords = v
	}
	if v := promptLine(in, fmt.Sprintf("Frequency (realtime/hourly/daily) [%s]: ", seed.Frequency)); v != "" {
		draft.Frequency = models.AlertFrequency(v)
	}
	return draft
}

func promptLine(in *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := in.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func parseID(args []string) (uint, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func navigate(ctx context.Context, router *app.Router, name string) {
	if err := router.Navigate(ctx, name); err != nil {
		printError(err)
	}
}

// printError shows the user-presentable message. Auth failures already
// navigated to login; repeating the generic rejection would just be noise.
func printError(err error) {
	if api.IsAuth(err) {
		return
	}
	fmt.Println("Error:", api.Message(err))
}

func printHelp() {
	fmt.Print(`Commands:
  login <email> <password>     Sign in
  register <email> <password>  Create an account
  logout                       Sign out
  alerts                       Show your alerts
  create                       Create a new alert
  edit <id>                    Edit an alert
  toggle <id>                  Activate/deactivate an alert
  test <id>                    Send a test notification
  delete <id>                  Delete an alert
  history                      Show delivery history
  quit                         Exit
`)
}
