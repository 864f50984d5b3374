package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/opsboard/opsboard-go/internal/app"
	"github.com/opsboard/opsboard-go/internal/credentials"
	"github.com/opsboard/opsboard-go/internal/nav"
	"github.com/opsboard/opsboard-go/internal/permissions"
	"github.com/opsboard/opsboard-go/internal/pipeline"
	"github.com/opsboard/opsboard-go/internal/session"
)

const usage = `usage: opsboard <command> [flags]

commands:
  login    -username <name> -password <secret>
  logout   invalidate the session and clear local credentials
  whoami   show the signed-in identity and capabilities
  routes   list console routes and their requirements
  open     <route> evaluate the navigation guard for a route
  watch    keep the session monitor running until interrupted
`

type console struct {
	logger  *slog.Logger
	store   *credentials.Store
	client  *pipeline.Client
	guard   *nav.Guard
	history *nav.History
	table   nav.Table
	monitor *session.Monitor
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store := credentials.NewStore(logger, credentials.NewRedisStorage(redisClient, cfg.StorageNamespace))
	store.Restore(ctx)

	history := nav.NewHistory(nav.RouteLogin)
	if store.IsAuthenticated() {
		history.Go(nav.RouteHome)
	}

	client := pipeline.NewClient(logger, store, history, pipeline.Config{
		BaseURL:             cfg.APIBaseURL,
		Timeout:             cfg.RequestTimeout,
		SingleFlightRefresh: cfg.SingleFlightRefresh,
	})

	c := &console{
		logger:  logger,
		store:   store,
		client:  client,
		guard:   nav.NewGuard(logger, store),
		history: history,
		table:   nav.NewTable(nav.DefaultRoutes()),
		monitor: session.NewMonitor(logger, client, store, cfg.ProbeInterval),
	}

	if err := c.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", slog.String("command", os.Args[1]), slog.Any("error", err))
		os.Exit(1)
	}
}

func (c *console) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.login(ctx, args)
	case "logout":
		c.monitor.Stop()
		c.client.Logout(ctx)
		fmt.Println("signed out")
		return nil
	case "whoami":
		return c.whoami(ctx)
	case "routes":
		c.routes()
		return nil
	case "open":
		return c.open(ctx, args)
	case "watch":
		return c.watch(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (c *console) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "account name")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("login requires -username and -password")
	}

	user, err := c.client.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	c.history.Go(nav.RouteHome)
	fmt.Printf("signed in as %s (%s)\n", user.Username, user.Role)
	return nil
}

func (c *console) whoami(ctx context.Context) error {
	user, err := c.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s), role %s\n", user.Username, user.FullName, user.Role)
	eval := permissions.NewEvaluator(c.store)
	for _, capability := range eval.Capabilities() {
		fmt.Printf("  can %s\n", capability)
	}
	return nil
}

func (c *console) routes() {
	for _, r := range nav.DefaultRoutes() {
		line := fmt.Sprintf("%-12s %s", r.Name, r.Path)
		if r.Requirement.RequiresAuth {
			line += "  [auth"
			for _, role := range r.Requirement.RequiredRoles {
				line += " " + string(role)
			}
			line += "]"
		}
		fmt.Println(line)
	}
}

func (c *console) open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("open requires exactly one route name")
	}
	route, ok := c.table.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown route %q", args[0])
	}

	decision := c.guard.Decide(ctx, route)
	if decision.Allowed {
		c.history.Go(route.Name)
		fmt.Printf("opened %s\n", route.Name)
		return nil
	}
	c.history.Go(decision.RedirectTo)
	fmt.Printf("redirected to %s\n", decision.RedirectTo)
	return nil
}

func (c *console) watch(ctx context.Context) error {
	if c.store.Credential().AccessToken == "" {
		return fmt.Errorf("no credentials stored, sign in first")
	}
	c.store.OnChange(func() {
		fmt.Println("session ended")
	})
	c.monitor.Start(ctx)
	defer c.monitor.Stop()
	c.logger.Info("session monitor running")

	<-ctx.Done()
	return nil
}
