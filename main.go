// Command lost-knight runs the Lost Knight game server.
//
// Subcommands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket updates, metrics and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server, reusing a running API or starting an internal one
//  3. "solve" prints a shortest knight path between two cells
//
// Flags control host/port, config and session storage, log level, and
// optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/lost-knight/api"
	"github.com/wricardo/lost-knight/game/config"
	"github.com/wricardo/lost-knight/game/service"
	"github.com/wricardo/lost-knight/game/session"
	"github.com/wricardo/lost-knight/internal/logging"
	"github.com/wricardo/lost-knight/internal/metrics"
	"github.com/wricardo/lost-knight/transport/mcp"
	"github.com/wricardo/lost-knight/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Lost Knight Server"
)

const (
	sessionMaxAge   = 24 * time.Hour
	cleanupInterval = time.Hour
	syncInterval    = 5 * time.Second
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Flags are inherited by subcommands.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "lost-knight",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory containing board configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "persistence", Value: "file", Usage: "session storage: file, redis or memory", Sources: cli.EnvVars("PERSISTENCE")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "directory for file persistence", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "redis-url", Value: "redis://localhost:6379/0", Usage: "Redis URL for redis persistence", Sources: cli.EnvVars("REDIS_URL")},
			&cli.DurationFlag{Name: "session-ttl", Value: sessionMaxAge, Usage: "expiry of persisted sessions in Redis", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "run the HTTP server with REST API, WebSocket and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run an MCP stdio server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "API to proxy; an internal server starts when it is unreachable", Sources: cli.EnvVars("API_URL")},
				},
				Action: runMCP,
			},
			solveCommand(),
		},
	}
}

func newLogger(cmd *cli.Command) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)
	slog.SetDefault(logger)
	return logger, nil
}

// serviceOptions selects storage for the game service.
type serviceOptions struct {
	ConfigDir   string
	Persistence string
	SessionsDir string
	RedisURL    string
	SessionTTL  time.Duration
}

func serviceOptionsFrom(cmd *cli.Command) serviceOptions {
	return serviceOptions{
		ConfigDir:   cmd.String("config-dir"),
		Persistence: cmd.String("persistence"),
		SessionsDir: cmd.String("sessions-dir"),
		RedisURL:    cmd.String("redis-url"),
		SessionTTL:  cmd.Duration("session-ttl"),
	}
}

// services is everything the HTTP server needs.
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	hub         *websocket.Hub
	metrics     *metrics.Metrics
}

// newPersistence builds the session store named by opts.Persistence.
func newPersistence(ctx context.Context, opts serviceOptions) (session.SessionPersistence, error) {
	switch opts.Persistence {
	case "", "memory":
		return nil, nil
	case "file":
		p, err := session.NewFilePersistence(opts.SessionsDir)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "redis":
		p, err := session.NewRedisPersistence(opts.RedisURL, session.WithTTL(opts.SessionTTL))
		if err != nil {
			return nil, err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return nil, fmt.Errorf("redis unreachable at %s: %w", opts.RedisURL, err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown persistence %q (want file, redis or memory)", opts.Persistence)
}

// initializeServices wires config and session managers, the WebSocket hub and the game service.
func initializeServices(ctx context.Context, opts serviceOptions, logger *slog.Logger) (*services, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := newPersistence(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	managerOpts := []session.Option{session.WithLogger(logger)}
	var sessionManager *session.Manager
	if persistence != nil {
		sessionManager = session.NewManagerWithPersistence(persistence, managerOpts...)
		if err := sessionManager.LoadPersistedSessions(); err != nil {
			logger.Warn("failed to load persisted sessions", "error", err)
		}
	} else {
		sessionManager = session.NewManager(managerOpts...)
	}

	m := metrics.New()
	m.ActiveSessions.Set(float64(sessionManager.Count()))
	hub := websocket.NewHub(websocket.WithLogger(logger))

	gameService := service.NewGameService(sessionManager, configManager,
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithPublisher(hub),
	)

	return &services{
		game:        gameService,
		sessions:    sessionManager,
		persistence: persistence,
		hub:         hub,
		metrics:     m,
	}, nil
}

// sessionCleanupRoutine periodically drops sessions that have not been
// accessed within sessionMaxAge.
func sessionCleanupRoutine(ctx context.Context, svcs *services, logger *slog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := svcs.sessions.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				logger.Info("cleaned up expired sessions", "count", removed)
			}
			svcs.metrics.ActiveSessions.Set(float64(svcs.sessions.Count()))
		}
	}
}

// persistenceSyncRoutine removes sessions from memory once their persisted
// copy is gone: a deleted file or an expired Redis key.
func persistenceSyncRoutine(ctx context.Context, svcs *services, logger *slog.Logger) {
	if svcs.persistence == nil {
		return
	}
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphanedSessions(svcs); pruned > 0 {
				logger.Info("pruned sessions missing from persistence", "count", pruned)
				svcs.metrics.ActiveSessions.Set(float64(svcs.sessions.Count()))
			}
		}
	}
}

func pruneOrphanedSessions(svcs *services) int {
	pruned := 0
	for _, s := range svcs.sessions.List() {
		if !svcs.persistence.Exists(s.ID) {
			if err := svcs.sessions.DeleteFromMemory(s.ID); err == nil {
				pruned++
			}
		}
	}
	return pruned
}

// newHandler mounts the API server and the /mcp JSON-RPC endpoint.
func newHandler(svcs *services, baseURL string, logger *slog.Logger) http.Handler {
	apiServer := api.NewServer(svcs.game, svcs.hub, api.WithLogger(logger), api.WithMetrics(svcs.metrics))
	mcpClient := mcp.NewClient(baseURL)

	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		writeJSON(w, response)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("failed to encode response", "error", err)
	}
}

// runServe starts the HTTP server and, when enabled, an ngrok tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	svcs, err := initializeServices(ctx, serviceOptionsFrom(cmd), logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); svcs.hub.Run(ctx) }()
	go func() { defer wg.Done(); sessionCleanupRoutine(ctx, svcs, logger) }()
	go func() { defer wg.Done(); persistenceSyncRoutine(ctx, svcs, logger) }()

	addr := net.JoinHostPort(cmd.String("host"), fmt.Sprintf("%d", cmd.Int("port")))
	handler := newHandler(svcs, "http://"+addr, logger)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr,
			"api", "http://"+addr+"/api",
			"websocket", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd, handler, logger)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serverErr:
		logger.Error("HTTP server failed", "error", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	if saveErr := svcs.sessions.SaveAllSessions(); saveErr != nil {
		logger.Warn("failed to save sessions on shutdown", "error", saveErr)
	}
	if closer, ok := svcs.persistence.(io.Closer); ok {
		closer.Close()
	}
	logger.Info("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done.
func runNgrok(ctx context.Context, cmd *cli.Command, handler http.Handler, logger *slog.Logger) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", "domain", domain)
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "error", err)
		return
	}
	defer tun.Close()

	url := tun.URL()
	logger.Info("ngrok tunnel established", "url", url, "api", url+"/api", "mcp", url+"/mcp")

	go func() {
		<-ctx.Done()
		tun.Close()
	}()
	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Warn("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

// apiReachable reports whether a Lost Knight API answers at baseURL.
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runMCP serves MCP over stdio. It proxies to --api-url when that API is up,
// otherwise it starts an internal HTTP API on a random loopback port.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	baseURL := cmd.String("api-url")
	if apiReachable(ctx, baseURL) {
		logger.Info("using external API server", "url", baseURL)
	} else {
		logger.Info("no external API server found, starting internal HTTP server")

		svcs, err := initializeServices(ctx, serviceOptionsFrom(cmd), logger)
		if err != nil {
			return err
		}
		go svcs.hub.Run(ctx)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		httpServer := &http.Server{Handler: api.NewServer(svcs.game, svcs.hub, api.WithLogger(logger))}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "error", err)
			}
		}()
		defer func() {
			httpServer.Close()
			svcs.sessions.SaveAllSessions()
		}()
		logger.Info("internal HTTP server started", "url", baseURL)
	}

	return mcp.NewClient(baseURL).ServeStdio()
}
