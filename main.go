// Command merge2048 runs the 2048 game server.
//
// It supports two modes:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags (or their environment variables) control host/port, config and session
// storage, debug logging and optional ngrok tunneling for external access.
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
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/merge2048/api"
	"github.com/wricardo/merge2048/game/config"
	"github.com/wricardo/merge2048/game/service"
	"github.com/wricardo/merge2048/game/session"
	"github.com/wricardo/merge2048/transport/mcp"
	"github.com/wricardo/merge2048/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Merge 2048 Server"
)

const (
	storeFile   = "file"
	storeSQLite = "sqlite"

	cleanupInterval = 1 * time.Hour
	sessionMaxAge   = 24 * time.Hour
	syncInterval    = 5 * time.Second
)

// settings are the resolved process flags
type settings struct {
	Host        string
	Port        int
	ConfigDir   string
	SessionsDir string
	Store       string
	SQLitePath  string
	Debug       bool
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

func (s settings) addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("error loading .env file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. serve is the default action.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "merge2048",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "Directory for session files (file store)",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.StringFlag{
				Name:    "store",
				Value:   storeFile,
				Usage:   "Session store: file or sqlite",
				Sources: cli.EnvVars("SESSION_STORE"),
			},
			&cli.StringFlag{
				Name:    "sqlite-path",
				Value:   "sessions.db",
				Usage:   "Database path (sqlite store)",
				Sources: cli.EnvVars("SQLITE_PATH"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  mcpAction,
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

// loadSettings reads flags; subcommands see the root flags through the lineage
func loadSettings(cmd *cli.Command) settings {
	return settings{
		Host:        cmd.String("host"),
		Port:        cmd.Int("port"),
		ConfigDir:   cmd.String("config-dir"),
		SessionsDir: cmd.String("sessions-dir"),
		Store:       cmd.String("store"),
		SQLitePath:  cmd.String("sqlite-path"),
		Debug:       cmd.Bool("debug"),
		Ngrok:       cmd.Bool("ngrok"),
		NgrokAuth:   cmd.String("ngrok-auth"),
		NgrokDomain: cmd.String("ngrok-domain"),
	}
}

// setupLogging installs a text handler on stderr so stdio MCP keeps stdout clean
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	slog.SetDefault(slog.New(handler))
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	s := loadSettings(cmd)
	setupLogging(s.Debug)
	slog.Info("starting", "app", AppName, "version", Version, "mode", "serve")

	svcs, err := initializeServices(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svcs.Close()

	return runHTTPServer(ctx, s, svcs.game)
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	s := loadSettings(cmd)
	setupLogging(s.Debug)
	slog.Info("starting", "app", AppName, "version", Version, "mode", "mcp")

	svcs, err := initializeServices(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svcs.Close()

	return runStdioMCPWithInternalServer(ctx, s, svcs.game)
}

// services holds everything initializeServices wires together
type services struct {
	game     service.GameService
	sessions *session.Manager
	store    session.SessionPersistence
	closer   io.Closer
}

// Close flushes sessions and releases the store
func (s *services) Close() error {
	if err := s.sessions.SaveAllSessions(); err != nil {
		slog.Warn("failed to save sessions on shutdown", "error", err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// openStore picks the session persistence backend
func openStore(s settings, configs service.ConfigManager) (session.SessionPersistence, io.Closer, error) {
	switch s.Store {
	case storeFile, "":
		fp, err := session.NewFilePersistence(s.SessionsDir, configs)
		return fp, nil, err
	case storeSQLite:
		sp, err := session.NewSQLitePersistence(s.SQLitePath, configs)
		if err != nil {
			return nil, nil, err
		}
		return sp, sp, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q (use %s or %s)", s.Store, storeFile, storeSQLite)
	}
}

// initializeServices wires config, persistence and session managers into the game service.
// It also starts the background routines that prune stale sessions; they stop with ctx.
func initializeServices(ctx context.Context, s settings) (*services, error) {
	configManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	store, closer, err := openStore(s, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(store)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		slog.Warn("failed to load persisted sessions", "error", err)
	}

	go sessionCleanupRoutine(ctx, sessionManager, cleanupInterval, sessionMaxAge)

	// session files can be deleted by hand; the database has no such path
	if s.Store != storeSQLite {
		go filesystemSyncRoutine(ctx, sessionManager, store, syncInterval)
	}

	slog.Info("services ready", "config_dir", s.ConfigDir, "store", s.Store,
		"configs", configManager.Count(), "sessions", sessionManager.Count())

	return &services{
		game:     service.NewGameService(sessionManager, configManager),
		sessions: sessionManager,
		store:    store,
		closer:   closer,
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				slog.Info("cleaned up expired sessions", "count", removed)
			}
		}
	}
}

// pruneOrphans drops in-memory sessions whose persisted copy is gone
func pruneOrphans(manager *session.Manager, store session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if store.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			slog.Info("pruned session from memory", "session", sess.ID)
		}
	}
	return pruned
}

// filesystemSyncRoutine periodically syncs in-memory sessions with the session files.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, store session.SessionPersistence, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphans(manager, store); pruned > 0 {
				slog.Info("filesystem sync", "pruned", pruned)
			}
		}
	}
}

// mcpHandler serves single JSON-RPC messages over HTTP POST
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter combines the API server and the /mcp endpoint
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", mcpHandler(mcpClient.GetMCPServer()))
	return router
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and the /mcp endpoint.
// If ngrok is enabled it also provisions a public tunnel. It returns once ctx is cancelled
// and the server has shut down.
func runHTTPServer(ctx context.Context, s settings, gameService service.GameService) error {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(gameService, hub)

	addr := s.addr()
	mcpClient := mcp.NewClient("http://" + addr)
	router := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		slog.Info("HTTP server listening", "addr", addr,
			"api", "http://"+addr+"/api",
			"websocket", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if s.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, s, router)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err = <-serveErr:
		slog.Error("HTTP server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Error("HTTP server shutdown error", "error", shutdownErr)
	}

	wg.Wait()
	slog.Info("server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx ends
func runNgrokTunnel(ctx context.Context, s settings, handler http.Handler) {
	if s.NgrokAuth == "" {
		slog.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if s.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(s.NgrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	slog.Info("starting ngrok tunnel", "domain", s.NgrokDomain)
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(s.NgrokAuth))
	if err != nil {
		slog.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			slog.Warn("failed to close ngrok tunnel", "error", err)
		}
	}()

	url := tun.URL()
	slog.Info("ngrok tunnel established", "url", url,
		"api", url+"/api",
		"websocket", url+"/ws?session=<session_id>",
		"mcp", url+"/mcp")

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		slog.Error("ngrok server error", "error", err)
	}
	slog.Info("ngrok tunnel closed")
}

// externalAPIAvailable reports whether a server already answers on baseURL
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on the configured address; otherwise it
// starts an internal HTTP API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, s settings, gameService service.GameService) error {
	baseURL := "http://" + s.addr()

	if externalAPIAvailable(baseURL) {
		slog.Info("using external API server for MCP", "url", baseURL)
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		slog.Info("starting internal HTTP server for MCP stdio", "addr", internalAddr)

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + internalAddr
	}

	mcpClient := mcp.NewClient(baseURL)
	slog.Info("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
