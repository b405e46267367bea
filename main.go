// Command blockfall starts the Blockfall game server.
//
// It supports these commands:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "simulate" – plays a headless game with the autoplay planner and prints a summary
//  4. "validate" – checks preset JSON files
//  5. "version"
//
// Settings come from an optional YAML file, .env and BLOCKFALL_* environment
// variables; flags override both. Optional ngrok tunneling gives easy external
// access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/blockfall/api"
	"github.com/wricardo/mcp-training/blockfall/game/config"
	"github.com/wricardo/mcp-training/blockfall/game/service"
	"github.com/wricardo/mcp-training/blockfall/game/session"
	"github.com/wricardo/mcp-training/blockfall/settings"
	"github.com/wricardo/mcp-training/blockfall/transport/events"
	"github.com/wricardo/mcp-training/blockfall/transport/mcp"
	"github.com/wricardo/mcp-training/blockfall/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Blockfall Server"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("blockfall failed")
	}
}

// newApp builds the command tree. Running without a command serves HTTP.
func newApp() *cli.Command {
	serve := &cli.Command{
		Name:   "serve",
		Usage:  "Run HTTP server with API, WebSocket, and MCP endpoint",
		Action: runServe,
	}

	return &cli.Command{
		Name:    "blockfall",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "settings", Aliases: []string{"c"}, Usage: "YAML settings file", Sources: cli.EnvVars("BLOCKFALL_SETTINGS")},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Usage: "Directory containing game presets"},
			&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn or error"},
			&cli.BoolFlag{Name: "debug", Usage: "Shorthand for --log-level debug"},
			&cli.BoolFlag{Name: "auto-tick", Usage: "Start real-time gravity for every new session"},
			&cli.StringFlag{Name: "nats-url", Usage: "Publish game events to this NATS server"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (or use NGROK_AUTHTOKEN env var)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)"},
		},
		Action: runServe,
		Commands: []*cli.Command{
			serve,
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runStdioMCP,
			},
			simulateCommand(),
			validateCommand(),
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

// loadSettings reads the settings file and environment, then applies flags
func loadSettings(cmd *cli.Command) (*settings.Settings, error) {
	s, err := settings.Load(cmd.String("settings"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		s.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("config-dir") {
		s.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("log-level") {
		s.LogLevel = cmd.String("log-level")
	}
	if cmd.Bool("debug") {
		s.LogLevel = "debug"
	}
	if cmd.IsSet("auto-tick") {
		s.AutoTick = cmd.Bool("auto-tick")
	}
	if cmd.IsSet("nats-url") {
		s.NATS.URL = cmd.String("nats-url")
	}
	if cmd.Bool("ngrok") {
		s.Ngrok.Enabled = true
	}
	if cmd.IsSet("ngrok-auth") {
		s.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		s.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.ConfigureLogging(); err != nil {
		return nil, err
	}
	return s, nil
}

// services bundles everything a running server owns
type services struct {
	configs   *config.Manager
	sessions  *session.Manager
	hub       *websocket.Hub
	publisher *events.Publisher
	game      service.GameService
}

// initializeServices wires the preset and session managers, the websocket hub,
// the optional NATS publisher, and the game service.
func initializeServices(s *settings.Settings) (*services, error) {
	configManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	svc := &services{
		configs:  configManager,
		sessions: session.NewManager(),
		hub:      websocket.NewHub(),
	}

	notifiers := []service.Notifier{svc.hub}
	if s.NATS.URL != "" {
		publisher, err := events.Connect(events.Config{
			URL:           s.NATS.URL,
			SubjectPrefix: s.NATS.SubjectPrefix,
			MaxReconnects: s.NATS.MaxReconnects,
			ReconnectWait: s.NATS.ReconnectWait,
		})
		if err != nil {
			log.Warn().Err(err).Msg("continuing without NATS event publishing")
		} else {
			log.Info().Str("url", s.NATS.URL).Str("prefix", s.NATS.SubjectPrefix).Msg("publishing game events to NATS")
			svc.publisher = publisher
			notifiers = append(notifiers, publisher)
		}
	}

	svc.game = service.NewGameServiceWithOptions(svc.sessions, svc.configs, service.Options{
		AutoTick:  s.AutoTick,
		Notifiers: notifiers,
	})
	return svc, nil
}

// close stops every gravity driver and drains the NATS connection
func (svc *services) close() {
	svc.sessions.StopAll()
	if svc.publisher != nil {
		if err := svc.publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to drain NATS connection")
		}
	}
}

// newRouter mounts the REST API at the root and the MCP proxy at /mcp
func newRouter(gameService service.GameService, hub *websocket.Hub, mcpClient *mcp.Client) http.Handler {
	router := http.NewServeMux()
	router.Handle("/", api.NewServer(gameService, hub))
	router.HandleFunc("/mcp", mcpHandler(mcpClient))
	return router
}

// mcpHandler forwards a JSON-RPC body to the MCP server
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
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

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	log.Info().Str("version", Version).Str("addr", s.Addr()).Msg("starting " + AppName)

	svc, err := initializeServices(s)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go svc.hub.Run(ctx)
	go sessionCleanupRoutine(ctx, svc.sessions, s.CleanupInterval, s.SessionTTL)

	addr := s.Addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	handler := newRouter(svc.game, svc.hub, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("rest", fmt.Sprintf("http://%s/api", addr)).
			Str("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if s.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runTunnel(ctx, s.Ngrok, handler)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serverErr:
		stop()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return nil
}

// runTunnel serves handler through ngrok until ctx is cancelled
func runTunnel(ctx context.Context, cfg settings.NgrokSettings, handler http.Handler) {
	if cfg.AuthToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or BLOCKFALL_NGROK_AUTHTOKEN)")
		return
	}

	log.Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		log.Info().Str("domain", cfg.Domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("rest", ngrokURL+"/api").
		Str("websocket", ngrokURL+"/ws?session=<session_id>").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge, stopping their gravity drivers.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Info().Int("removed", removed).Int("remaining", manager.Count()).Msg("cleaned up expired sessions")
			}
		}
	}
}

// runStdioMCP runs an MCP stdio server.
// It tries to reuse an external API on the configured port; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
// Logs go to stderr so stdout carries only protocol messages.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	externalURL := fmt.Sprintf("http://localhost:%d", s.Port)
	baseURL := externalURL

	if !apiAvailable(externalURL) {
		log.Info().Msg("no external API server found, starting internal HTTP server")

		svc, err := initializeServices(s)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svc.close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		go svc.hub.Run(ctx)
		go sessionCleanupRoutine(ctx, svc.sessions, s.CleanupInterval, s.SessionTTL)

		httpServer := &http.Server{Handler: api.NewServer(svc.game, svc.hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("addr", listener.Addr().String()).Msg("internal HTTP server started for MCP stdio")
	} else {
		log.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable reports whether a blockfall API answers at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
