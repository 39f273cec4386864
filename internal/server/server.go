package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"memoreal/internal/capsule"
	"memoreal/internal/ledger"
	"memoreal/internal/store"
)

const (
	apiTokenEnvKey    = "MEMOREAL_API_TOKEN"
	allowRemoteEnvKey = "MEMOREAL_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Options carries optional server settings.
type Options struct {
	// MetricsAddr, when set, serves /metrics on a second listener.
	MetricsAddr    string
	LocationPolicy capsule.LocationPolicy
	LedgerMode     string
	// Now overrides the clock used for unlock decisions.
	Now func() time.Time
}

// Server wraps HTTP handlers for the memoreal API.
type Server struct {
	addr        string
	metricsAddr string
	store       store.CapsuleStore
	service     *CapsuleService
	metrics     *Metrics
	logger      *slog.Logger
	apiToken    string
	policy      capsule.LocationPolicy
	ledgerMode  string
}

// New creates a new server instance.
func New(addr string, capsuleStore store.CapsuleStore, capsuleLedger ledger.Ledger, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	policy := opts.LocationPolicy
	if policy == "" {
		policy = capsule.LocationIgnore
	}
	ledgerMode := opts.LedgerMode
	if ledgerMode == "" {
		ledgerMode = ledger.ModeLocal
	}

	metrics := NewMetrics()
	service := NewCapsuleService(capsuleStore, capsuleLedger, policy, metrics, logger)
	if opts.Now != nil {
		service.now = opts.Now
	}

	return &Server{
		addr:        addr,
		metricsAddr: strings.TrimSpace(opts.MetricsAddr),
		store:       capsuleStore,
		service:     service,
		metrics:     metrics,
		logger:      logger,
		apiToken:    strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		policy:      policy,
		ledgerMode:  ledgerMode,
	}
}

// Handler returns the fully wrapped API handler.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withAuth(s.routes()))
}

// ListenAndServe starts the HTTP server and blocks until it fails.
func (s *Server) ListenAndServe() error {
	return s.Run(context.Background())
}

// Run serves the API, and metrics when configured, until ctx is done or a listener fails.
func (s *Server) Run(ctx context.Context) error {
	servers := []*http.Server{s.httpServer(s.addr, s.Handler())}
	if s.metricsAddr != "" {
		servers = append(servers, s.httpServer(s.metricsAddr, s.metrics.Handler()))
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			s.log().Info("starting server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.log().Warn("server shutdown", "addr", srv.Addr, "error", err)
			}
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) httpServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
