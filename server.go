package prioritizer

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultHost         = "0.0.0.0"
	defaultPort         = 8000
	defaultMaxBodyBytes = 10 << 20
	defaultReadTimeout  = 30 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// LivenessMessage is returned by the liveness endpoint.
const LivenessMessage = "AutoTestX AI Service is running"

// Server serves the test prioritization http api. It holds no state
// across requests.
type Server struct {
	host         string
	port         int
	maxBodyBytes int64
	readTimeout  time.Duration

	logLevel  string
	logFormat string
	log       *slog.Logger

	httpServer *http.Server
	listener   net.Listener

	// envErr is reported by Run unless the port is set explicitly.
	envErr error

	ready     chan struct{}
	readyOnce sync.Once
}

type option func(s *Server)

// New configures a new Server instance. Host and port default to the
// HOST and PORT environment variables if set.
func New(opts ...option) *Server {
	s := &Server{
		host:         envOrDefault("HOST", defaultHost),
		port:         defaultPort,
		maxBodyBytes: defaultMaxBodyBytes,
		readTimeout:  defaultReadTimeout,
		logLevel:     "info",
		logFormat:    "text",
		ready:        make(chan struct{}),
	}

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			s.port = p
		} else {
			s.envErr = fmt.Errorf("invalid PORT environment variable %q: %w", v, err)
		}
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

// Run parses the command line args, starts listening and serves requests
// until Shutdown is called.
func (s *Server) Run(args []string) error {
	defer s.markReady()

	if err := s.parseFlags(args); err != nil {
		return err
	}

	if s.envErr != nil {
		return s.envErr
	}

	if s.log == nil {
		log, err := newLogger(s.logLevel, s.logFormat)
		if err != nil {
			return err
		}
		s.log = log
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	if err != nil {
		return fmt.Errorf("listening on %s:%d: %w", s.host, s.port, err)
	}

	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	s.httpServer = &http.Server{
		Handler:           s.router(),
		ReadHeaderTimeout: s.readTimeout,
		ReadTimeout:       s.readTimeout,
	}

	s.log.Info("starting http server", "address", listener.Addr().String())

	s.markReady()

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}

	return nil
}

// WaitForStartup blocks until the server is listening or Run failed.
func (s *Server) WaitForStartup() {
	<-s.ready
}

// ServerPort returns the port the server is listening on. When started
// with port 0 this is the randomly assigned port.
func (s *Server) ServerPort() int {
	return s.port
}

// Shutdown gracefully stops the http server, waiting for in-flight
// requests to finish.
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("shutting down http server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}

// ShutdownOnCancel shuts the server down once ctx is done. A cancellation
// that arrives before the server is listening takes effect as soon as it
// is. The returned channel is closed when the shutdown finished.
func (s *Server) ShutdownOnCancel(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		<-ctx.Done()

		s.WaitForStartup()

		if err := s.Shutdown(); err != nil {
			s.log.Error("unable to shut down", "error", err)
		}
	}()

	return done
}

func (s *Server) markReady() {
	s.readyOnce.Do(func() {
		close(s.ready)
	})
}

func (s *Server) parseFlags(args []string) error {
	if len(args) == 0 {
		return nil
	}

	fl := flag.NewFlagSet(args[0], flag.ContinueOnError)

	fl.StringVar(&s.host, "host", s.host, "interface the server binds to")
	fl.IntVar(&s.port, "p", s.port, "port used by the server")
	fl.Int64Var(&s.maxBodyBytes, "max-body-bytes", s.maxBodyBytes, "maximum accepted request body size in bytes")
	fl.DurationVar(&s.readTimeout, "read-timeout", s.readTimeout, "maximum duration for reading a request")
	fl.StringVar(&s.logLevel, "log-level", s.logLevel, "log level (debug, info, warn, error)")
	fl.StringVar(&s.logFormat, "log-format", s.logFormat, "log format (text, json)")

	if err := fl.Parse(args[1:]); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	fl.Visit(func(f *flag.Flag) {
		if f.Name == "p" {
			s.envErr = nil
		}
	})

	return nil
}

func newLogger(level, format string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: l}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func envOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return def
}
