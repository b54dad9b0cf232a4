package prioritizer

import (
	"log/slog"
	"time"
)

// WithServerPort sets the port the server listens on, 0 picks a random port.
func WithServerPort(port int) option {
	return func(s *Server) {
		s.port = port
		s.envErr = nil
	}
}

// WithHost sets the interface the server binds to.
func WithHost(host string) option {
	return func(s *Server) {
		s.host = host
	}
}

// WithLogger replaces the logger that would otherwise be built from
// the -log-level and -log-format flags.
func WithLogger(log *slog.Logger) option {
	return func(s *Server) {
		s.log = log
	}
}

// WithMaxBodyBytes limits the size of accepted request bodies.
func WithMaxBodyBytes(n int64) option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

func WithReadTimeout(d time.Duration) option {
	return func(s *Server) {
		s.readTimeout = d
	}
}
