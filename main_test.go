package prioritizer_test

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/autotestx/prioritizer"
	"github.com/autotestx/prioritizer/client"
)

var te *test

func TestMain(m *testing.M) {
	te = acceptanceTest()

	code := m.Run()

	_ = te.s.Shutdown()

	os.Exit(code)
}

type test struct {
	s      *prioritizer.Server
	client client.Client
	host   string
}

func acceptanceTest() *test {
	s := prioritizer.New(
		prioritizer.WithHost("localhost"),
		// random port
		prioritizer.WithServerPort(0),
		prioritizer.WithMaxBodyBytes(64<<10),
		prioritizer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	go func() {
		if err := s.Run([]string{"prioritizer-test"}); err != nil {
			panic(err)
		}
	}()

	s.WaitForStartup()

	host := fmt.Sprintf("http://localhost:%d", s.ServerPort())

	return &test{
		s:      s,
		client: client.New(host, http.DefaultClient),
		host:   host,
	}
}

func record(name string, score float64) client.TestRecord {
	return client.TestRecord{
		TestName:      name,
		FilePath:      name + ".py",
		FailureRate:   0.25,
		ExecutionTime: 1.5,
		RiskScore:     score,
	}
}

func names(records []client.TestRecord) []string {
	n := make([]string, 0, len(records))
	for _, r := range records {
		n = append(n, r.TestName)
	}
	return n
}
