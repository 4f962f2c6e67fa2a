package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/inkpost/internal/config"
)

type recordingService struct {
	name     string
	startErr error
	mu       *sync.Mutex
	stops    *[]string
}

func (s *recordingService) Name() string { return s.name }

func (s *recordingService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *recordingService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.stops = append(*s.stops, s.name)
	return nil
}

func TestRunnerStopsServicesInReverseOrder(t *testing.T) {
	var mu sync.Mutex
	var stops []string
	failing := errors.New("listen failed")
	runner := NewRunner(
		&recordingService{name: "content-api", mu: &mu, stops: &stops},
		nil,
		&recordingService{name: "publish-scheduler", mu: &mu, stops: &stops, startErr: failing},
	)
	if names := runner.Names(); len(names) != 2 {
		t.Fatalf("nil services should be dropped, got %v", names)
	}

	err := runner.Run(context.Background(), time.Second, nil)
	if !errors.Is(err, failing) {
		t.Fatalf("runner should return the failing service error, got %v", err)
	}
	if len(stops) != 2 || stops[0] != "publish-scheduler" || stops[1] != "content-api" {
		t.Fatalf("unexpected stop order %v", stops)
	}
}

func TestRunnerCanceledContextIsCleanExit(t *testing.T) {
	var mu sync.Mutex
	var stops []string
	runner := NewRunner(&recordingService{name: "content-api", mu: &mu, stops: &stops})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("canceled context should not be an error, got %v", err)
	}
	if len(stops) != 1 {
		t.Fatalf("service should be stopped once, got %v", stops)
	}
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{
		"":          ModeAll,
		"ALL":       ModeAll,
		" api ":     ModeAPI,
		"publisher": ModePublisher,
		"worker":    ModePublisher,
	}
	for input, want := range cases {
		got, err := ParseMode(input)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) want %s got %s err=%v", input, want, got, err)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestNewHTTPServiceAppliesTimeouts(t *testing.T) {
	svc := NewHTTPService(config.ServerConfig{Host: "127.0.0.1", Port: "4000", WriteTimeoutSeconds: 5}, http.NotFoundHandler())
	if svc.Name() != "content-api" || svc.Addr() != "127.0.0.1:4000" {
		t.Fatalf("unexpected service %s %s", svc.Name(), svc.Addr())
	}
	if svc.server.WriteTimeout != 5*time.Second || svc.server.ReadTimeout != 15*time.Second || svc.server.IdleTimeout != time.Minute {
		t.Fatalf("unexpected timeouts read=%s write=%s idle=%s", svc.server.ReadTimeout, svc.server.WriteTimeout, svc.server.IdleTimeout)
	}
}
