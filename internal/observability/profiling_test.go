package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/config"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
)

func TestPyroscopeConfig_TagsAndProfiles(t *testing.T) {
	cfg := config.Config{
		AppEnv:                 config.EnvProd,
		ServiceName:            "pl-lineup-bot",
		ServiceVersion:         "1.4.0",
		PyroscopeAppName:       "pl-lineup-bot",
		PyroscopeServerAddress: "https://profiles.example.com",
		PyroscopeUploadRate:    15 * time.Second,
	}

	got := pyroscopeConfig(cfg, logging.NewNop())

	if got.Tags["env"] != config.EnvProd || got.Tags["version"] != "1.4.0" {
		t.Fatalf("unexpected tags: %+v", got.Tags)
	}
	if got.ApplicationName != "pl-lineup-bot" || got.UploadRate != 15*time.Second {
		t.Fatalf("unexpected config: %+v", got)
	}
	if len(got.ProfileTypes) != len(profileTypes) || got.Logger == nil {
		t.Fatalf("expected profile types and logger to be set")
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{}, logging.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("noop stop returned %v", err)
	}
}

func TestPprof_DisabledAndRoutes(t *testing.T) {
	srv, err := StartPprofServer(config.Config{}, logging.NewNop())
	if err != nil || srv != nil {
		t.Fatalf("expected no server when disabled, got %v %v", srv, err)
	}
	if err := StopPprofServer(context.Background(), nil, nil); err != nil {
		t.Fatalf("stop nil server: %v", err)
	}

	if _, err := StartPprofServer(config.Config{PprofEnabled: true}, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty pprof addr")
	}

	rec := httptest.NewRecorder()
	pprofMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected cmdline endpoint, got %d", rec.Code)
	}
}
