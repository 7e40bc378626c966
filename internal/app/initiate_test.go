package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shandysiswandi/gosend/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
)

func loadTestConfig(t *testing.T, body string) pkgconfig.Config {
	t.Helper()

	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	t.Cleanup(func() { _ = cfg.Close() })

	return cfg
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("LOCAL", "true")
	if got := DefaultConfigPath(); got != "./config/config.yaml" {
		t.Fatalf("unexpected local path %q", got)
	}

	t.Setenv("LOCAL", "")
	if got := DefaultConfigPath(); got != "/config/config.yaml" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestNewRequestID(t *testing.T) {
	if _, ok := NewRequestID(loadTestConfig(t, "id:\n  request_id: uuid\n")).(*pkguid.UUID); !ok {
		t.Fatalf("expected uuid generator")
	}
	if _, ok := NewRequestID(loadTestConfig(t, "tz: UTC\n")).(*pkguid.ULID); !ok {
		t.Fatalf("expected ulid generator by default")
	}
}

func TestNewIdentityUsesDeviceID(t *testing.T) {
	t.Setenv(pkguid.EnvDeviceID, "")
	cfg := loadTestConfig(t, "id:\n  device_id: \"42\"\n  pause_on_start: false\n")

	frame, fp := NewIdentity(cfg)
	if !fp.FromDevice() {
		t.Fatalf("expected fingerprint from device id")
	}

	seed, _ := pkguid.BuildSeed()
	if want := pkguid.Mix(42, seed); fp.Value() != want {
		t.Fatalf("expected fingerprint %d, got %d", want, fp.Value())
	}

	// no pause: the first allocation returns at once with sequence 0
	if _, seq := frame.Allocate(); seq != 0 {
		t.Fatalf("expected sequence 0, got %d", seq)
	}
}

func TestNewIdentityFallsBackToPid(t *testing.T) {
	t.Setenv(pkguid.EnvDeviceID, "")
	cfg := loadTestConfig(t, "id:\n  device_id: \"\"\n")

	_, fp := NewIdentity(cfg)
	if fp.FromDevice() {
		t.Fatalf("expected pid fallback")
	}
}
