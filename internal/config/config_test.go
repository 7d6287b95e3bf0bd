package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcus/lightface/internal/workdir"
	"github.com/marcus/lightface/pkg/lightface"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	configDir := filepath.Join(dir, ".lightface")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("setup: mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(body), 0644); err != nil {
		t.Fatalf("setup: write failed: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `{
			"dialog": {"width": 50, "height": "auto", "draggable": true, "fade_duration_ms": 120},
			"dashboard": {"latency_ms": 10}
		}`)

		cfg, err := Load(workdir.At(dir))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if cfg.Dialog.Width != 50 {
			t.Errorf("Width: got %v, want 50", cfg.Dialog.Width)
		}
		if !cfg.Dialog.Height.IsAuto() {
			t.Errorf("Height: got %v, want auto", cfg.Dialog.Height)
		}
		if !cfg.Dialog.Draggable {
			t.Error("Draggable: got false, want true")
		}
		if cfg.Dialog.FadeDurationMS != 120 {
			t.Errorf("FadeDurationMS: got %d, want 120", cfg.Dialog.FadeDurationMS)
		}
		if cfg.Latency() != 10*time.Millisecond {
			t.Errorf("Latency: got %v, want 10ms", cfg.Latency())
		}
	})

	t.Run("missing fields keep defaults", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `{"dialog": {"draggable": true}}`)

		cfg, err := Load(workdir.At(dir))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		def := Default()
		if cfg.Dialog.FadeDelayMS != def.Dialog.FadeDelayMS {
			t.Errorf("FadeDelayMS: got %d, want %d", cfg.Dialog.FadeDelayMS, def.Dialog.FadeDelayMS)
		}
		if !cfg.Dialog.ResetOnScroll {
			t.Error("ResetOnScroll default lost")
		}
		if cfg.Dashboard.DBPath != def.Dashboard.DBPath {
			t.Errorf("DBPath: got %q, want %q", cfg.Dashboard.DBPath, def.Dashboard.DBPath)
		}
	})

	t.Run("non-existent file returns defaults", func(t *testing.T) {
		dir := t.TempDir()

		cfg, err := Load(workdir.At(dir))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg == nil {
			t.Fatal("Load returned nil config")
		}
		if cfg.Dialog.FadeDurationMS != 400 || cfg.Dialog.Pad != 4 {
			t.Errorf("unexpected defaults: %+v", cfg.Dialog)
		}
	})

	t.Run("invalid JSON returns error", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "not valid json{")

		if _, err := Load(workdir.At(dir)); err == nil {
			t.Fatal("Load should fail for invalid JSON")
		}
	})

	t.Run("invalid extent returns error", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `{"dialog": {"width": "wide"}}`)

		if _, err := Load(workdir.At(dir)); err == nil {
			t.Fatal("Load should fail for a non-numeric extent")
		}
	})
}

func TestSave(t *testing.T) {
	t.Run("creates directories and writes valid JSON", func(t *testing.T) {
		dir := t.TempDir()

		cfg := Default()
		cfg.Dialog.OverlayAll = true
		if err := Save(workdir.At(dir), cfg); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, ".lightface", "config.json"))
		if err != nil {
			t.Fatalf("read config failed: %v", err)
		}
		var raw map[string]map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("config is not valid JSON: %v", err)
		}
		if raw["dialog"]["width"] != "auto" {
			t.Errorf("width serialized as %v, want \"auto\"", raw["dialog"]["width"])
		}
	})

	t.Run("round trip", func(t *testing.T) {
		dir := t.TempDir()

		cfg := Default()
		cfg.Dialog.Height = 12
		cfg.Dashboard.NoticeSecs = 3
		if err := Save(workdir.At(dir), cfg); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := Load(workdir.At(dir))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded.Dialog.Height != 12 {
			t.Errorf("Height: got %v, want 12", loaded.Dialog.Height)
		}
		if loaded.NoticeTimeout() != 3*time.Second {
			t.Errorf("NoticeTimeout: got %v, want 3s", loaded.NoticeTimeout())
		}
	})
}

func TestApply(t *testing.T) {
	s := Default().Dialog
	s.FadeDurationMS = 0
	s.ResetOnScroll = false
	s.Constrain = true

	c := s.Apply(lightface.DefaultConfig())
	if c.FadeDuration != 0 {
		t.Errorf("FadeDuration: got %v, want 0", c.FadeDuration)
	}
	if c.ResetOnScroll || !c.Constrain {
		t.Errorf("flags not applied: reset=%v constrain=%v", c.ResetOnScroll, c.Constrain)
	}
	if c.Content != lightface.DefaultContent || c.ZIndex != lightface.DefaultZIndex {
		t.Error("Apply touched fields it does not own")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("applied defaults invalid: %v", err)
	}
}

func TestDBPath(t *testing.T) {
	cfg := Default()
	if got := cfg.DBPath(workdir.At("/work")); got != filepath.Join("/work", ".lightface", "lightface.db") {
		t.Errorf("relative DBPath: %s", got)
	}
	cfg.Dashboard.DBPath = "/var/lib/lf.db"
	if got := cfg.DBPath(workdir.At("/work")); got != "/var/lib/lf.db" {
		t.Errorf("absolute DBPath: %s", got)
	}
}
