package bootstrap

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadConfigDefaultsWithoutPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Images.MaxWidth != 1920 || cfg.Editor.DebounceMS != 300 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "richtext.toml")
	body := `
[images]
max_width = 800
quality = 70

[markdown.preview]
extensions = ["strikethrough", "tables"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Images.MaxWidth != 800 || cfg.Images.Quality != 70 {
		t.Fatalf("expected overlaid image settings, got %+v", cfg.Images)
	}
	if cfg.Images.MaxHeight != 1080 {
		t.Fatalf("expected untouched defaults to survive, got %d", cfg.Images.MaxHeight)
	}
	if !reflect.DeepEqual(cfg.Markdown.Preview.Extensions, []string{"strikethrough", "tables"}) {
		t.Fatalf("unexpected extensions %v", cfg.Markdown.Preview.Extensions)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "richtext.toml")
	if err := os.WriteFile(path, []byte("[images]\nmax_widht = 10\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestBuildModuleRegistersHandlers(t *testing.T) {
	res, err := BuildModule(Options{LogLevel: "error"})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	defer res.Close()
	if res.Module == nil || res.Commands.Convert == nil || res.Commands.Images == nil {
		t.Fatalf("expected module and handlers, got %+v", res)
	}
	if !res.Module.Container().Config.Features.Logger {
		t.Fatal("expected log level flag to enable logging")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" tables, ,linkify ")
	if !reflect.DeepEqual(got, []string{"tables", "linkify"}) {
		t.Fatalf("unexpected list %v", got)
	}
}
