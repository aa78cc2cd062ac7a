package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Search.Results != 10 {
		t.Errorf("expected 10 results, got %d", cfg.Search.Results)
	}
	if cfg.Search.StopAfter != 1000 {
		t.Errorf("expected stop_after 1000, got %d", cfg.Search.StopAfter)
	}
	if cfg.Search.Restarts != 5 {
		t.Errorf("expected 5 restarts, got %d", cfg.Search.Restarts)
	}
	if cfg.Search.Seed != 0 {
		t.Errorf("expected entropy seed, got %d", cfg.Search.Seed)
	}
	if cfg.Score.Method != "quadgrams" {
		t.Errorf("expected quadgrams, got %s", cfg.Score.Method)
	}
	if cfg.Storage.Enabled {
		t.Error("storage should be disabled by default")
	}
	if !strings.HasSuffix(cfg.Storage.Path, "history.db") {
		t.Errorf("unexpected storage path %s", cfg.Storage.Path)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("KAISER_CONFIG", "")
	path := ConfigPath()
	if !strings.HasSuffix(path, "config.toml") {
		t.Errorf("expected path ending with config.toml, got %s", path)
	}
	if !strings.Contains(path, "kaiser") {
		t.Errorf("config path should contain kaiser: %s", path)
	}

	t.Setenv("KAISER_CONFIG", "/etc/kaiser.yaml")
	if got := ConfigPath(); got != "/etc/kaiser.yaml" {
		t.Errorf("KAISER_CONFIG ignored: %s", got)
	}
}

func TestPlatformDataDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KAISER_DATA_DIR", dir)
	if got := PlatformDataDir(); got != dir {
		t.Errorf("expected %s, got %s", dir, got)
	}
	if got := DefaultConfig().Storage.Path; got != filepath.Join(dir, "history.db") {
		t.Errorf("storage path %s", got)
	}
}

func TestLoadNonexistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Search.Results != 10 {
		t.Errorf("expected defaults, got results %d", cfg.Search.Results)
	}
}

func TestLoadFormats(t *testing.T) {
	files := map[string]string{
		"config.toml": `
version = 1

[search]
engine = "hillclimb"
results = 3
seed = 42

[score]
method = "chi"
`,
		"config.json": `{"version": 1, "search": {"engine": "hillclimb", "results": 3, "seed": 42}, "score": {"method": "chi"}}`,
		"config.yaml": `
version: 1
search:
  engine: hillclimb
  results: 3
  seed: 42
score:
  method: chi
`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Search.Engine != "hillclimb" {
				t.Errorf("engine = %q", cfg.Search.Engine)
			}
			if cfg.Search.Results != 3 {
				t.Errorf("results = %d", cfg.Search.Results)
			}
			if cfg.Search.Seed != 42 {
				t.Errorf("seed = %d", cfg.Search.Seed)
			}
			if cfg.Score.Method != "chi" {
				t.Errorf("method = %q", cfg.Score.Method)
			}
			// Untouched fields keep their defaults.
			if cfg.Search.StopAfter != 1000 {
				t.Errorf("stop_after = %d", cfg.Search.StopAfter)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[search]\nresults = 3\nannealing = true\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if !verrs.Has("search.annealing") {
		t.Errorf("unknown key not reported: %v", verrs)
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte("results=3"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KAISER_SEARCH_ENGINE", "brute")
	t.Setenv("KAISER_RESULTS", "4")
	t.Setenv("KAISER_SEED", "99")
	t.Setenv("KAISER_SCORE_METHOD", "ioc")
	t.Setenv("KAISER_LOG_LEVEL", "debug")
	t.Setenv("KAISER_STORAGE_PATH", filepath.Join(t.TempDir(), "h.db"))

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Search.Engine != "brute" || cfg.Search.Results != 4 || cfg.Search.Seed != 99 {
		t.Errorf("search overrides not applied: %+v", cfg.Search)
	}
	if cfg.Score.Method != "ioc" {
		t.Errorf("method = %q", cfg.Score.Method)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if !cfg.Storage.Enabled {
		t.Error("KAISER_STORAGE_PATH should enable storage")
	}
}

func TestEnvOverrideBadNumber(t *testing.T) {
	t.Setenv("KAISER_RESULTS", "many")
	cfg := DefaultConfig()
	err := cfg.ApplyEnvOverrides()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || !verrs.Has("search.results") {
		t.Errorf("expected search.results error, got %v", err)
	}
}

func TestValidateAggregates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.Engine = "annealing"
	cfg.Search.Results = 0
	cfg.Search.StopAfter = 0
	cfg.Search.Restarts = -1
	cfg.Search.Parallel = 0
	cfg.Score.Method = "bigrams"
	cfg.Logging.Level = "loud"
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""
	cfg.Storage.Enabled = true
	cfg.Storage.Path = ""

	err := cfg.Validate()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	for _, field := range []string{
		"search.engine", "search.results", "search.stop_after", "search.restarts",
		"search.parallel", "score.method", "logging.level", "logging.file_path", "storage.path",
	} {
		if !verrs.Has(field) {
			t.Errorf("missing error for %s", field)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Search.Results = 7
			cfg.Search.Seed = 12345
			cfg.Score.Method = "ioc"
			cfg.Metrics.File = "/tmp/kaiser.prom"

			path := filepath.Join(t.TempDir(), "config"+ext)
			if err := Save(cfg, path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.Search != cfg.Search || loaded.Score != cfg.Score || loaded.Metrics != cfg.Metrics {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
			}
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	_, created, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if !created {
		t.Error("expected the file to be created")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !bytes.Contains(data, []byte("[search]")) {
		t.Errorf("written config lacks [search]:\n%s", data)
	}

	_, created, err = LoadOrCreate(path)
	if err != nil {
		t.Fatalf("second LoadOrCreate failed: %v", err)
	}
	if created {
		t.Error("existing file recreated")
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	lc, err := cfg.LoggerConfig()
	if err != nil {
		t.Fatalf("LoggerConfig failed: %v", err)
	}
	if lc.Level.String() != "DEBUG" {
		t.Errorf("level = %v", lc.Level)
	}
	if lc.Component != "kaiser" {
		t.Errorf("component = %q", lc.Component)
	}
}
