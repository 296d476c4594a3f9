package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ppiankov/telcoscope/internal/model"
)

func TestL_DefaultsToNop(t *testing.T) {
	Set(nil)
	if L() == nil {
		t.Fatal("Expected a non-nil default logger")
	}
	L().Info("discarded")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(model.LoggingConfig{Level: "loud"})
	if err == nil {
		t.Fatal("Expected error for unknown level")
	}
}

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telcoscope.log")

	l, err := New(model.LoggingConfig{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Debug("cache hit", zap.String("query", "vivo"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"message":"cache hit"`) || !strings.Contains(line, `"query":"vivo"`) {
		t.Errorf("Unexpected log line: %s", line)
	}
}

func TestInit_InstallsLogger(t *testing.T) {
	defer Set(nil)

	path := filepath.Join(t.TempDir(), "out.log")
	l, err := Init(model.LoggingConfig{Level: "warn", Format: "console", Output: path})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if L() != l {
		t.Error("Expected L() to return the installed logger")
	}

	L().Info("below level")
	L().Warn("kept")
	_ = l.Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "below level") || !strings.Contains(string(data), "kept") {
		t.Errorf("Level filtering failed: %s", data)
	}
}

func TestSetLevel_ChangesInstalledLogger(t *testing.T) {
	defer Set(nil)

	path := filepath.Join(t.TempDir(), "level.log")
	l, err := Init(model.LoggingConfig{Level: "warn", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	l.Info("before")
	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	l.Info("after")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "before") || !strings.Contains(string(data), "after") {
		t.Errorf("Expected only the message logged after lowering the level, got: %s", data)
	}

	if err := SetLevel("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}
