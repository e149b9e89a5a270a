package shared

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		ms   int
		want string
	}{
		{0, "--:--"},
		{-5, "--:--"},
		{59_000, "0:59"},
		{61_000, "1:01"},
		{243_500, "4:03"},
	}
	for _, tt := range tc {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestLogger(t *testing.T) {
	t.Run("ApplyLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&buf)

		if err := ApplyLogLevel(l, "warn"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.GetLevel() != log.WarnLevel {
			t.Errorf("expected warn level, got %v", l.GetLevel())
		}

		l.Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("info should be filtered at warn level, got %q", buf.String())
		}

		if err := ApplyLogLevel(l, "loud"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "listbridge.log")
		l, f, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		defer f.Close()

		WithLogger(l, "run", "abc").Info("written")
		if err := f.Sync(); err != nil {
			t.Fatalf("sync failed: %v", err)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("ids should be unique")
	}
	if len(a) != 36 || strings.Count(a, "-") != 4 {
		t.Errorf("unexpected id format %q", a)
	}
}

func TestRunLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listbridge.lock")
	first := NewRunLock(path)
	second := NewRunLock(path)

	if err := first.Acquire(); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if err := second.Acquire(); !errors.Is(err, ErrTransferRunning) {
		t.Errorf("expected ErrTransferRunning, got %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := second.Acquire(); err != nil {
		t.Errorf("acquire after release failed: %v", err)
	}
	second.Release()
	if err := second.Release(); err != nil {
		t.Errorf("double release should be a no-op: %v", err)
	}
}

func TestBrowserCommand(t *testing.T) {
	t.Setenv("BROWSER", "")

	tc := []struct {
		goos string
		want []string
	}{
		{goos: "darwin", want: []string{"open", "http://x"}},
		{goos: "linux", want: []string{"xdg-open", "http://x"}},
		{goos: "windows", want: []string{"rundll32", "url.dll,FileProtocolHandler", "http://x"}},
	}
	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			got, err := browserCommand(tt.goos, "http://x")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		if _, err := browserCommand("plan9", "http://x"); !errors.Is(err, ErrNotSupported) {
			t.Errorf("expected ErrNotSupported, got %v", err)
		}
	})

	t.Run("BROWSER overrides the platform launcher", func(t *testing.T) {
		t.Setenv("BROWSER", "firefox")
		got, err := browserCommand("plan9", "http://x")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 2 || got[0] != "firefox" {
			t.Errorf("unexpected command %v", got)
		}
	})
}
