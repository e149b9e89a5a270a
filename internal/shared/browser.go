package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// browserCommands maps GOOS to the launcher that opens a URL in the default browser.
var browserCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// browserCommand resolves the launcher for goos. $BROWSER wins when set.
func browserCommand(goos, url string) ([]string, error) {
	if b := os.Getenv("BROWSER"); b != "" {
		return []string{b, url}, nil
	}
	launcher, ok := browserCommands[goos]
	if !ok {
		return nil, fmt.Errorf("%w: cannot open a browser on %s, visit %s manually", ErrNotSupported, goos, url)
	}
	return append(append([]string{}, launcher...), url), nil
}

// OpenBrowser starts the default browser on url without waiting for it to exit.
func OpenBrowser(url string) error {
	args, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := exec.Command(args[0], args[1:]...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
