// internal/browser/allocator.go
package browser

import (
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/xkilldash9x/lispico-e2e/internal/config"
)

// allocatorFlags resolves the Chrome command line flags for cfg. Keys carry no
// leading dashes; chromedp adds them.
func allocatorFlags(cfg config.BrowserConfig) map[string]interface{} {
	flags := map[string]interface{}{
		// Needed on hardened container hosts where the sandbox cannot start.
		"no-sandbox":            true,
		"disable-dev-shm-usage": true,
	}

	if cfg.Headless {
		flags["headless"] = true
		flags["hide-scrollbars"] = true
		flags["mute-audio"] = true
	}
	if cfg.DisableGPU {
		flags["disable-gpu"] = true
	}
	if cfg.DisableCache {
		flags["disk-cache-size"] = "1"
		flags["media-cache-size"] = "1"
		flags["disable-cache"] = true
	}
	// The panel runs behind a self-signed certificate in local environments.
	if cfg.IgnoreTLSErrors {
		flags["ignore-certificate-errors"] = true
		flags["allow-insecure-localhost"] = true
	}

	for _, arg := range cfg.Args {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
		if arg == "" {
			continue
		}
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			flags[key] = true
			continue
		}
		flags[key] = value
	}
	return flags
}

// DefaultAllocatorOptions builds the exec allocator options for launching
// the shared browser process.
func DefaultAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		// DefaultExecAllocatorOptions includes headless; a later flag overrides it.
		opts = append(opts, chromedp.Flag("headless", false))
	}

	for key, value := range allocatorFlags(cfg) {
		opts = append(opts, chromedp.Flag(key, value))
	}

	if w, h := cfg.Viewport["width"], cfg.Viewport["height"]; w > 0 && h > 0 {
		opts = append(opts, chromedp.WindowSize(w, h))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}
