package pdf

import (
	"fmt"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

var runtimeGOOS = runtime.GOOS

var systemChrome = map[string]string{
	"darwin":  "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"windows": `C:\Program Files\Google\Chrome\Application\chrome.exe`,
	"linux":   "/usr/bin/google-chrome",
}

// Extra Chrome switches. Headless and no-sandbox are set on the launcher directly.
var launchFlags = [][2]string{
	{"disable-setuid-sandbox", ""},
	{"disable-dev-shm-usage", ""},
	{"font-render-hinting", "none"},
}

func flagName(name string) flags.Flag { return flags.Flag(name) }

// ResolveExecutable picks the Chrome binary: an explicit path wins, production
// uses the managed browser download, otherwise the platform's default install.
func ResolveExecutable(opts Options, goos string, download func() (string, error)) (string, error) {
	if opts.ChromePath != "" {
		return opts.ChromePath, nil
	}
	if opts.Production {
		bin, err := download()
		if err != nil {
			return "", fmt.Errorf("failed to fetch managed browser: %w", err)
		}
		return bin, nil
	}
	if bin, ok := systemChrome[goos]; ok {
		return bin, nil
	}
	if bin, ok := launcher.LookPath(); ok {
		return bin, nil
	}
	return "", fmt.Errorf("no Chrome executable known for %s", goos)
}

func downloadBrowser() (string, error) {
	return launcher.NewBrowser().Get()
}
