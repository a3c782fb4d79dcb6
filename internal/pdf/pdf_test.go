package pdf

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintURL(t *testing.T) {
	tests := []struct {
		name      string
		locale    string
		solutions bool
		want      string
	}{
		{"german", "DE", false, "http://localhost:3000/de/worksheet/abc/print"},
		{"swiss", "CH", false, "http://localhost:3000/de/worksheet/abc/print?ch=1"},
		{"swiss solutions", "CH", true, "http://localhost:3000/de/worksheet/abc/print?ch=1&solutions=1"},
		{"neutral solutions", "NEUTRAL", true, "http://localhost:3000/de/worksheet/abc/print?solutions=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrintURL("http://localhost:3000/", "abc", tt.locale, tt.solutions))
		})
	}
}

func TestResolveExecutable(t *testing.T) {
	noDownload := func() (string, error) {
		t.Fatal("download must not be called")
		return "", nil
	}

	bin, err := ResolveExecutable(Options{ChromePath: "/opt/chrome"}, "linux", noDownload)
	require.NoError(t, err)
	assert.Equal(t, "/opt/chrome", bin)

	bin, err = ResolveExecutable(Options{ChromePath: "/opt/chrome", Production: true}, "linux", noDownload)
	require.NoError(t, err)
	assert.Equal(t, "/opt/chrome", bin)

	bin, err = ResolveExecutable(Options{Production: true}, "linux", func() (string, error) { return "/cache/chromium", nil })
	require.NoError(t, err)
	assert.Equal(t, "/cache/chromium", bin)

	_, err = ResolveExecutable(Options{Production: true}, "linux", func() (string, error) { return "", errors.New("offline") })
	assert.Error(t, err)

	bin, err = ResolveExecutable(Options{}, "darwin", noDownload)
	require.NoError(t, err)
	assert.Equal(t, "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", bin)

	bin, err = ResolveExecutable(Options{}, "windows", noDownload)
	require.NoError(t, err)
	assert.Equal(t, `C:\Program Files\Google\Chrome\Application\chrome.exe`, bin)

	bin, err = ResolveExecutable(Options{}, "linux", noDownload)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/google-chrome", bin)
}

func TestVersion(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := Version("w1", at)
	assert.Len(t, v, 16)
	assert.Equal(t, v, Version("w1", at.In(time.FixedZone("CET", 3600))))
	assert.NotEqual(t, v, Version("w1", at.Add(time.Millisecond)))
	assert.NotEqual(t, v, Version("w2", at))
}

func TestLaunchFlags(t *testing.T) {
	l := newLauncher("/usr/bin/google-chrome")
	assert.True(t, l.Has(flagName("disable-dev-shm-usage")))
	assert.Equal(t, "none", l.Get(flagName("font-render-hinting")))
	assert.True(t, l.Has(flagName("headless")))
	assert.True(t, l.Has(flagName("no-sandbox")))
}
