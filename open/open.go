// Package open hands resolved links to the system handler or a media player.
package open

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/anisan-cli/vidresolve/constant"
	"github.com/anisan-cli/vidresolve/link"
)

// Start opens input with the default system handler without waiting for it.
func Start(input string) error {
	return StartWith(input, "")
}

// StartWith opens input with app, or the system handler when app is empty.
func StartWith(input, app string) error {
	cmd, ok := command(runtime.GOOS, input, app)
	if !ok {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// Play opens a link with app. mpv receives the link's headers and every
// playlist item; other handlers only get the link url.
func Play(l *link.Link, app string) error {
	if !l.Type().Streamable() {
		return fmt.Errorf("%s links cannot be streamed", l.Type())
	}

	targets := []string{l.URL()}
	if l.IsPlaylist() {
		targets = targets[:0]
		for _, item := range l.Playlist() {
			targets = append(targets, item.URL)
		}
	}

	if len(targets) == 0 {
		return errors.New("link has nothing to play")
	}

	for _, target := range targets {
		if err := checkTarget(target); err != nil {
			return fmt.Errorf("invalid media target: %w", err)
		}
	}

	if isMPV(app) {
		return exec.Command(app, mpvArgs(l, targets)...).Start()
	}

	return StartWith(targets[0], app)
}

func isMPV(app string) bool {
	name := strings.TrimSuffix(strings.ToLower(filepath.Base(app)), ".exe")
	return name == "mpv" || name == "mpvnet"
}

func mpvArgs(l *link.Link, targets []string) []string {
	args := []string{"--no-terminal", "--force-media-title=" + l.Name()}

	headers := l.EffectiveHeaders()
	if len(headers) > 0 {
		fields := make([]string, 0, len(headers))
		for k, v := range headers {
			fields = append(fields, fmt.Sprintf("%s: %s", k, strings.ReplaceAll(v, ",", "%2C")))
		}
		sort.Strings(fields)
		args = append(args, "--http-header-fields="+strings.Join(fields, ","))
	}

	return append(append(args, "--"), targets...)
}

// checkTarget rejects inputs that a player could read as flags.
func checkTarget(target string) error {
	t := strings.TrimSpace(target)
	switch {
	case t == "":
		return errors.New("empty url")
	case strings.ContainsAny(t, "\x00\n\r"):
		return errors.New("control characters in url")
	case strings.HasPrefix(t, "-"):
		return errors.New("url must not start with '-'")
	}

	u, err := url.Parse(t)
	if err != nil {
		return err
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

func command(goos, input, app string) (*exec.Cmd, bool) {
	if app != "" {
		switch goos {
		case constant.Windows:
			// start treats & as a command separator
			escaped := strings.ReplaceAll(input, "&", "^&")
			return exec.Command("cmd", "/C", "start", "", app, escaped), true
		case constant.Darwin:
			return exec.Command("open", "-a", app, input), true
		case constant.Android:
			return exec.Command("termux-open", "--choose", input), true
		default:
			return exec.Command(app, input), true
		}
	}

	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", input), true
	case constant.Darwin:
		return exec.Command("open", input), true
	case constant.Linux:
		return exec.Command("xdg-open", input), true
	case constant.Android:
		return exec.Command("termux-open", input), true
	default:
		return nil, false
	}
}
