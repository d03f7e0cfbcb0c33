package plugin

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/anisan-cli/vidresolve/constant"
	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/anisan-cli/vidresolve/util"
)

// Scaffold describes a plugin to generate.
type Scaffold struct {
	Name            string
	MainURL         string
	Author          string
	RequiresReferer bool
}

var scaffoldTemplate = template.Must(template.New("plugin").Funcs(template.FuncMap{
	"repeat": strings.Repeat,
	"plus":   func(a, b int) int { return a + b },
	"max":    util.Max[int],
}).Parse(constant.PluginTemplate))

// New writes a plugin skeleton for s into dir and returns its path.
// Existing files are not overwritten.
func New(dir string, s Scaffold) (string, error) {
	if s.Name == "" || s.MainURL == "" {
		return "", fmt.Errorf("plugin name and main url are required")
	}

	if s.Author == "" {
		s.Author = "Anonymous"
	}

	filename := util.SanitizeFilename(s.Name)
	if filename == "" {
		return "", fmt.Errorf("invalid plugin name %q", s.Name)
	}

	path := filepath.Join(dir, filename+Extension)
	if exists, _ := filesystem.API().Exists(path); exists {
		return "", fmt.Errorf("plugin %s already exists", path)
	}

	var b strings.Builder
	err := scaffoldTemplate.Execute(&b, struct {
		Scaffold
		NameGlobal            string
		MainURLGlobal         string
		RequiresRefererGlobal string
		GetURLFn              string
	}{
		Scaffold:              s,
		NameGlobal:            NameGlobal,
		MainURLGlobal:         MainURLGlobal,
		RequiresRefererGlobal: RequiresRefererGlobal,
		GetURLFn:              GetURLFn,
	})
	if err != nil {
		return "", err
	}

	if err := filesystem.API().WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}

	return path, nil
}
