package plugin

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/anisan-cli/vidresolve/key"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/anisan-cli/vidresolve/registry"
	"github.com/anisan-cli/vidresolve/util"
	"github.com/anisan-cli/vidresolve/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Paths lists the plugin files in dir, sorted by name, leaving out the
// ones disabled in the configuration.
func Paths(dir string) ([]string, error) {
	files, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return nil, err
	}

	disabled := lo.Map(viper.GetStringSlice(key.PluginsDisabled), func(name string, _ int) string {
		return strings.ToLower(util.FileStem(name))
	})

	var paths []string
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != Extension {
			continue
		}

		if lo.Contains(disabled, strings.ToLower(util.FileStem(f.Name()))) {
			log.Infof("plugin %s is disabled", f.Name())
			continue
		}

		paths = append(paths, filepath.Join(dir, f.Name()))
	}

	return paths, nil
}

// LoadAll loads every plugin in dir and registers it with reg, tagged with
// its path. Plugins that fail to load are skipped; their errors are joined.
func LoadAll(reg *registry.Registry, dir string) ([]*Plugin, error) {
	paths, err := Paths(dir)
	if err != nil {
		return nil, err
	}

	var (
		loaded []*Plugin
		errs   []error
	)

	for _, path := range paths {
		p, err := Load(path)
		if err != nil {
			log.Warnf("plugin: %v", err)
			errs = append(errs, err)
			continue
		}

		reg.RegisterPlugin(path, p.Extractor())
		loaded = append(loaded, p)
	}

	log.Infof("loaded %s", util.Quantify(len(loaded), "plugin", "plugins"))
	return loaded, errors.Join(errs...)
}

// Setup loads the plugins of the plugins directory into reg, unless
// plugins are disabled.
func Setup(reg *registry.Registry) error {
	if !viper.GetBool(key.PluginsEnabled) {
		return nil
	}

	_, err := LoadAll(reg, where.Plugins())
	return err
}

// Remove deletes the plugin file with the given name from dir.
func Remove(dir, name string) error {
	name = strings.TrimSuffix(name, Extension)
	return filesystem.Delete(filepath.Join(dir, name+Extension))
}
