// Package config sets up viper: defaults, environment bindings and the config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anisan-cli/vidresolve/constant"
	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/anisan-cli/vidresolve/where"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps config keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup loads the dotenv file, registers defaults and env bindings, then reads
// vidresolve.toml from the config directory. A missing file is not an error.
func Setup() error {
	if err := loadEnv(where.Env()); err != nil {
		return err
	}

	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return err
	}

	return nil
}

// loadEnv exports the variables of a dotenv file. Variables that are
// already set keep their value.
func loadEnv(path string) error {
	contents, err := filesystem.API().ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read %s: %w", path, err)
	}

	vars, err := godotenv.Unmarshal(string(contents))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	for name, value := range vars {
		if _, set := os.LookupEnv(name); set {
			continue
		}

		if err := os.Setenv(name, value); err != nil {
			return err
		}
	}

	return nil
}

// Path is the config file written by Save.
func Path() string {
	return filepath.Join(where.Config(), constant.App+".toml")
}

// Save writes the current configuration, creating the file if needed.
func Save() error {
	err := viper.WriteConfig()

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return viper.SafeWriteConfigAs(Path())
	}

	return err
}
