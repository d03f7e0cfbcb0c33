package main

import (
	"time"

	"github.com/anisan-cli/vidresolve/cmd"
	"github.com/anisan-cli/vidresolve/config"
	"github.com/anisan-cli/vidresolve/extractors"
	"github.com/anisan-cli/vidresolve/internal/cache"
	"github.com/anisan-cli/vidresolve/key"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/anisan-cli/vidresolve/network"
	"github.com/anisan-cli/vidresolve/plugin"
	"github.com/anisan-cli/vidresolve/registry"
	"github.com/anisan-cli/vidresolve/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())
	network.Setup()

	go func() {
		cache.CollectGarbage(where.Temp(), 24*time.Hour)
		if days := viper.GetInt(key.LogsMaxAge); days > 0 {
			cache.CollectGarbage(where.Logs(), time.Duration(days)*24*time.Hour)
		}
	}()

	extractors.RegisterBuiltins(registry.Default)
	if err := plugin.Setup(registry.Default); err != nil {
		log.Warn(err)
	}

	cmd.Execute()
}
