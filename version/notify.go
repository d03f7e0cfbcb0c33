package version

import (
	"context"
	"fmt"
	"time"

	"github.com/anisan-cli/vidresolve/color"
	"github.com/anisan-cli/vidresolve/constant"
	"github.com/anisan-cli/vidresolve/icon"
	"github.com/anisan-cli/vidresolve/key"
	"github.com/anisan-cli/vidresolve/style"
	"github.com/anisan-cli/vidresolve/util"
	"github.com/spf13/viper"
)

// Notify prints a notice when a newer release exists.
// Failing to check is silent.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) || !util.IsTerminal() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	latest, err := Latest(ctx)
	erase()
	if err != nil {
		return
	}

	if comp, err := Compare(latest, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/"+constant.Repository+"/releases/tag/v"+latest),
	)
}
