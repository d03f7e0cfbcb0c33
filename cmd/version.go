package cmd

import (
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/anisan-cli/vidresolve/color"
	"github.com/anisan-cli/vidresolve/constant"
	"github.com/anisan-cli/vidresolve/registry"
	"github.com/anisan-cli/vidresolve/style"
	"github.com/anisan-cli/vidresolve/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version")
}

var versionTemplate = lo.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
	"orDash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}      {{ bold .Version }}
  {{ faint "Git Commit" }}   {{ bold (orDash .Revision) }}
  {{ faint "Build Date" }}   {{ bold (orDash .BuiltAt) }}
  {{ faint "Built By" }}     {{ bold (orDash .BuiltBy) }}
  {{ faint "Platform" }}     {{ bold .OS }}/{{ bold .Arch }}
  {{ faint "Extractors" }}   {{ bold .Extractors }}
`))

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		defer version.Notify()

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), struct {
			App, Version, OS, Arch     string
			BuiltAt, BuiltBy, Revision string
			Extractors                 int
		}{
			App:        constant.App,
			Version:    constant.Version,
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			BuiltAt:    strings.TrimSpace(constant.BuiltAt),
			BuiltBy:    constant.BuiltBy,
			Revision:   constant.Revision,
			Extractors: registry.Default.Len(),
		}))
	},
}
