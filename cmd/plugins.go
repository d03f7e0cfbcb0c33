package cmd

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"

	"github.com/AlecAivazis/survey/v2"
	"github.com/anisan-cli/vidresolve/color"
	"github.com/anisan-cli/vidresolve/icon"
	"github.com/anisan-cli/vidresolve/key"
	"github.com/anisan-cli/vidresolve/plugin"
	"github.com/anisan-cli/vidresolve/style"
	"github.com/anisan-cli/vidresolve/util"
	"github.com/anisan-cli/vidresolve/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func completionPluginNames(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	paths, err := plugin.Paths(where.Plugins())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	return lo.Map(paths, func(path string, _ int) string {
		return util.FileStem(path)
	}), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Manage Lua extractor plugins",
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsListCmd.Flags().BoolP("raw", "r", false, "Print file paths only")
	pluginsListCmd.SetOut(os.Stdout)
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins and whether they load",
	Run: func(cmd *cobra.Command, args []string) {
		paths, err := plugin.Paths(where.Plugins())
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("raw")) {
			for _, path := range paths {
				cmd.Println(path)
			}
			return
		}

		if len(paths) == 0 {
			cmd.Printf("No plugins installed in %s\n", style.Fg(color.Yellow)(where.Plugins()))
			return
		}

		for _, path := range paths {
			p, err := plugin.Load(path)
			if err != nil {
				cmd.Printf("%s %s %s\n", icon.Get(icon.Cross), filepath.Base(path), style.Fg(color.Red)(err.Error()))
				continue
			}

			cmd.Printf("%s %s %s\n", icon.Get(icon.Lua), p.Name(), style.Faint(p.MainURL()))
			p.Close()
		}
	},
}

func init() {
	pluginsCmd.AddCommand(pluginsNewCmd)

	pluginsNewCmd.Flags().StringP("name", "n", "", "Display name of the extractor")
	pluginsNewCmd.Flags().StringP("url", "u", "", "Main url of the site the extractor handles")
	pluginsNewCmd.Flags().BoolP("referer", "r", false, "Whether callers must pass a referer")
	pluginsNewCmd.SetOut(os.Stdout)
}

var pluginsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Scaffold a new Lua extractor",
	Long:  "Generate a Lua extractor skeleton in the plugins directory. Missing values are asked for.",
	Run: func(cmd *cobra.Command, args []string) {
		scaffold := plugin.Scaffold{
			Name:            lo.Must(cmd.Flags().GetString("name")),
			MainURL:         lo.Must(cmd.Flags().GetString("url")),
			RequiresReferer: lo.Must(cmd.Flags().GetBool("referer")),
			Author:          "Anonymous",
		}

		if usr, err := user.Current(); err == nil {
			scaffold.Author = usr.Username
		}

		if scaffold.Name == "" {
			handleErr(survey.AskOne(&survey.Input{
				Message: "Extractor name:",
			}, &scaffold.Name, survey.WithValidator(survey.Required)))
		}

		if scaffold.MainURL == "" {
			handleErr(survey.AskOne(&survey.Input{
				Message: "Main url:",
				Help:    "The site the extractor owns, e.g. https://example.com",
			}, &scaffold.MainURL, survey.WithValidator(survey.Required)))

			handleErr(survey.AskOne(&survey.Confirm{
				Message: "Does it require a referer?",
				Default: scaffold.RequiresReferer,
			}, &scaffold.RequiresReferer))
		}

		path, err := plugin.New(where.Plugins(), scaffold)
		handleErr(err)

		cmd.Println(path)
	},
}

func init() {
	pluginsCmd.AddCommand(pluginsRemoveCmd)
}

var pluginsRemoveCmd = &cobra.Command{
	Use:               "remove <name>...",
	Short:             "Uninstall plugins",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completionPluginNames,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range args {
			handleErr(plugin.Remove(where.Plugins(), name))
			fmt.Printf("%s successfully removed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(name))
		}
	},
}

func init() {
	pluginsCmd.AddCommand(pluginsUpdateCmd)

	pluginsUpdateCmd.Flags().StringP("repository", "R", "", "Base url of the plugin repository")
	lo.Must0(viper.BindPFlag(key.PluginsRepository, pluginsUpdateCmd.Flags().Lookup("repository")))
	pluginsUpdateCmd.Flags().BoolP("install", "i", false, "Also install plugins that are not installed yet")
}

var pluginsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update installed plugins from the plugin repository",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		erase := util.PrintErasable(fmt.Sprintf("%s Updating plugins...", icon.Get(icon.Progress)))
		result, err := plugin.Update(ctx, plugin.UpdateOptions{
			Repository: viper.GetString(key.PluginsRepository),
			Dir:        where.Plugins(),
			Install:    lo.Must(cmd.Flags().GetBool("install")),
		})
		erase()
		handleErr(err)

		for _, name := range result.Updated {
			fmt.Printf("%s updated %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(name))
		}

		failed := lo.Keys(result.Failed)
		sort.Strings(failed)
		for _, name := range failed {
			fmt.Printf("%s %s: %v\n", icon.Get(icon.Fail), style.Fg(color.Red)(name), result.Failed[name])
		}

		fmt.Printf("%s up to date\n", util.Quantify(len(result.UpToDate), "plugin", "plugins"))
	},
}
