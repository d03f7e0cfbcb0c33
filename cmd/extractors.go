package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/anisan-cli/vidresolve/color"
	"github.com/anisan-cli/vidresolve/icon"
	"github.com/anisan-cli/vidresolve/registry"
	"github.com/anisan-cli/vidresolve/resolver"
	"github.com/anisan-cli/vidresolve/style"
	"github.com/anisan-cli/vidresolve/util"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func errUnknownExtractor(name string) error {
	if closest, ok := registry.Default.Suggest(name).Get(); ok {
		return fmt.Errorf(
			"unknown extractor %s, did you mean %s?",
			style.Fg(color.Red)(name),
			style.Fg(color.Yellow)(closest),
		)
	}

	return fmt.Errorf("unknown extractor %s", style.Fg(color.Red)(name))
}

func completionExtractorNames(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(registry.Default.All(), func(d *registry.Descriptor, _ int) string {
		return d.Name
	}), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(extractorsCmd)
}

var extractorsCmd = &cobra.Command{
	Use:     "extractors",
	Aliases: []string{"ext"},
	Short:   "Inspect the registered extractors",
}

func init() {
	extractorsCmd.AddCommand(extractorsListCmd)

	extractorsListCmd.Flags().BoolP("raw", "r", false, "Suppress headers in the output")
	extractorsListCmd.Flags().BoolP("plugins", "p", false, "Display only extractors loaded from Lua plugins")
	extractorsListCmd.Flags().BoolP("builtin", "b", false, "Display only built-in extractors")
	extractorsListCmd.Flags().StringP("filter", "f", "", "Fuzzy filter by name")
	extractorsListCmd.Flags().BoolP("json", "j", false, "Format the output as json")

	extractorsListCmd.MarkFlagsMutuallyExclusive("plugins", "builtin")
	extractorsListCmd.SetOut(os.Stdout)
}

var extractorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered extractors in matching order",
	Run: func(cmd *cobra.Command, args []string) {
		descriptors := registry.Default.Priority()
		if filter := lo.Must(cmd.Flags().GetString("filter")); filter != "" {
			descriptors = registry.Default.Search(filter)
		}

		switch {
		case lo.Must(cmd.Flags().GetBool("plugins")):
			descriptors = lo.Filter(descriptors, func(d *registry.Descriptor, _ int) bool { return d.IsPlugin() })
		case lo.Must(cmd.Flags().GetBool("builtin")):
			descriptors = lo.Reject(descriptors, func(d *registry.Descriptor, _ int) bool { return d.IsPlugin() })
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(lo.Map(descriptors, func(d *registry.Descriptor, _ int) map[string]any {
				return map[string]any{
					"name":            d.Name,
					"mainUrl":         d.MainURL,
					"requiresReferer": d.RequiresReferer,
					"plugin":          d.SourcePlugin.OrEmpty(),
				}
			})))
			return
		}

		if !lo.Must(cmd.Flags().GetBool("raw")) {
			cmd.Println(style.New().Foreground(color.HiBlue).Bold(true).Render(
				util.Quantify(len(descriptors), "extractor", "extractors") + ":",
			))
		}

		for _, d := range descriptors {
			kind := icon.Get(icon.Builtin)
			if d.IsPlugin() {
				kind = icon.Get(icon.Lua)
			}

			cmd.Printf("%s %s %s\n", kind, d.Name, style.Faint(d.MainURL))
		}
	},
}

func init() {
	extractorsCmd.AddCommand(extractorsInfoCmd)
	extractorsInfoCmd.SetOut(os.Stdout)
}

var extractorsInfoCmd = &cobra.Command{
	Use:               "info <name>",
	Short:             "Display details of an extractor",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionExtractorNames,
	Run: func(cmd *cobra.Command, args []string) {
		d, ok := registry.Default.Lookup(args[0])
		if !ok {
			handleErr(errUnknownExtractor(args[0]))
		}

		width := 80
		if w, _, err := util.TerminalSize(); err == nil && w > 0 {
			width = util.Max(w, 20)
		}

		key := style.Fg(color.Blue)
		kind := "built-in"
		if path, ok := d.SourcePlugin.Get(); ok {
			kind = "plugin " + path
		}

		rows := [][2]string{
			{"Name", style.Fg(color.Purple)(d.Name)},
			{"Main url", d.MainURL},
			{"Referer", strconv.FormatBool(d.RequiresReferer)},
			{"Kind", kind},
			{"Matches", resolver.Key(d.MainURL) + "*"},
		}

		var b strings.Builder
		for _, row := range rows {
			b.WriteString(fmt.Sprintf("%s %s\n", key(row[0]+":"), row[1]))
		}

		cmd.Print(wrap.String(b.String(), width))
	},
}

func init() {
	extractorsCmd.AddCommand(extractorsMatchCmd)
	extractorsMatchCmd.SetOut(os.Stdout)
}

var extractorsMatchCmd = &cobra.Command{
	Use:   "match <url>",
	Short: "Show which extractor would handle a url, without resolving it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := resolveContext()
		defer cancel()

		url := args[0]
		if u := newUnshortener(); u != nil && u.IsShortLink(url) {
			resolved, err := u.Unshorten(ctx, url)
			if err == nil {
				cmd.Printf("%s %s\n", style.Faint("unshortened to"), resolved)
				url = resolved
			}
		}

		match, ok := newEngine().Match(url)
		if !ok {
			handleErr(fmt.Errorf("no extractor matches %s", url))
		}

		cmd.Printf("%s %s %s\n",
			icon.Get(icon.Success),
			style.Fg(color.Purple)(match.Descriptor.Name),
			style.Faint(fmt.Sprintf("(%s match, score %d)", match.Phase, match.Score)),
		)
	},
}
