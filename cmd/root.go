// Package cmd implements the command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/anisan-cli/vidresolve/color"
	"github.com/anisan-cli/vidresolve/constant"
	"github.com/anisan-cli/vidresolve/icon"
	"github.com/anisan-cli/vidresolve/inline"
	"github.com/anisan-cli/vidresolve/key"
	"github.com/anisan-cli/vidresolve/link"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/anisan-cli/vidresolve/network"
	"github.com/anisan-cli/vidresolve/open"
	"github.com/anisan-cli/vidresolve/registry"
	"github.com/anisan-cli/vidresolve/resolver"
	"github.com/anisan-cli/vidresolve/style"
	"github.com/anisan-cli/vidresolve/unshorten"
	"github.com/anisan-cli/vidresolve/version"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.Flags().StringP("referer", "r", "", "Referer to resolve the url with")
	rootCmd.Flags().BoolP("json", "j", false, "Print the result as json")

	rootCmd.Flags().BoolP("size", "s", false, "Probe the byte size of video links")
	lo.Must0(viper.BindPFlag(key.ResolveProbeSize, rootCmd.Flags().Lookup("size")))

	rootCmd.Flags().IntP("timeout", "t", 0, "Deadline of the whole resolution, in seconds")
	lo.Must0(viper.BindPFlag(key.ResolveTimeout, rootCmd.Flags().Lookup("timeout")))

	rootCmd.Flags().StringP("pick", "p", "", "Filter links: best, worst, quality=<label>, type=<format>, index=<n>")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("pick", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"all", "best", "worst", "quality=", "type=", "index="}, cobra.ShellCompDirectiveNoSpace
	}))

	rootCmd.Flags().BoolP("open", "o", false, "Open the best link once resolved")
	rootCmd.Flags().StringP("with", "w", "", "Application to open the link with")
	lo.Must0(viper.BindPFlag(key.OpenWith, rootCmd.Flags().Lookup("with")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

var rootCmd = &cobra.Command{
	Use:   constant.App + " [url]",
	Short: "Resolve media hosting urls into playable links",
	Long: style.New().Bold(true).Foreground(color.HiPurple).Render(constant.App) + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Resolve media hosting urls into playable links"),
	Example: "  " + constant.App + " https://megacloud.blog/embed-2/v3/e-1/abc?z= --json",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if len(args) == 0 {
			handleErr(cmd.Help())
			return
		}

		options := &inline.Options{
			Out:       cmd.OutOrStdout(),
			Engine:    newEngine(),
			URL:       args[0],
			Referer:   lo.Must(cmd.Flags().GetString("referer")),
			Json:      lo.Must(cmd.Flags().GetBool("json")),
			ProbeSize: viper.GetBool(key.ResolveProbeSize),
			Prober:    network.Prober{Client: network.Client},
		}

		if pick := lo.Must(cmd.Flags().GetString("pick")); pick != "" {
			kind, value, _ := strings.Cut(pick, "=")
			filter, err := inline.ParseLinkFilter(kind, value)
			handleErr(err)
			options.LinkFilter = mo.Some(filter)
		}

		if lo.Must(cmd.Flags().GetBool("open")) {
			options.Play = mo.Some(func(l *link.Link) error {
				return open.Play(l, viper.GetString(key.OpenWith))
			})
		}

		ctx, cancel := resolveContext()
		defer cancel()

		err := inline.Run(ctx, options)
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("resolution timed out after %ds", viper.GetInt(key.ResolveTimeout))
		}
		handleErr(err)
	},
}

// newEngine builds a resolver over the default registry from the configuration.
func newEngine() *resolver.Engine {
	options := []resolver.Option{
		resolver.WithThreshold(viper.GetInt(key.ResolveFuzzyThreshold)),
	}

	if u := newUnshortener(); u != nil {
		options = append(options, resolver.WithUnshortener(u))
	}

	return resolver.New(registry.Default, options...)
}

func newUnshortener() *unshorten.Unshortener {
	if !viper.GetBool(key.UnshortenEnabled) {
		return nil
	}

	return unshorten.FromConfig()
}

// resolveContext is cancelled on interrupt and after resolve.timeout seconds.
func resolveContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	timeout := viper.GetInt(key.ResolveTimeout)
	if timeout <= 0 {
		return ctx, stop
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	return ctx, func() {
		cancel()
		stop()
	}
}

// Execute runs the root command.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
