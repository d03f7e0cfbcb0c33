package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/anisan-cli/vidresolve/color"
	"github.com/anisan-cli/vidresolve/constant"
	"github.com/anisan-cli/vidresolve/key"
	"github.com/anisan-cli/vidresolve/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty renders the field for "config info".
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env is the environment variable bound to the field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds every known field by key.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}

		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.LogsMaxAge, 30, "Log files older than this many days are removed on startup.\n0 keeps them forever")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Check for a newer version after showing help")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.NetworkTimeout, 60, "Timeout of a single HTTP request, in seconds.\n0 disables it")
	register(key.NetworkUserAgent, "", "User-Agent sent to media hosts.\nEmpty uses a recent desktop Chrome")
	register(key.NetworkTLSFingerprint, false, "Mimic the TLS handshake of Chrome for https requests.\nHelps with hosts behind bot protection")
	register(key.NetworkRateLimit, 0, "Maximum requests per second. 0 disables the limit")
	register(key.NetworkRateBurst, 5, "Requests allowed above the rate limit at once")
	register(key.UnshortenEnabled, true, "Resolve short links (bit.ly and the like) before matching extractors")
	register(key.UnshortenMaxRedirects, 10, "Maximum redirects followed when resolving a short link")
	register(key.UnshortenExtraHosts, []string{}, "Additional hosts treated as link shorteners")
	register(key.UnshortenCacheLifetime, 168, "How long resolved short links are cached, in hours")
	register(key.ResolveTimeout, 60, "Deadline of a whole resolution, in seconds")
	register(key.ResolveFuzzyThreshold, 80, "Similarity above which a mirror domain is matched.\nFrom 0 to 100")
	register(key.ResolveProbeSize, false, "Probe the byte size of video links")
	register(key.OpenWith, "", "Application --open hands the best link to, e.g. mpv.\nEmpty uses the system handler")
	register(key.PluginsEnabled, true, "Load Lua extractors from the plugins directory")
	register(key.PluginsRepository, "https://raw.githubusercontent.com/anisan-cli/vidresolve-plugins/main/", "Base url plugins are updated from.\nMust serve an index.json")
	register(key.PluginsDisabled, []string{}, "Plugin file names that are not loaded")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
