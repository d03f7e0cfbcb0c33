// Package version checks for newer releases.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anisan-cli/vidresolve/constant"
	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/anisan-cli/vidresolve/network"
	"github.com/anisan-cli/vidresolve/where"
	"github.com/metafates/gache"
)

// ReleasesURL is queried for the latest published release.
var ReleasesURL = "https://api.github.com/repos/" + constant.Repository + "/releases/latest"

var (
	cacherOnce    sync.Once
	versionCacher *gache.Cache[string]
)

func cacher() *gache.Cache[string] {
	cacherOnce.Do(func() {
		versionCacher = gache.New[string](&gache.Options{
			Path:       filepath.Join(where.Cache(), "version.json"),
			Lifetime:   time.Hour * 24 * 2,
			FileSystem: &filesystem.GacheFs{},
		})
	})

	return versionCacher
}

// Latest returns the version of the newest release, without the "v" prefix.
// The answer is cached for two days.
func Latest(ctx context.Context) (string, error) {
	if ver, expired, err := cacher().Get(); err == nil && !expired && ver != "" {
		return ver, nil
	}

	body, err := network.GetString(ctx, network.Client, ReleasesURL, map[string]string{
		"Accept": "application/vnd.github+json",
	})
	if err != nil {
		return "", err
	}

	var release struct {
		TagName string `json:"tag_name"`
	}

	if err := json.Unmarshal([]byte(body), &release); err != nil {
		return "", err
	}

	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}

	ver := strings.TrimPrefix(release.TagName, "v")
	_ = cacher().Set(ver)
	return ver, nil
}
