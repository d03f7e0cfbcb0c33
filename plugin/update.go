package plugin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/anisan-cli/vidresolve/network"
)

// IndexFile is the listing of a plugin repository.
const IndexFile = "index.json"

// IndexEntry describes one plugin published in a repository.
type IndexEntry struct {
	File   string `json:"file"`
	SHA256 string `json:"sha256"`
}

// UpdateOptions configure Update.
type UpdateOptions struct {
	// Repository is the base url the index and plugin files are served from.
	Repository string
	// Dir is the local plugins directory.
	Dir string
	// Install also fetches published plugins that are not installed yet.
	Install bool
	// Client defaults to network.Client.
	Client *http.Client
}

// UpdateResult lists what Update changed.
type UpdateResult struct {
	Updated  []string
	UpToDate []string
	Failed   map[string]error
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Update fetches the repository index and replaces every local plugin whose
// checksum differs from the published one. Files are swapped atomically and
// only after the download matches the published checksum.
func Update(ctx context.Context, options UpdateOptions) (UpdateResult, error) {
	client := options.Client
	if client == nil {
		client = network.Client
	}

	base := strings.TrimSuffix(options.Repository, "/") + "/"

	raw, err := network.GetString(ctx, client, base+IndexFile, nil)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("fetch plugin index: %w", err)
	}

	var index []IndexEntry
	if err := json.Unmarshal([]byte(raw), &index); err != nil {
		return UpdateResult{}, fmt.Errorf("parse plugin index: %w", err)
	}

	result := UpdateResult{Failed: make(map[string]error)}
	for _, entry := range index {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name := filepath.Base(entry.File)
		if filepath.Ext(name) != Extension {
			continue
		}

		local := filepath.Join(options.Dir, name)
		current, err := filesystem.API().ReadFile(local)
		installed := err == nil

		switch {
		case !installed && !options.Install:
			continue
		case installed && strings.EqualFold(checksum(current), entry.SHA256):
			result.UpToDate = append(result.UpToDate, name)
			continue
		}

		if err := fetchPlugin(ctx, client, base+entry.File, local, entry.SHA256); err != nil {
			log.Warnf("plugin update %s: %v", name, err)
			result.Failed[name] = err
			continue
		}

		log.Infof("plugin %s updated", name)
		result.Updated = append(result.Updated, name)
	}

	return result, nil
}

func fetchPlugin(ctx context.Context, client *http.Client, url, path, want string) error {
	body, err := network.GetString(ctx, client, url, nil)
	if err != nil {
		return err
	}

	if got := checksum([]byte(body)); !strings.EqualFold(got, want) {
		return fmt.Errorf("checksum mismatch: got %s, index says %s", got, want)
	}

	return filesystem.WriteAtomic(path, []byte(body), 0o644)
}
