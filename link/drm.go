package link

import (
	"maps"

	"github.com/samber/mo"
)

// Well-known key system identifiers.
const (
	ClearKey  = "org.w3.clearkey"
	Widevine  = "com.widevine.alpha"
	PlayReady = "com.microsoft.playready"
)

// DefaultKeyType is the key type used when none is given.
const DefaultKeyType = "oct"

// DRM holds what a player needs to decrypt a protected resource.
// License acquisition itself is left to the player.
type DRM struct {
	// KeyID is the base64 encoded key id.
	KeyID mo.Option[string]
	// Key is the base64 encoded content key.
	Key mo.Option[string]
	// KeySystem is one of ClearKey, Widevine, PlayReady or a custom identifier.
	KeySystem string
	// KeyType defaults to DefaultKeyType.
	KeyType string
	// KeyRequestParameters are sent along with the license request.
	KeyRequestParameters map[string]string
	// LicenseURL is where the player requests a license from.
	LicenseURL mo.Option[string]
}

func (d DRM) normalized() DRM {
	if d.KeyType == "" {
		d.KeyType = DefaultKeyType
	}

	if d.KeyRequestParameters == nil {
		d.KeyRequestParameters = make(map[string]string)
	} else {
		d.KeyRequestParameters = maps.Clone(d.KeyRequestParameters)
	}

	return d
}

func optionalString(o mo.Option[string]) *string {
	if !o.IsPresent() {
		return nil
	}

	s := o.MustGet()
	return &s
}
