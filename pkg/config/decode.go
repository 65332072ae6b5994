package config

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/arthur-debert/stagehand/pkg/errors"
	"github.com/arthur-debert/stagehand/pkg/types"
)

// DecodeRoot upgrades a validated, normalized config tree into the typed
// root structure. Decoding is weakly typed so integer watch intervals and
// similar convenient spellings are accepted; unknown keys were already
// reported by validation and are dropped here.
func DecodeRoot(parsed map[string]any) (*types.RootConfig, error) {
	var root types.RootConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &root,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot build config decoder")
	}
	if err := decoder.Decode(parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "cannot decode configuration")
	}
	return &root, nil
}
