package protocol

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

// CreateOptions holds the optional parts of a CreateWidget call as scripts
// pass them: {text = ..., style = {...}, data = {...}}.
type CreateOptions struct {
	Text  *string      `mapstructure:"text"`
	Style *WidgetStyle `mapstructure:"style"`
	Data  *WidgetData  `mapstructure:"data"`
}

// DecodeOptions converts a generic script value (as exported by the script
// engines) into CreateOptions. Numbers are accepted for integer fields and
// vice versa. unused lists keys that matched no field, sorted.
func DecodeOptions(raw map[string]any) (opts CreateOptions, unused []string, err error) {
	if len(raw) == 0 {
		return opts, nil, nil
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return opts, nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return CreateOptions{}, nil, fmt.Errorf("decode widget options: %w", err)
	}

	sort.Strings(md.Unused)
	return opts, md.Unused, nil
}
