package manifest

import (
	"context"
	"errors"
	"fmt"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// ErrValidationFailed is returned when an encoded manifest does not
// pass the compose structural check. The write is aborted; no partial
// manifest is ever emitted.
var ErrValidationFailed = errors.New("manifest failed structural validation")

// Validate loads the encoded manifest through the compose loader as a
// well-formedness gate. Semantic correctness of third-party service
// definitions is out of scope; this only rejects documents a
// downstream orchestrator could not parse.
func Validate(data []byte) error {
	var dict map[string]interface{}
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if dict == nil {
		return fmt.Errorf("%w: empty document", ErrValidationFailed)
	}

	_, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: data,
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName("stacksmith", false)
		opts.SkipValidation = false
		// Resolved placeholder values must pass through verbatim.
		opts.SkipInterpolation = true
		// In-memory document, no paths to resolve.
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return nil
}
