package storage

import (
	"strings"
	"testing"
)

func TestAsset_Validate(t *testing.T) {
	tests := map[string]struct {
		asset   Asset
		expErrs []string
	}{
		"valid asset": {
			asset: Asset{Version: 1, Identifier: "sound_volume", Value: []byte(`0.5`)},
		},
		"version not set": {
			asset:   Asset{Version: 0, Identifier: "profile", Value: []byte(`{}`)},
			expErrs: []string{"version must be set"},
		},
		"empty identifier": {
			asset:   Asset{Version: 1, Identifier: "", Value: []byte(`{}`)},
			expErrs: []string{"id must be set"},
		},
		"identifier with spaces": {
			asset:   Asset{Version: 1, Identifier: "access token", Value: []byte(`"x"`)},
			expErrs: []string{"id must be alphanumeric"},
		},
		"missing value": {
			asset:   Asset{Version: 1, Identifier: "profile"},
			expErrs: []string{"value must be set"},
		},
		"invalid json value": {
			asset:   Asset{Version: 1, Identifier: "profile", Value: []byte(`{nope`)},
			expErrs: []string{"value must be valid json"},
		},
		"multiple errors": {
			asset:   Asset{Version: 0, Identifier: "a b"},
			expErrs: []string{"version must be set", "id must be alphanumeric", "value must be set"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.asset.Validate()

			if len(tt.expErrs) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected errors %v, got nil", tt.expErrs)
			}
			for _, exp := range tt.expErrs {
				if !strings.Contains(err.Error(), exp) {
					t.Errorf("error %q does not contain %q", err.Error(), exp)
				}
			}
		})
	}
}
