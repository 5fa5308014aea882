package api

import (
	"fmt"
	"sort"
	"strings"
)

// CoreFeatures is a bit flag of WebAssembly Core specification features. See
// https://github.com/WebAssembly/spec/tree/main/proposals for proposals and
// their stabilization state.
//
// Note: zero is not a valid flag value: flags start at 1 so that a feature
// can be distinguished from an unset CoreFeatures value.
type CoreFeatures uint64

const (
	// CoreFeatureMutableGlobal allows globals to be mutable, per the
	// WebAssembly Core 1.0 (MVP) specification.
	CoreFeatureMutableGlobal CoreFeatures = 1 << iota

	// CoreFeatureSignExtensionOps adds sign-extension instructions, e.g.
	// i32.extend8_s.
	CoreFeatureSignExtensionOps

	// CoreFeatureMultiValue allows function types and block types to have
	// more than one result.
	CoreFeatureMultiValue

	// CoreFeatureNonTrappingFloatToIntConversion adds saturating
	// float-to-int truncation instructions (the 0xFC-prefixed trunc_sat
	// family), which never trap.
	CoreFeatureNonTrappingFloatToIntConversion

	// CoreFeatureBulkMemoryOperations adds memory.init, memory.copy,
	// memory.fill, table.init, table.copy, and the passive/active data and
	// element segment kinds, plus the data-count section.
	CoreFeatureBulkMemoryOperations

	// CoreFeatureReferenceTypes adds externref, table.get/table.set, and
	// the multi-table element section encodings.
	CoreFeatureReferenceTypes

	// CoreFeatureSIMD adds the v128 value type and the 0xFD-prefixed vector
	// instruction family.
	CoreFeatureSIMD
)

// CoreFeaturesV1 are features included in the WebAssembly Core 1.0 (MVP)
// specification.
const CoreFeaturesV1 = CoreFeatureMutableGlobal

// CoreFeaturesV2 are features included in the WebAssembly Core 2.0
// specification, in addition to CoreFeaturesV1.
const CoreFeaturesV2 = CoreFeaturesV1 |
	CoreFeatureSignExtensionOps |
	CoreFeatureMultiValue |
	CoreFeatureNonTrappingFloatToIntConversion |
	CoreFeatureBulkMemoryOperations |
	CoreFeatureReferenceTypes |
	CoreFeatureSIMD

var featureNames = map[CoreFeatures]string{
	CoreFeatureMutableGlobal:                   "mutable-global",
	CoreFeatureSignExtensionOps:                "sign-extension-ops",
	CoreFeatureMultiValue:                      "multi-value",
	CoreFeatureNonTrappingFloatToIntConversion: "nontrapping-float-to-int-conversion",
	CoreFeatureBulkMemoryOperations:            "bulk-memory-operations",
	CoreFeatureReferenceTypes:                  "reference-types",
	CoreFeatureSIMD:                            "simd",
}

// IsEnabled returns true if the given feature (or set of features) is
// enabled.
func (f CoreFeatures) IsEnabled(feature CoreFeatures) bool {
	return f&feature != 0
}

// SetEnabled sets the given feature (or set of features) to the supplied
// value and returns the updated flag set.
func (f CoreFeatures) SetEnabled(feature CoreFeatures, enabled bool) CoreFeatures {
	if enabled {
		return f | feature
	}
	return f &^ feature
}

// RequireEnabled returns an error naming one of the disabled features in
// feature (which one is unspecified when several are disabled), or nil if
// all are enabled.
func (f CoreFeatures) RequireEnabled(feature CoreFeatures) error {
	for bit, name := range featureNames {
		if feature.IsEnabled(bit) && !f.IsEnabled(bit) {
			return fmt.Errorf("feature %q is disabled", name)
		}
	}
	return nil
}

// String implements fmt.Stringer by listing enabled feature names, sorted
// and pipe-separated.
func (f CoreFeatures) String() string {
	var names []string
	for bit, name := range featureNames {
		if f.IsEnabled(bit) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}
