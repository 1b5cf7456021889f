package proximity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Model identifies an accessory subtype as read from the advertisement.
type Model uint16

// Model identifiers as they appear when read with the layout's byte order.
// Big-endian readings come from the continuity layout, little-endian ones
// from the compact layout.
const (
	ModelAirPodsPro2         Model = 0x1420
	ModelAirPodsPro2USBC     Model = 0x1520
	ModelAirPods             Model = 0x2002
	ModelAirPods2            Model = 0x200F
	ModelAirPodsPro          Model = 0x200E
	ModelAirPods3            Model = 0x2014
	ModelAirPodsPro2Compact  Model = 0x2024
	ModelAirPodsMax          Model = 0x2013
	ModelAirPodsProLegacy    Model = 0x6465
	ModelAirPodsProAlternate Model = 0x4ABF
	ModelAirPodsBE           Model = 0x0220
	ModelAirPods2BE          Model = 0x0F20
	ModelAirPodsProBE        Model = 0x0E20
	ModelAirPods3BE          Model = 0x1320
	ModelAirPodsMaxBE        Model = 0x0A20
)

var modelNames = map[Model]string{
	ModelAirPodsPro2:         "AirPods Pro 2",
	ModelAirPodsPro2USBC:     "AirPods Pro 2 (USB-C)",
	ModelAirPods:             "AirPods",
	ModelAirPods2:            "AirPods 2",
	ModelAirPodsPro:          "AirPods Pro",
	ModelAirPods3:            "AirPods 3",
	ModelAirPodsPro2Compact:  "AirPods Pro 2",
	ModelAirPodsMax:          "AirPods Max",
	ModelAirPodsProLegacy:    "AirPods Pro",
	ModelAirPodsProAlternate: "AirPods Pro",
	ModelAirPodsBE:           "AirPods",
	ModelAirPods2BE:          "AirPods 2",
	ModelAirPodsProBE:        "AirPods Pro",
	ModelAirPods3BE:          "AirPods 3",
	ModelAirPodsMaxBE:        "AirPods Max",
}

// Name returns a human-readable model name.
func (m Model) Name() string {
	if name, ok := modelNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%04X)", uint16(m))
}

// IsKnown reports whether the model is part of the supported earbud family.
func (m Model) IsKnown() bool {
	_, ok := modelNames[m]
	return ok
}

func (m Model) String() string {
	return fmt.Sprintf("0x%04X", uint16(m))
}

// KnownModels returns every supported model identifier in ascending order.
func KnownModels() []Model {
	models := make([]Model, 0, len(modelNames))
	for m := range modelNames {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

// ParseModels resolves a model reference: either a hexadecimal identifier such as
// "0x1420" or a model name such as "AirPods Pro", which matches every identifier
// sharing that name.
func ParseModels(ref string) ([]Model, error) {
	ref = strings.TrimSpace(ref)
	if hex, ok := strings.CutPrefix(strings.ToLower(ref), "0x"); ok {
		v, err := strconv.ParseUint(hex, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid model identifier %q: %w", ref, err)
		}
		return []Model{Model(v)}, nil
	}

	var out []Model
	for _, m := range KnownModels() {
		if strings.EqualFold(modelNames[m], ref) {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("unknown model %q", ref)
	}
	return out, nil
}
