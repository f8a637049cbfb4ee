package exemplar

import (
	"maps"
	"slices"

	"github.com/dgallion1/docbrief/internal/document"
)

// FallbackPreset is used when a requested preset does not exist.
const FallbackPreset = "brief"

var presets = map[string]*document.ExemplarDocument{
	"detailed": {
		Name: "detailed",
		Sections: map[document.Category]string{
			document.Water:          "Comprehensive analysis of water-related issues including detailed flood data, port operations metrics, and infrastructure status...",
			document.Fire:           "Detailed fire services report including station locations, response times, equipment inventory, and wildfire incident analysis...",
			document.Administrative: "Complete administrative overview including staff counts, facility status, training metrics, and operational protocols...",
			document.Other:          "Detailed miscellaneous information including all auxiliary systems, community programs, and external partnerships...",
		},
	},
	"brief": {
		Name: "brief",
		Sections: map[document.Category]string{
			document.Water:          "Key water-related highlights and critical flood/port updates.",
			document.Fire:           "Essential fire service updates and major incident summary.",
			document.Administrative: "Core administrative metrics and key operational changes.",
			document.Other:          "Brief overview of other significant developments.",
		},
	},
	"default": {
		Name: "default",
		Sections: map[document.Category]string{
			document.Water: "The region faces significant water-related challenges. Recent flooding has affected coastal areas, " +
				"particularly around Port Harbor where infrastructure damage was reported at three major terminals. " +
				"Flood control measures implemented last year have shown mixed results. " +
				"The port authority has initiated a $2M project to upgrade flood barriers.",
			document.Fire: "Fire services have been enhanced with two new stations in the western district. " +
				"The wildfire response team conducted 12 major operations this period, successfully containing fires " +
				"before they reached residential areas. Station equipment upgrades are ongoing, with 5 new trucks deployed.",
			document.Administrative: "Current staff levels include 342 full-time employees across 15 facilities. " +
				"Administrative support services have been consolidated into 3 main centers. " +
				"Employee training programs reached 89% completion rate. " +
				"New establishment records show 27 auxiliary offices operating under revised protocols.",
			document.Other: "Miscellaneous developments include the implementation of new software systems and updated " +
				"security protocols. Various community engagement initiatives were launched. " +
				"External contractor relationships have been reviewed and updated per standard procedures.",
		},
	},
}

// Names returns the preset names, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(presets))
}

// Get returns a copy of the named preset.
func Get(name string) (*document.ExemplarDocument, bool) {
	p, ok := presets[name]
	if !ok {
		return nil, false
	}
	return clone(p), true
}

// Lookup returns the named preset, or the brief preset for unknown names.
func Lookup(name string) *document.ExemplarDocument {
	if p, ok := Get(name); ok {
		return p
	}
	p, _ := Get(FallbackPreset)
	return p
}

func clone(e *document.ExemplarDocument) *document.ExemplarDocument {
	return &document.ExemplarDocument{
		Name:     e.Name,
		Sections: maps.Clone(e.Sections),
		Order:    slices.Clone(e.Order),
	}
}
