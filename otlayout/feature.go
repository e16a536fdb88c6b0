package otlayout

import "github.com/npillmayer/glyphs/ot"

// Feature resolution: a script/language system selects a subset of the
// font's feature list; each feature record resolves to an ordered list of
// lookup indices.

// featuresFor returns the feature records applicable for a script and
// language, restricted to the enabled tags, in the order the font lists
// them. The language system's required feature, if any, is always included.
func featuresFor(gsub *ot.GSubTable, script, lang ot.Tag, enabled []ot.Tag) []ot.FeatureRecord {
	scriptRec := gsub.Script(script)
	if scriptRec == nil {
		tracer().Infof("font supports neither script %s nor DFLT", script)
		return nil
	}
	langSys := scriptRec.LangSysFor(lang)
	if langSys == nil {
		return nil
	}
	on := make(map[ot.Tag]bool, len(enabled))
	for _, tag := range enabled {
		on[tag] = true
	}
	indices := langSys.FeatureIndices
	required := -1
	if langSys.RequiredFeature != 0xFFFF {
		required = int(langSys.RequiredFeature)
		indices = append([]uint16{langSys.RequiredFeature}, indices...)
	}
	var records []ot.FeatureRecord
	for _, inx := range indices {
		if int(inx) >= len(gsub.Features) {
			continue // damaged fonts may carry stale feature indices
		}
		rec := gsub.Features[inx]
		if !on[rec.Tag] && int(inx) != required {
			continue
		}
		records = append(records, rec)
	}
	return records
}
