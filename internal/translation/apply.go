package translation

// Apply returns a translated copy of doc. Only slots whose key maps to a non-empty
// value are replaced; doc itself is never modified.
func Apply(doc Document, mapping map[string]string) Bundle {
	out := doc.clone()
	if len(mapping) > 0 {
		walkDocument(out, func(s slot) {
			v := mapping[s.key]
			if v == "" {
				return
			}
			if _, ok := s.get(); ok {
				s.set(v)
			}
		})
	}
	return Bundle{
		Structure:     out.Structure,
		CoverSettings: out.CoverSettings,
		Settings:      out.Settings,
	}
}
