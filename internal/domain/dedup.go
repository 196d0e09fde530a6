package domain

// DedupIndex maps a file name to the DateTime of its recorded feature. A
// later record for the same name replaces the earlier one, so at most one
// DateTime is tracked per name.
type DedupIndex struct {
	seen map[string]string
}

// NewDedupIndex indexes every feature already in c.
func NewDedupIndex(c FeatureCollection) *DedupIndex {
	idx := &DedupIndex{seen: make(map[string]string, len(c.Features))}
	for _, f := range c.Features {
		idx.Record(f)
	}
	return idx
}

// IsDuplicate reports whether name was recorded with exactly dateTime.
func (d *DedupIndex) IsDuplicate(name, dateTime string) bool {
	dt, ok := d.seen[name]
	return ok && dt == dateTime
}

// Record indexes f.
func (d *DedupIndex) Record(f Feature) {
	d.seen[f.Properties.Name] = f.Properties.DateTime
}

// Len returns the number of distinct names.
func (d *DedupIndex) Len() int { return len(d.seen) }
