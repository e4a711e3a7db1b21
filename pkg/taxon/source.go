package taxon

// SourceEnvelope is the response shape of the external taxonomy
// source: GET {base}/{id} returns the record for id together with, for
// subtree initialization, related records.
type SourceEnvelope struct {
	Results []SourceRecord `json:"results"`
}

// SourceChild is a child declaration inside a source record; only the
// id matters, the child's own record is fetched later by the
// pending-children queue.
type SourceChild struct {
	ID int64 `json:"id"`
}

// SourcePhoto carries the representative photo of a record.
type SourcePhoto struct {
	MediumURL string `json:"medium_url"`
}

// SourceRecord is one taxon as served by the external source.
type SourceRecord struct {
	ID                  int64         `json:"id"`
	Rank                string        `json:"rank"`
	ParentID            int64         `json:"parent_id"`
	Ancestry            string        `json:"ancestry"`
	Children            []SourceChild `json:"children"`
	DefaultPhoto        *SourcePhoto  `json:"default_photo"`
	Name                string        `json:"name"`
	PreferredCommonName string        `json:"preferred_common_name"`
	WikipediaSummary    string        `json:"wikipedia_summary"`
	WikipediaURL        string        `json:"wikipedia_url"`
	ConservationStatus  string        `json:"conservation_status"`
	Extinct             bool          `json:"extinct"`
}

// ChildIDs returns the external ids of the record's declared children.
func (r *SourceRecord) ChildIDs() []int64 {
	res := make([]int64, 0, len(r.Children))
	for _, c := range r.Children {
		if c.ID > 0 {
			res = append(res, c.ID)
		}
	}
	return res
}

// PhotoURL returns the medium photo URL or an empty string.
func (r *SourceRecord) PhotoURL() string {
	if r.DefaultPhoto == nil {
		return ""
	}
	return r.DefaultPhoto.MediumURL
}
