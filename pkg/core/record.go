package core

// Properties maps property names to values. A value is a string, or a
// []string when the owning property is a collection.
type Properties map[string]any

// Record is the object built for every record declaration in a document.
type Record struct {
	ID         *string    `json:"id,omitempty" yaml:"id,omitempty"`
	Properties Properties `json:"properties" yaml:"properties"`
	// Tags keeps insertion order; a tag is stored at most once.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// NewRecord allocates an empty record. A nil id leaves the record anonymous.
func NewRecord(id *string) *Record {
	r := &Record{Properties: make(Properties)}
	if id != nil {
		v := *id
		r.ID = &v
	}
	return r
}

// Identity returns the record id, or "" for anonymous records.
func (r *Record) Identity() string {
	if r.ID == nil {
		return ""
	}
	return *r.ID
}

// Has reports whether the property is set.
func (r *Record) Has(name string) bool {
	_, ok := r.Properties[name]
	return ok
}

// Get returns the raw property value.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.Properties[name]
	return v, ok
}

// Scalar returns the property as a string. Collections render their last item.
func (r *Record) Scalar(name string) string {
	switch v := r.Properties[name].(type) {
	case string:
		return v
	case []string:
		if len(v) == 0 {
			return ""
		}
		return v[len(v)-1]
	}
	return ""
}

// Items returns a copy of the property as a sequence. A scalar is returned
// as a one-element sequence.
func (r *Record) Items(name string) []string {
	switch v := r.Properties[name].(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	}
	return nil
}

// HasTag reports whether tag was added to the record.
func (r *Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (r *Record) ensure() {
	if r.Properties == nil {
		r.Properties = make(Properties)
	}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := NewRecord(r.ID)
	for k, v := range r.Properties {
		if items, ok := v.([]string); ok {
			cp := make([]string, len(items))
			copy(cp, items)
			out.Properties[k] = cp
			continue
		}
		out.Properties[k] = v
	}
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	return out
}
