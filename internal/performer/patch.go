package performer

// Patch is a partial performer update. Nil pointers and nil slices are absent;
// a non-nil empty slice clears the list. The JSON form is the catalog's
// PerformerUpdateInput.
type Patch struct {
	ID             string    `json:"id"`
	Name           *string   `json:"name,omitzero"`
	Disambiguation *string   `json:"disambiguation,omitzero"`
	AliasList      []string  `json:"alias_list,omitzero"`
	Gender         *string   `json:"gender,omitzero"`
	Birthdate      *string   `json:"birthdate,omitzero"`
	Ethnicity      *string   `json:"ethnicity,omitzero"`
	Country        *string   `json:"country,omitzero"`
	EyeColor       *string   `json:"eye_color,omitzero"`
	HairColor      *string   `json:"hair_color,omitzero"`
	HeightCm       *int      `json:"height_cm,omitzero"`
	Measurements   *string   `json:"measurements,omitzero"`
	FakeTits       *string   `json:"fake_tits,omitzero"`
	CareerLength   *string   `json:"career_length,omitzero"`
	Tattoos        *string   `json:"tattoos,omitzero"`
	Piercings      *string   `json:"piercings,omitzero"`
	URL            *string   `json:"url,omitzero"`
	URLs           []string  `json:"urls,omitzero"`
	Details        *string   `json:"details,omitzero"`
	StashIDs       []StashID `json:"stash_ids,omitzero"`
}

// Str returns a pointer to v for building patches.
func Str(v string) *string { return &v }

// Int returns a pointer to v for building patches.
func Int(v int) *int { return &v }

// IsEmpty reports whether the patch sets no field.
func (p *Patch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Fields lists the catalog field names set on the patch, in schema order.
func (p *Patch) Fields() []string {
	var out []string
	if p.Name != nil {
		out = append(out, "name")
	}
	if p.AliasList != nil {
		out = append(out, "alias_list")
	}
	for _, f := range scalarFields {
		if *f.patch(p) != nil {
			out = append(out, f.name)
		}
	}
	if p.HeightCm != nil {
		out = append(out, "height_cm")
	}
	if p.Tattoos != nil {
		out = append(out, "tattoos")
	}
	if p.Piercings != nil {
		out = append(out, "piercings")
	}
	if p.URL != nil {
		out = append(out, "url")
	}
	if p.URLs != nil {
		out = append(out, "urls")
	}
	if p.Details != nil {
		out = append(out, "details")
	}
	if p.StashIDs != nil {
		out = append(out, "stash_ids")
	}
	return out
}

// Merge copies every field set on other onto p, overriding p's values.
func (p *Patch) Merge(other Patch) {
	if other.Name != nil {
		p.Name = other.Name
	}
	if other.AliasList != nil {
		p.AliasList = other.AliasList
	}
	for _, f := range scalarFields {
		if v := *f.patch(&other); v != nil {
			*f.patch(p) = v
		}
	}
	if other.HeightCm != nil {
		p.HeightCm = other.HeightCm
	}
	if other.Tattoos != nil {
		p.Tattoos = other.Tattoos
	}
	if other.Piercings != nil {
		p.Piercings = other.Piercings
	}
	if other.URL != nil {
		p.URL = other.URL
	}
	if other.URLs != nil {
		p.URLs = other.URLs
	}
	if other.Details != nil {
		p.Details = other.Details
	}
	if other.StashIDs != nil {
		p.StashIDs = other.StashIDs
	}
}

// Apply writes every field set on the patch onto r.
func (p *Patch) Apply(r *Record) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.AliasList != nil {
		r.AliasList = append([]string(nil), p.AliasList...)
	}
	for _, f := range scalarFields {
		if v := *f.patch(p); v != nil {
			*f.record(r) = *v
		}
	}
	if p.HeightCm != nil {
		r.HeightCm = *p.HeightCm
	}
	if p.Tattoos != nil {
		r.Tattoos = *p.Tattoos
	}
	if p.Piercings != nil {
		r.Piercings = *p.Piercings
	}
	if p.URL != nil {
		r.URL = *p.URL
	}
	if p.URLs != nil {
		r.URLs = append([]string(nil), p.URLs...)
	}
	if p.Details != nil {
		r.Details = *p.Details
	}
	if p.StashIDs != nil {
		r.StashIDs = CopyStashIDs(p.StashIDs)
	}
}
