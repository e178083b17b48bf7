package performer

// scalarField binds one fill-if-empty text field to its record and patch slots.
type scalarField struct {
	name   string
	record func(*Record) *string
	patch  func(*Patch) **string
}

var scalarFields = []scalarField{
	{"disambiguation", func(r *Record) *string { return &r.Disambiguation }, func(p *Patch) **string { return &p.Disambiguation }},
	{"gender", func(r *Record) *string { return &r.Gender }, func(p *Patch) **string { return &p.Gender }},
	{"birthdate", func(r *Record) *string { return &r.Birthdate }, func(p *Patch) **string { return &p.Birthdate }},
	{"ethnicity", func(r *Record) *string { return &r.Ethnicity }, func(p *Patch) **string { return &p.Ethnicity }},
	{"country", func(r *Record) *string { return &r.Country }, func(p *Patch) **string { return &p.Country }},
	{"eye_color", func(r *Record) *string { return &r.EyeColor }, func(p *Patch) **string { return &p.EyeColor }},
	{"hair_color", func(r *Record) *string { return &r.HairColor }, func(p *Patch) **string { return &p.HairColor }},
	{"measurements", func(r *Record) *string { return &r.Measurements }, func(p *Patch) **string { return &p.Measurements }},
	{"fake_tits", func(r *Record) *string { return &r.FakeTits }, func(p *Patch) **string { return &p.FakeTits }},
	{"career_length", func(r *Record) *string { return &r.CareerLength }, func(p *Patch) **string { return &p.CareerLength }},
}

// ScalarFieldNames lists the fill-if-empty text fields in schema order.
func ScalarFieldNames() []string {
	names := make([]string, 0, len(scalarFields))
	for _, f := range scalarFields {
		names = append(names, f.name)
	}
	return names
}

// ScalarValue returns the named scalar text field of r.
func ScalarValue(r *Record, name string) (string, bool) {
	for _, f := range scalarFields {
		if f.name == name {
			return *f.record(r), true
		}
	}
	return "", false
}

// SetScalar sets the named scalar text field on p. Unknown names are ignored
// and reported as false.
func SetScalar(p *Patch, name, value string) bool {
	for _, f := range scalarFields {
		if f.name == name {
			*f.patch(p) = Str(value)
			return true
		}
	}
	return false
}

// FillScalars returns a patch that fills every scalar field blank on dst with
// the populated value from src, including height. Populated fields on dst are
// never touched, and details are free text that is never filled.
func FillScalars(dst, src *Record) Patch {
	var p Patch
	for _, f := range scalarFields {
		if IsBlank(*f.record(dst)) && !IsBlank(*f.record(src)) {
			*f.patch(&p) = Str(*f.record(src))
		}
	}
	if dst.HeightCm <= 0 && src.HeightCm > 0 {
		p.HeightCm = Int(src.HeightCm)
	}
	return p
}

// PopulatedFields counts the non-empty descriptive fields: the scalar table,
// height, tattoos, and piercings. The primary URL and details do not count.
func PopulatedFields(r *Record) int {
	n := 0
	for _, f := range scalarFields {
		if !IsBlank(*f.record(r)) {
			n++
		}
	}
	if r.HeightCm > 0 {
		n++
	}
	for _, v := range []string{r.Tattoos, r.Piercings} {
		if !IsBlank(v) {
			n++
		}
	}
	return n
}

// Score is the completeness score used to pick a keeper among duplicates.
func Score(r *Record) int {
	return PopulatedFields(r) + len(r.AliasList) + len(r.URLs) + len(r.StashIDs)
}
