package stashbox

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"performersync/internal/performer"
	"performersync/internal/textutil"
)

// Text decodes a registry value that may arrive as a string, a number, or a
// {"date": ...} object into its trimmed string form. JSON null decodes to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
	case '{':
		var obj struct {
			Date string `json:"date"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(obj.Date))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = Text(n.String())
	}
	return nil
}

// String returns the decoded value.
func (t Text) String() string { return string(t) }

// Int parses the value as a positive integer. Anything else reports false.
func (t Text) Int() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(t)))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// URL is a typed profile link.
type URL struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Performer is a registry record. Search and find-by-id populate only ID,
// Name, and Aliases; FindPerformerFull populates the profile.
type Performer struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Disambiguation  string              `json:"disambiguation"`
	Aliases         []string            `json:"aliases"`
	Gender          Text                `json:"gender"`
	BirthDate       Text                `json:"birth_date"`
	Ethnicity       Text                `json:"ethnicity"`
	Country         Text                `json:"country"`
	EyeColor        Text                `json:"eye_color"`
	HairColor       Text                `json:"hair_color"`
	Height          Text                `json:"height"`
	CupSize         Text                `json:"cup_size"`
	BandSize        Text                `json:"band_size"`
	WaistSize       Text                `json:"waist_size"`
	HipSize         Text                `json:"hip_size"`
	BreastType      Text                `json:"breast_type"`
	CareerStartYear Text                `json:"career_start_year"`
	CareerEndYear   Text                `json:"career_end_year"`
	Tattoos         []performer.BodyMod `json:"tattoos"`
	Piercings       []performer.BodyMod `json:"piercings"`
	URLs            []URL               `json:"urls"`
}

// MatchesTerm reports whether the record's name or any alias equals term,
// ignoring case and surrounding whitespace.
func (p *Performer) MatchesTerm(term string) bool {
	if textutil.Key(term) == "" {
		return false
	}
	if textutil.EqualFold(p.Name, term) {
		return true
	}
	for _, alias := range p.Aliases {
		if textutil.EqualFold(alias, term) {
			return true
		}
	}
	return false
}

// HomeURL returns the first link typed HOME, else the first link.
func (p *Performer) HomeURL() string {
	for _, u := range p.URLs {
		if strings.EqualFold(strings.TrimSpace(u.Type), "HOME") {
			if v := strings.TrimSpace(u.URL); v != "" {
				return v
			}
		}
	}
	if len(p.URLs) > 0 {
		return strings.TrimSpace(p.URLs[0].URL)
	}
	return ""
}

// URLList returns the profile links in registry order.
func (p *Performer) URLList() []string {
	out := make([]string, 0, len(p.URLs))
	for _, u := range p.URLs {
		out = append(out, u.URL)
	}
	return out
}
