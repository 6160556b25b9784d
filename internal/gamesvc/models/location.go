package models

import "sort"

// provinceDistricts is the reference table used to validate registrations.
var provinceDistricts = map[string][]string{
	"Kigali City":       {"Gasabo", "Kicukiro", "Nyarugenge"},
	"Northern Province": {"Burera", "Gakenke", "Gicumbi", "Musanze", "Rulindo"},
	"Southern Province": {"Gisagara", "Huye", "Kamonyi", "Muhanga", "Nyamagabe", "Nyanza", "Nyaruguru", "Ruhango"},
	"Eastern Province":  {"Bugesera", "Gatsibo", "Kayonza", "Kirehe", "Ngoma", "Nyagatare", "Rwamagana"},
	"Western Province":  {"Karongi", "Ngororero", "Nyabihu", "Nyamasheke", "Rubavu", "Rusizi", "Rutsiro"},
}

var (
	Genders   = []string{"male", "female", "other", "prefer_not_to_say"}
	AgeGroups = []string{"10-14", "15-19", "20-24", "25+"}
)

type Province struct {
	Province  string   `json:"province"`
	Districts []string `json:"districts"`
}

// Provinces lists the reference table sorted by province name.
func Provinces() []Province {
	out := make([]Province, 0, len(provinceDistricts))
	for p, d := range provinceDistricts {
		out = append(out, Province{Province: p, Districts: append([]string(nil), d...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Province < out[j].Province })
	return out
}

// ValidLocation reports whether district belongs to province. A known province
// without a district is accepted; a district without a province is not.
func ValidLocation(province, district string) bool {
	if district == "" {
		return province == "" || provinceDistricts[province] != nil
	}
	for _, d := range provinceDistricts[province] {
		if d == district {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func ValidGender(g string) bool   { return g == "" || contains(Genders, g) }
func ValidAgeGroup(a string) bool { return a == "" || contains(AgeGroups, a) }
