package domain

import "strings"

// NationwideSet is the named location set that expands to the full
// city catalogue.
const NationwideSet = "england"

// englandRegions is the nationwide search catalogue, grouped by region.
// Order is stable so nationwide runs fan out deterministically.
var englandRegions = []struct {
	Region string
	Cities []string
}{
	{"North West", []string{"Liverpool", "Manchester", "Preston", "Blackpool", "Bolton", "Wigan"}},
	{"North East", []string{"Newcastle", "Sunderland", "Middlesbrough", "Durham"}},
	{"Yorkshire", []string{"Leeds", "Sheffield", "Bradford", "Hull", "York", "Doncaster"}},
	{"East Midlands", []string{"Nottingham", "Leicester", "Derby", "Lincoln"}},
	{"West Midlands", []string{"Birmingham", "Coventry", "Wolverhampton", "Stoke-on-Trent"}},
	{"East of England", []string{"Norwich", "Cambridge", "Ipswich", "Peterborough"}},
	{"South East", []string{"Brighton", "Southampton", "Portsmouth", "Reading", "Oxford", "Milton Keynes"}},
	{"South West", []string{"Bristol", "Plymouth", "Exeter", "Bournemouth", "Gloucester"}},
	{"London", []string{"Croydon", "Barking", "Dagenham"}},
}

// EnglandLocations returns the nationwide city catalogue in region order.
func EnglandLocations() []string {
	var cities []string
	for _, r := range englandRegions {
		cities = append(cities, r.Cities...)
	}
	return cities
}

// ResolveLocations expands named sets and removes duplicates while
// preserving first-seen order.
func ResolveLocations(names []string) []string {
	seen := make(map[string]bool)
	var resolved []string

	add := func(name string) {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		resolved = append(resolved, strings.TrimSpace(name))
	}

	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), NationwideSet) {
			for _, city := range EnglandLocations() {
				add(city)
			}
			continue
		}
		add(name)
	}

	return resolved
}
