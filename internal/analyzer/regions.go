// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package analyzer

import (
	"sort"
	"strings"
	"unicode"
)

// Region is a coarse shipping region code.
type Region string

const (
	RegionNorthAmerica Region = "NA"
	RegionEurope       Region = "EU"
	RegionAsia         Region = "AS"
	RegionOceania      Region = "OC"
	RegionSouthAmerica Region = "SA"
	RegionAfrica       Region = "AF"
	RegionOther        Region = "OTHER"
)

// Regions lists every resolvable region.
var Regions = []Region{
	RegionNorthAmerica, RegionEurope, RegionAsia,
	RegionOceania, RegionSouthAmerica, RegionAfrica,
}

// Resolved reports whether r is a known region.
func (r Region) Resolved() bool {
	return r != "" && r != RegionOther
}

// Location is a parsed free-text location. Country is an ISO 3166-1 alpha-2
// code or empty.
type Location struct {
	Country string
	Region  Region
}

// Resolved reports whether the region is known.
func (l Location) Resolved() bool {
	return l.Region.Resolved()
}

var usStates = map[string]string{
	"al": "alabama", "ak": "alaska", "az": "arizona", "ar": "arkansas", "ca": "california",
	"co": "colorado", "ct": "connecticut", "de": "delaware", "fl": "florida", "ga": "georgia",
	"hi": "hawaii", "id": "idaho", "il": "illinois", "in": "indiana", "ia": "iowa",
	"ks": "kansas", "ky": "kentucky", "la": "louisiana", "me": "maine", "md": "maryland",
	"ma": "massachusetts", "mi": "michigan", "mn": "minnesota", "ms": "mississippi", "mo": "missouri",
	"mt": "montana", "ne": "nebraska", "nv": "nevada", "nh": "new hampshire", "nj": "new jersey",
	"nm": "new mexico", "ny": "new york", "nc": "north carolina", "nd": "north dakota", "oh": "ohio",
	"ok": "oklahoma", "or": "oregon", "pa": "pennsylvania", "ri": "rhode island", "sc": "south carolina",
	"sd": "south dakota", "tn": "tennessee", "tx": "texas", "ut": "utah", "vt": "vermont",
	"va": "virginia", "wa": "washington", "wv": "west virginia", "wi": "wisconsin", "wy": "wyoming",
	"dc": "district of columbia", "pr": "puerto rico",
}

var caProvinces = map[string]string{
	"ab": "alberta", "bc": "british columbia", "mb": "manitoba", "nb": "new brunswick",
	"nl": "newfoundland and labrador", "ns": "nova scotia", "nt": "northwest territories",
	"nu": "nunavut", "on": "ontario", "pe": "prince edward island", "qc": "quebec",
	"sk": "saskatchewan", "yt": "yukon",
}

var euCountries = map[string]string{
	"austria": "AT", "belgium": "BE", "bulgaria": "BG", "croatia": "HR", "cyprus": "CY",
	"czech republic": "CZ", "czechia": "CZ", "denmark": "DK", "estonia": "EE", "finland": "FI",
	"france": "FR", "germany": "DE", "deutschland": "DE", "greece": "GR", "hungary": "HU",
	"ireland": "IE", "italy": "IT", "latvia": "LV", "lithuania": "LT", "luxembourg": "LU",
	"malta": "MT", "netherlands": "NL", "the netherlands": "NL", "holland": "NL", "poland": "PL",
	"portugal": "PT", "romania": "RO", "slovakia": "SK", "slovenia": "SI", "spain": "ES",
	"espana": "ES", "españa": "ES", "sweden": "SE",
}

var otherCountries = map[string]string{
	"united states": "US", "united states of america": "US", "usa": "US",
	"canada": "CA", "mexico": "MX",
	"united kingdom": "GB", "uk": "GB", "great britain": "GB", "england": "GB",
	"scotland": "GB", "wales": "GB", "northern ireland": "GB",
	"switzerland": "CH", "norway": "NO", "iceland": "IS",
	"japan": "JP", "south korea": "KR", "korea": "KR", "china": "CN", "hong kong": "HK",
	"taiwan": "TW", "singapore": "SG", "india": "IN", "thailand": "TH", "indonesia": "ID",
	"philippines": "PH", "malaysia": "MY",
	"australia": "AU", "new zealand": "NZ", "new south wales": "AU", "queensland": "AU",
	"brazil": "BR", "argentina": "AR", "chile": "CL", "colombia": "CO", "peru": "PE", "uruguay": "UY",
	"south africa": "ZA", "nigeria": "NG", "kenya": "KE", "egypt": "EG", "morocco": "MA",
}

var countryRegions = map[string]Region{
	"US": RegionNorthAmerica, "CA": RegionNorthAmerica, "MX": RegionNorthAmerica,
	"GB": RegionEurope, "CH": RegionEurope, "NO": RegionEurope, "IS": RegionEurope,
	"JP": RegionAsia, "KR": RegionAsia, "CN": RegionAsia, "HK": RegionAsia, "TW": RegionAsia,
	"SG": RegionAsia, "IN": RegionAsia, "TH": RegionAsia, "ID": RegionAsia, "PH": RegionAsia,
	"MY": RegionAsia,
	"AU": RegionOceania, "NZ": RegionOceania,
	"BR": RegionSouthAmerica, "AR": RegionSouthAmerica, "CL": RegionSouthAmerica,
	"CO": RegionSouthAmerica, "PE": RegionSouthAmerica, "UY": RegionSouthAmerica,
	"ZA": RegionAfrica, "NG": RegionAfrica, "KE": RegionAfrica, "EG": RegionAfrica, "MA": RegionAfrica,
}

// locationAlias is one multi-word or single-word name resolving to a country.
type locationAlias struct {
	name    string
	country string
}

// aliases holds every name, longest first so "new mexico" wins over "mexico".
var aliases []locationAlias

// isoCodes maps lowercase alpha-2 codes (plus "uk") to countries.
var isoCodes map[string]string

func init() {
	for _, iso := range euCountries {
		countryRegions[iso] = RegionEurope
	}

	add := func(name, country string) {
		aliases = append(aliases, locationAlias{name: name, country: country})
	}
	for _, name := range usStates {
		add(name, "US")
	}
	for _, name := range caProvinces {
		add(name, "CA")
	}
	for name, iso := range euCountries {
		add(name, iso)
	}
	for name, iso := range otherCountries {
		add(name, iso)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i].name) != len(aliases[j].name) {
			return len(aliases[i].name) > len(aliases[j].name)
		}
		return aliases[i].name < aliases[j].name
	})

	isoCodes = make(map[string]string, len(countryRegions)+1)
	for iso := range countryRegions {
		isoCodes[strings.ToLower(iso)] = iso
	}
	isoCodes["uk"] = "GB"
}

// ParseLocation resolves a free-text location such as "Los Angeles, CA",
// "Toronto, Ontario" or "Berlin, Germany". It never fails: unrecognized text
// yields RegionOther with no country.
//
// Full names are matched first, longest name wins. Otherwise the last token
// is tried as a US state or Canadian province abbreviation (only when the
// text has more than one token) and then as an ISO country code.
func ParseLocation(raw string) Location {
	return ParseLocationNear(raw, "")
}

// ParseLocationNear is ParseLocation with a region hint for two-letter codes
// that are both a state or province and a country ("DE", "PE", "IN"). The
// country reading wins when its region is near; otherwise the state or
// province does.
func ParseLocationNear(raw string, near Region) Location {
	tokens := locationTokens(raw)
	if len(tokens) == 0 {
		return Location{Region: RegionOther}
	}

	padded := " " + strings.Join(tokens, " ") + " "
	for _, a := range aliases {
		if strings.Contains(padded, " "+a.name+" ") {
			return countryLocation(a.country)
		}
	}

	last := tokens[len(tokens)-1]
	iso, isISO := isoCodes[last]
	if len(tokens) > 1 {
		if isISO && near.Resolved() && near != RegionNorthAmerica && RegionOf(iso) == near {
			return countryLocation(iso)
		}
		if _, ok := usStates[last]; ok {
			return countryLocation("US")
		}
		if _, ok := caProvinces[last]; ok {
			return countryLocation("CA")
		}
	}
	if isISO {
		return countryLocation(iso)
	}

	return Location{Region: RegionOther}
}

// ParseRegion resolves a region code such as "EU" or "na".
func ParseRegion(s string) (Region, bool) {
	r := Region(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Regions {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// RegionOf returns the region of an ISO country code.
func RegionOf(country string) Region {
	if r, ok := countryRegions[strings.ToUpper(country)]; ok {
		return r
	}
	return RegionOther
}

func countryLocation(iso string) Location {
	return Location{Country: iso, Region: RegionOf(iso)}
}

func locationTokens(raw string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}
