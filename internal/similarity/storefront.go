package similarity

import "strings"

var isoToStorefront = map[string]string{
	"us": "us", "gb": "gb", "ca": "ca", "mx": "mx", "br": "br",
	"ar": "ar", "ie": "ie", "fr": "fr", "de": "de", "es": "es",
	"it": "it", "nl": "nl", "se": "se", "no": "no", "pl": "pl",
	"au": "au", "nz": "nz", "jp": "jp", "kr": "kr", "in": "in",
	"cn": "cn", "ru": "ru", "za": "za", "eg": "eg", "ng": "ng",
	"cz": "cz", "ir": "ir", "vn": "vn", "bo": "bo", "tz": "tz",
}

var nameToStorefront = map[string]string{
	"United States of America": "us",
	"United States":            "us",
	"USA":                      "us",
	"Canada":                   "ca",
	"Mexico":                   "mx",
	"Brazil":                   "br",
	"Argentina":                "ar",
	"England":                  "gb",
	"Scotland":                 "gb",
	"Wales":                    "gb",
	"Northern Ireland":         "gb",
	"United Kingdom":           "gb",
	"Ireland":                  "ie",
	"France":                   "fr",
	"Germany":                  "de",
	"Spain":                    "es",
	"Italy":                    "it",
	"Netherlands":              "nl",
	"Sweden":                   "se",
	"Norway":                   "no",
	"Poland":                   "pl",
	"Australia":                "au",
	"New Zealand":              "nz",
	"Japan":                    "jp",
	"South Korea":              "kr",
	"India":                    "in",
	"China":                    "cn",
	"Russia":                   "ru",
	"Russian Federation":       "ru",
	"South Africa":             "za",
	"Egypt":                    "eg",
	"Nigeria":                  "ng",
	"Czechia":                  "cz",
	"Iran":                     "ir",
	"Viet Nam":                 "vn",
	"Bolivia":                  "bo",
	"Tanzania":                 "tz",
}

// Storefront resolves a chart storefront from an ISO country code (only the
// first two characters are read) or, failing that, a country display name.
func Storefront(code, name string) (string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) > 2 {
		code = code[:2]
	}
	if sf, ok := isoToStorefront[code]; ok {
		return sf, true
	}
	if sf, ok := nameToStorefront[strings.TrimSpace(name)]; ok {
		return sf, true
	}
	return "", false
}
