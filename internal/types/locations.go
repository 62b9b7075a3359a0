package types

import "strings"

// CityInfo is the destination metadata needed to query the providers:
// the hotel-search city code, a display name and the geocode used for
// activity search.
type CityInfo struct {
	CityCode  string
	Name      string
	Country   string
	Latitude  float64
	Longitude float64
}

// knownDestinations maps airport and city IATA codes to destination
// metadata. Requests for codes outside this set are rejected as invalid
// input rather than guessed at.
var knownDestinations = map[string]CityInfo{
	"LON": {"LON", "London", "United Kingdom", 51.5074, -0.1278},
	"LHR": {"LON", "London", "United Kingdom", 51.5074, -0.1278},
	"LGW": {"LON", "London", "United Kingdom", 51.5074, -0.1278},
	"STN": {"LON", "London", "United Kingdom", 51.5074, -0.1278},
	"PAR": {"PAR", "Paris", "France", 48.8566, 2.3522},
	"CDG": {"PAR", "Paris", "France", 48.8566, 2.3522},
	"ORY": {"PAR", "Paris", "France", 48.8566, 2.3522},
	"NYC": {"NYC", "New York", "United States", 40.7128, -74.0060},
	"JFK": {"NYC", "New York", "United States", 40.7128, -74.0060},
	"LGA": {"NYC", "New York", "United States", 40.7128, -74.0060},
	"EWR": {"NYC", "New York", "United States", 40.7128, -74.0060},
	"LAX": {"LAX", "Los Angeles", "United States", 34.0522, -118.2437},
	"SFO": {"SFO", "San Francisco", "United States", 37.7749, -122.4194},
	"DXB": {"DXB", "Dubai", "United Arab Emirates", 25.2048, 55.2708},
	"IST": {"IST", "Istanbul", "Turkey", 41.0082, 28.9784},
	"FRA": {"FRA", "Frankfurt", "Germany", 50.1109, 8.6821},
	"MUC": {"MUC", "Munich", "Germany", 48.1351, 11.5820},
	"BER": {"BER", "Berlin", "Germany", 52.5200, 13.4050},
	"SXF": {"BER", "Berlin", "Germany", 52.5200, 13.4050},
	"AMS": {"AMS", "Amsterdam", "Netherlands", 52.3676, 4.9041},
	"MAD": {"MAD", "Madrid", "Spain", 40.4168, -3.7038},
	"BCN": {"BCN", "Barcelona", "Spain", 41.3851, 2.1734},
	"LIS": {"LIS", "Lisbon", "Portugal", 38.7223, -9.1393},
	"OPO": {"OPO", "Porto", "Portugal", 41.1579, -8.6291},
	"ROM": {"ROM", "Rome", "Italy", 41.9028, 12.4964},
	"FCO": {"ROM", "Rome", "Italy", 41.9028, 12.4964},
	"CIA": {"ROM", "Rome", "Italy", 41.9028, 12.4964},
	"MIL": {"MIL", "Milan", "Italy", 45.4642, 9.1900},
	"MXP": {"MIL", "Milan", "Italy", 45.4642, 9.1900},
	"VIE": {"VIE", "Vienna", "Austria", 48.2082, 16.3738},
	"PRG": {"PRG", "Prague", "Czech Republic", 50.0755, 14.4378},
	"ATH": {"ATH", "Athens", "Greece", 37.9838, 23.7275},
	"TYO": {"TYO", "Tokyo", "Japan", 35.6762, 139.6503},
	"NRT": {"TYO", "Tokyo", "Japan", 35.6762, 139.6503},
	"HND": {"TYO", "Tokyo", "Japan", 35.6762, 139.6503},
	"SIN": {"SIN", "Singapore", "Singapore", 1.3521, 103.8198},
	"BKK": {"BKK", "Bangkok", "Thailand", 13.7563, 100.5018},
	"SYD": {"SYD", "Sydney", "Australia", -33.8688, 151.2093},
	"TAS": {"TAS", "Tashkent", "Uzbekistan", 41.2995, 69.2401},
}

// LookupDestination resolves an airport or city IATA code to destination
// metadata. The second return is false for codes outside the known set.
func LookupDestination(code string) (CityInfo, bool) {
	info, ok := knownDestinations[strings.ToUpper(strings.TrimSpace(code))]
	return info, ok
}

// airlineNames maps carrier IATA codes to display names. Unknown codes
// fall back to the code itself.
var airlineNames = map[string]string{
	"TK": "Turkish Airlines",
	"LH": "Lufthansa",
	"AF": "Air France",
	"BA": "British Airways",
	"EK": "Emirates",
	"QR": "Qatar Airways",
	"KL": "KLM",
	"IB": "Iberia",
	"TP": "TAP Air Portugal",
	"AZ": "ITA Airways",
	"OS": "Austrian Airlines",
	"LX": "Swiss",
	"AA": "American Airlines",
	"DL": "Delta Air Lines",
	"UA": "United Airlines",
	"SQ": "Singapore Airlines",
	"NH": "All Nippon Airways",
	"JL": "Japan Airlines",
	"W6": "Wizz Air",
	"FR": "Ryanair",
	"U2": "easyJet",
	"FZ": "FlyDubai",
	"PC": "Pegasus Airlines",
	"HY": "Uzbekistan Airways",
}

// AirlineName returns the display name for a carrier IATA code.
func AirlineName(code string) string {
	if name, ok := airlineNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}
