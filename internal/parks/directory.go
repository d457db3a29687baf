package parks

import (
	"strings"
	"unicode"

	"github.com/npsdash/backend-go/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"
)

const (
	wikiBaseURL = "https://en.wikipedia.org/wiki/"
	npsBaseURL  = "https://www.nps.gov/"
)

// Pages whose title does not follow the park name.
var wikiURLOverrides = map[string]string{
	"WWIM": wikiBaseURL + "National_World_War_I_Memorial_(Washington,_D.C.)",
	"GLAC": wikiBaseURL + "Glacier_National_Park_(U.S.)",
}

// Infobox areas that are missing or wrong on the wiki page.
var areaOverrides = map[string]float64{
	"WAMO": 106.01,
	"VALL": 89766,
	"DETO": 1346.91,
	"FLFO": 57.92,
}

var titleReplacer = strings.NewReplacer(" ", "_", "&", "and", "'", "%27")

// WikiURL is the English Wikipedia page for a park.
func WikiURL(code, name string) string {
	if u, ok := wikiURLOverrides[strings.ToUpper(code)]; ok {
		return u
	}
	return wikiBaseURL + asciiFold(titleReplacer.Replace(name))
}

func NPSURL(code string) string {
	return npsBaseURL + code + "/index.htm"
}

// asciiFold decomposes s and drops everything outside ASCII, so "Haleakalā"
// becomes "Haleakala".
func asciiFold(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FromInfobox builds a directory entry from raw infobox cells. Unparseable
// coordinates leave the location undefined and an unparseable area leaves
// it at zero.
func FromInfobox(row models.ParkInfobox) models.Park {
	p := models.Park{
		Code:     row.Code,
		Name:     row.Name,
		WikiURL:  WikiURL(row.Code, row.Name),
		NPSURL:   NPSURL(row.Code),
		Location: models.UndefinedPoint(),
	}

	if loc, err := ParseCoordinates(row.Coordinates); err != nil {
		log.Warn().Err(err).Str("park_code", row.Code).Msg("Park has no usable coordinates")
	} else {
		p.Location = loc
	}

	if area, ok := areaOverrides[strings.ToUpper(row.Code)]; ok {
		p.AreaAcres = area
	} else if area, err := ParseArea(row.Area); err != nil {
		log.Debug().Err(err).Str("park_code", row.Code).Msg("Park has no usable area")
	} else {
		p.AreaAcres = area
	}
	return p
}

// Directory converts infobox rows into the park table. Rows without a code,
// rows whose name is an "Error..." placeholder for a retired unit, and
// repeated codes are dropped.
func Directory(rows []models.ParkInfobox) []models.Park {
	seen := make(map[string]bool, len(rows))
	out := make([]models.Park, 0, len(rows))
	for _, row := range rows {
		row.Code = strings.TrimSpace(row.Code)
		row.Name = strings.TrimSpace(row.Name)
		if row.Code == "" || strings.HasPrefix(row.Name, "Error") || seen[row.Code] {
			continue
		}
		seen[row.Code] = true
		out = append(out, FromInfobox(row))
	}
	return out
}
