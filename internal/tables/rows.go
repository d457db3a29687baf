package tables

import (
	"strings"
	"time"

	"github.com/npsdash/backend-go/internal/models"
)

const (
	InfoboxTable      = "park_infobox.csv"
	ParksTable        = "wiki_data.csv"
	VisitsTable       = "unit_visits.csv"
	AssignmentsTable  = "weather_data.csv"
	TemperaturesTable = "temp_data.csv"

	// noStation is the station cell written for parks without a resolved station.
	noStation = "none"
)

// infoboxRow keeps the scraped infobox column names.
type infoboxRow struct {
	ParkCode    string `csv:"park_code"`
	ParkName    string `csv:"park_name"`
	Coordinates string `csv:"Coordinates"`
	Area        string `csv:"Area"`
}

type parkRow struct {
	ParkCode  string    `csv:"park_code"`
	ParkName  string    `csv:"park_name"`
	WikiURL   string    `csv:"wiki_url"`
	NPSURL    string    `csv:"nps_url"`
	AreaAcres NullFloat `csv:"area_acres"`
	Lat       NullFloat `csv:"lat"`
	Lon       NullFloat `csv:"lon"`
}

func (r parkRow) park() models.Park {
	return models.Park{
		Code:      r.ParkCode,
		Name:      r.ParkName,
		WikiURL:   r.WikiURL,
		NPSURL:    r.NPSURL,
		AreaAcres: r.AreaAcres.Or(0),
		Location:  point(r.Lat, r.Lon),
	}
}

func newParkRow(p models.Park) parkRow {
	row := parkRow{
		ParkCode: p.Code,
		ParkName: p.Name,
		WikiURL:  p.WikiURL,
		NPSURL:   p.NPSURL,
		Lat:      NewNullFloat(p.Location.Latitude),
		Lon:      NewNullFloat(p.Location.Longitude),
	}
	if p.AreaAcres > 0 {
		row.AreaAcres = NewNullFloat(p.AreaAcres)
	}
	return row
}

func point(lat, lon NullFloat) models.Point {
	if !lat.Valid || !lon.Valid {
		return models.UndefinedPoint()
	}
	return models.Point{Latitude: lat.Float64, Longitude: lon.Float64}
}

type visitRow struct {
	ParkCode string    `csv:"park_code"`
	ParkName string    `csv:"park_name"`
	Date     Date      `csv:"date"`
	Visits   NullFloat `csv:"visits"`
}

type assignmentRow struct {
	ParkCode       string    `csv:"park_code"`
	Lat            NullFloat `csv:"lat"`
	Lon            NullFloat `csv:"lon"`
	NearestStation string    `csv:"nearest_station"`
	Status         string    `csv:"status"`
	Attempts       int       `csv:"attempts"`
	Error          string    `csv:"error"`
}

func newAssignmentRow(a models.Assignment) assignmentRow {
	station := a.StationID
	if station == "" {
		station = noStation
	}
	return assignmentRow{
		ParkCode:       a.ParkCode,
		Lat:            NewNullFloat(a.Location.Latitude),
		Lon:            NewNullFloat(a.Location.Longitude),
		NearestStation: station,
		Status:         string(a.Status),
		Attempts:       a.Attempts,
		Error:          a.Error,
	}
}

func (r assignmentRow) assignment() models.Assignment {
	a := models.Assignment{
		ParkCode: r.ParkCode,
		Location: point(r.Lat, r.Lon),
		Status:   models.Status(r.Status),
		Attempts: r.Attempts,
		Error:    r.Error,
	}
	station := strings.TrimSpace(r.NearestStation)

	// Older tables carry only the station cell: an id, "none", or an
	// "Error: ..." message. Unknown status strings are inferred the same way.
	if !a.Status.Valid() {
		switch {
		case !a.Location.Defined():
			a.Status = models.StatusSkipped
		case station == "" || station == noStation:
			a.Status = models.StatusNotFound
		case strings.HasPrefix(station, "Error"):
			a.Status = legacyErrorStatus(station)
			a.Error = station
		default:
			a.Status = models.StatusResolved
		}
	}
	if a.Status == models.StatusResolved {
		a.StationID = station
	}
	return a
}

// legacyErrorStatus maps an old "Error: ..." station cell to its status.
func legacyErrorStatus(msg string) models.Status {
	switch {
	case strings.HasPrefix(msg, "Error: No station found within bounds"):
		return models.StatusTooManyAttempts
	case strings.HasPrefix(msg, "Error: The request timed out"):
		return models.StatusTimeout
	case strings.HasPrefix(msg, "Error: Response was not valid JSON"):
		return models.StatusInvalidResponse
	default:
		return models.StatusUnavailable
	}
}

type temperatureRow struct {
	Station   string  `csv:"station"`
	Month     int     `csv:"date"`
	DataType  string  `csv:"datatype"`
	Value     float64 `csv:"value"`
	MonthAbbr string  `csv:"month_abbr"`
}

func newTemperatureRow(m models.MonthlyMean) temperatureRow {
	return temperatureRow{
		Station:   m.StationID,
		Month:     int(m.Month),
		DataType:  m.DataType,
		Value:     m.Value,
		MonthAbbr: m.Month.String()[:3],
	}
}

func (r temperatureRow) monthlyMean() models.MonthlyMean {
	return models.MonthlyMean{
		StationID: r.Station,
		Month:     time.Month(r.Month),
		DataType:  r.DataType,
		Value:     r.Value,
	}
}
