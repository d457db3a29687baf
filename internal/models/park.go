package models

import (
	"fmt"
	"time"
)

// Park is one NPS unit from the park directory table.
type Park struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	WikiURL   string  `json:"wikiUrl,omitempty"`
	NPSURL    string  `json:"npsUrl,omitempty"`
	AreaAcres float64 `json:"areaAcres,omitempty"`
	Location  Point   `json:"location"`
}

func (p Park) Validate() error {
	if p.Code == "" {
		return fmt.Errorf("park code is required")
	}
	return nil
}

// Assignment records the station lookup outcome for a park.
type Assignment struct {
	ParkCode  string `json:"parkCode"`
	Location  Point  `json:"location"`
	StationID string `json:"stationId,omitempty"`
	Status    Status `json:"status"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
}

// Visit is a monthly visitation count for a park.
type Visit struct {
	ParkCode string    `json:"parkCode"`
	ParkName string    `json:"parkName"`
	Date     time.Time `json:"date"`
	Visits   float64   `json:"visits"`
}

// ParkInfobox holds the raw infobox cells scraped from a park's wiki page.
type ParkInfobox struct {
	Code        string
	Name        string
	Coordinates string
	Area        string
}
