package models

import (
	"sort"
	"time"
)

// Reading is a single value from the monthly-readings service.
type Reading struct {
	Date     time.Time
	DataType string
	Value    float64
}

// MonthKey identifies one (calendar month, reading type) bucket.
type MonthKey struct {
	Month    time.Month
	DataType string
}

// MonthlyMeans maps (month, reading type) to the mean observed value.
// Months without observations are absent.
type MonthlyMeans map[MonthKey]float64

// MonthlyMean is a flattened MonthlyMeans entry.
type MonthlyMean struct {
	StationID string     `json:"stationId"`
	Month     time.Month `json:"month"`
	DataType  string     `json:"dataType"`
	Value     float64    `json:"value"`
}

// Rows flattens the means ordered by month then reading type.
func (m MonthlyMeans) Rows(stationID string) []MonthlyMean {
	rows := make([]MonthlyMean, 0, len(m))
	for k, v := range m {
		rows = append(rows, MonthlyMean{
			StationID: stationID,
			Month:     k.Month,
			DataType:  k.DataType,
			Value:     v,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].DataType < rows[j].DataType
	})
	return rows
}
