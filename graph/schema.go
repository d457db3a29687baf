package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/npsdash/backend-go/internal/parks"
)

// from extracts a typed source for a field resolver.
func from[T any](fn func(T) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		src, ok := p.Source.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected source type %T", p.Source)
		}
		return fn(src), nil
	}
}

func nullableFloat(f float64, ok bool) interface{} {
	if !ok {
		return nil
	}
	return f
}

func field(t graphql.Output, resolve graphql.FieldResolveFn) *graphql.Field {
	return &graphql.Field{Type: t, Resolve: resolve}
}

var (
	nonNullString = graphql.NewNonNull(graphql.String)
	nonNullFloat  = graphql.NewNonNull(graphql.Float)
	nonNullInt    = graphql.NewNonNull(graphql.Int)
)

// NewSchema builds the executable schema over r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	candidateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StationCandidate",
		Fields: graphql.Fields{
			"id":        field(nonNullString, from(func(c *models.Candidate) interface{} { return c.ID })),
			"name":      field(graphql.String, from(func(c *models.Candidate) interface{} { return c.Name })),
			"latitude":  field(nonNullFloat, from(func(c *models.Candidate) interface{} { return c.Latitude })),
			"longitude": field(nonNullFloat, from(func(c *models.Candidate) interface{} { return c.Longitude })),
		},
	})

	stationResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StationLookup",
		Fields: graphql.Fields{
			"status": field(nonNullString, from(func(s *StationResult) interface{} { return string(s.Status) })),
			"stationId": field(graphql.String, from(func(s *StationResult) interface{} {
				if s.StationID == "" {
					return nil
				}
				return s.StationID
			})),
			"attempts":   field(nonNullInt, from(func(s *StationResult) interface{} { return s.Attempts })),
			"halfWidths": field(graphql.NewList(nonNullFloat), from(func(s *StationResult) interface{} { return s.HalfWidths })),
			"candidate": field(candidateType, from(func(s *StationResult) interface{} {
				if s.Candidate == nil {
					return nil
				}
				return s.Candidate
			})),
			"error": field(graphql.String, from(func(s *StationResult) interface{} {
				if s.Error == "" {
					return nil
				}
				return s.Error
			})),
		},
	})

	assignmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StationAssignment",
		Fields: graphql.Fields{
			"stationId": field(graphql.String, from(func(a *models.Assignment) interface{} {
				if a.StationID == "" {
					return nil
				}
				return a.StationID
			})),
			"status":   field(nonNullString, from(func(a *models.Assignment) interface{} { return string(a.Status) })),
			"attempts": field(nonNullInt, from(func(a *models.Assignment) interface{} { return a.Attempts })),
			"error": field(graphql.String, from(func(a *models.Assignment) interface{} {
				if a.Error == "" {
					return nil
				}
				return a.Error
			})),
		},
	})

	monthlyTempType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MonthlyTemperature",
		Fields: graphql.Fields{
			"stationId": field(nonNullString, from(func(m models.MonthlyMean) interface{} { return m.StationID })),
			"month":     field(nonNullInt, from(func(m models.MonthlyMean) interface{} { return int(m.Month) })),
			"monthAbbr": field(nonNullString, from(func(m models.MonthlyMean) interface{} { return m.Month.String()[:3] })),
			"dataType":  field(nonNullString, from(func(m models.MonthlyMean) interface{} { return m.DataType })),
			"value":     field(nonNullFloat, from(func(m models.MonthlyMean) interface{} { return m.Value })),
		},
	})

	monthlyVisitsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MonthlyVisits",
		Fields: graphql.Fields{
			"month":  field(nonNullInt, from(func(m MonthlyVisits) interface{} { return m.Month })),
			"visits": field(nonNullFloat, from(func(m MonthlyVisits) interface{} { return m.Visits })),
		},
	})

	yearlyVisitsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "YearlyVisits",
		Fields: graphql.Fields{
			"year":   field(nonNullInt, from(func(y YearlyVisits) interface{} { return y.Year })),
			"visits": field(nonNullFloat, from(func(y YearlyVisits) interface{} { return y.Visits })),
		},
	})

	yearRange := graphql.FieldConfigArgument{
		"from": &graphql.ArgumentConfig{Type: nonNullInt},
		"to":   &graphql.ArgumentConfig{Type: nonNullInt},
	}

	parkType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Park",
		Fields: graphql.Fields{
			"code":    field(nonNullString, from(func(p models.Park) interface{} { return p.Code })),
			"name":    field(nonNullString, from(func(p models.Park) interface{} { return p.Name })),
			"wikiUrl": field(graphql.String, from(func(p models.Park) interface{} { return p.WikiURL })),
			"npsUrl":  field(graphql.String, from(func(p models.Park) interface{} { return p.NPSURL })),
			"areaAcres": field(graphql.Float, from(func(p models.Park) interface{} {
				return nullableFloat(p.AreaAcres, p.AreaAcres > 0)
			})),
			"latitude": field(graphql.Float, from(func(p models.Park) interface{} {
				return nullableFloat(p.Location.Latitude, p.Location.Defined())
			})),
			"longitude": field(graphql.Float, from(func(p models.Park) interface{} {
				return nullableFloat(p.Location.Longitude, p.Location.Defined())
			})),
			"station": &graphql.Field{
				Type: assignmentType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					park := p.Source.(models.Park)
					a, err := r.Assignment(p.Context, park.Code)
					if a == nil || err != nil {
						return nil, err
					}
					return a, nil
				},
			},
			"annualVisits": &graphql.Field{
				Type: graphql.Float,
				Args: yearRange,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					park := p.Source.(models.Park)
					return nullableFloat(r.AnnualVisits(park.Code, p.Args["from"].(int), p.Args["to"].(int))), nil
				},
			},
			"visitsPerAcre": &graphql.Field{
				Type: graphql.Float,
				Args: yearRange,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					park := p.Source.(models.Park)
					avg, ok := r.AnnualVisits(park.Code, p.Args["from"].(int), p.Args["to"].(int))
					if !ok {
						return nil, nil
					}
					return nullableFloat(parks.VisitsPerAcre(avg, park.AreaAcres)), nil
				},
			},
			"yearlyVisits": &graphql.Field{
				Type: graphql.NewList(yearlyVisitsType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.YearlyVisits(p.Source.(models.Park).Code), nil
				},
			},
			"monthlyVisits": &graphql.Field{
				Type: graphql.NewList(monthlyVisitsType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.MonthlyVisits(p.Source.(models.Park).Code), nil
				},
			},
		},
	})

	parkDistanceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ParkDistance",
		Fields: graphql.Fields{
			"park":       field(graphql.NewNonNull(parkType), from(func(d parks.Ranked) interface{} { return d.Park })),
			"distanceKm": field(nonNullFloat, from(func(d parks.Ranked) interface{} { return d.DistanceKm })),
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"park": &graphql.Field{
				Type: parkType,
				Args: graphql.FieldConfigArgument{
					"code": &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					park, err := r.Park(p.Context, p.Args["code"].(string))
					if park == nil || err != nil {
						return nil, err
					}
					return *park, nil
				},
			},
			"parks": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(parkType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Parks(p.Context), nil
				},
			},
			"parksNear": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(parkDistanceType))),
				Args: graphql.FieldConfigArgument{
					"lat":   &graphql.ArgumentConfig{Type: nonNullFloat},
					"lon":   &graphql.ArgumentConfig{Type: nonNullFloat},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 5},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.ParksNear(p.Context, p.Args["lat"].(float64), p.Args["lon"].(float64), p.Args["limit"].(int))
				},
			},
			"monthlyTemps": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(monthlyTempType))),
				Args: graphql.FieldConfigArgument{
					"stationId": &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.MonthlyTemps(p.Context, p.Args["stationId"].(string)), nil
				},
			},
			"nearestStation": &graphql.Field{
				Type: graphql.NewNonNull(stationResultType),
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: nonNullFloat},
					"lon": &graphql.ArgumentConfig{Type: nonNullFloat},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.NearestStation(p.Context, p.Args["lat"].(float64), p.Args["lon"].(float64))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}
