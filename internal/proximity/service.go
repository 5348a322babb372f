// Package proximity finds people with bookable availability near a
// geographic point. Candidates come from the graph's geospatial index; their
// schedules come from the relational store; the two are joined in memory.
package proximity

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/medconnect/graphd/internal/graph"
	"github.com/medconnect/graphd/internal/relational"
)

const (
	// DefaultRadiusKm is used when the request leaves the radius unset.
	DefaultRadiusKm = 10.0

	// MaxRadiusKm caps the search radius.
	MaxRadiusKm = 100.0

	// preferredWindowMin is the half-width of the preferred-time window.
	preferredWindowMin = 120
)

// SearchRequest describes one proximity-availability search.
type SearchRequest struct {
	Latitude  float64
	Longitude float64

	// RadiusKm defaults to 10 and is capped at 100.
	RadiusKm float64

	// SpecialtyID, when set, keeps only people with that specialty.
	SpecialtyID string

	// Date is the calendar day to search. Zero means today (UTC).
	Date time.Time

	// PreferredTime is an optional "HH:MM" anchor; slots further than two
	// hours from it are dropped and results sort by closeness to it.
	PreferredTime string
}

// Result is one person-workplace pair with open slots.
type Result struct {
	PersonID      string
	PersonName    string
	WorkplaceID   string
	WorkplaceName string
	City          string
	State         string
	DistanceKm    float64
	Slots         []string
}

// AvailabilityStore is the relational slice the search needs.
type AvailabilityStore interface {
	ActiveWindows(ctx context.Context, personIDs []string, dayOfWeek int) ([]relational.AvailabilityWindow, error)
	BookedTimes(ctx context.Context, personIDs []string, day time.Time) (map[string][]time.Time, error)
}

// Service performs proximity-availability searches.
type Service struct {
	client graph.Client
	store  AvailabilityStore
	logger *slog.Logger
}

// NewService creates a proximity search service.
func NewService(client graph.Client, store AvailabilityStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, store: store, logger: logger}
}

// candidate is one nearby person-workplace pair from the graph.
type candidate struct {
	personID       string
	personName     string
	workplaceID    string
	workplaceName  string
	city           string
	state          string
	distanceMeters float64
}

// SearchNearby runs the full search. No candidates in range yields an empty
// slice; a candidate without windows on the day is silently skipped.
func (s *Service) SearchNearby(ctx context.Context, req SearchRequest) ([]Result, error) {
	radius := req.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}
	if radius > MaxRadiusKm {
		radius = MaxRadiusKm
	}

	day := req.Date
	if day.IsZero() {
		day = time.Now().UTC()
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	candidates, err := s.nearbyCandidates(ctx, req, radius*1000)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []Result{}, nil
	}

	personIDs := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if !seen[c.personID] {
			seen[c.personID] = true
			personIDs = append(personIDs, c.personID)
		}
	}

	// The two relational reads are independent of each other.
	var windows []relational.AvailabilityWindow
	var booked map[string][]time.Time

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		windows, err = s.store.ActiveWindows(gctx, personIDs, int(day.Weekday()))
		return err
	})
	g.Go(func() error {
		var err error
		booked, err = s.store.BookedTimes(gctx, personIDs, day)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	windowsByPair := make(map[string][]relational.AvailabilityWindow)
	for _, w := range windows {
		key := w.PersonID + ":" + w.WorkplaceID
		windowsByPair[key] = append(windowsByPair[key], w)
	}

	bookedKeys := make(map[string]bool)
	for personID, times := range booked {
		for _, at := range times {
			bookedKeys[personID+":"+at.UTC().Format(time.RFC3339)] = true
		}
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		pairWindows := windowsByPair[c.personID+":"+c.workplaceID]
		if len(pairWindows) == 0 {
			continue
		}

		var slots []string
		for _, w := range pairWindows {
			for _, slot := range generateSlots(w.Start, w.End, w.SlotDurationMin) {
				if req.PreferredTime != "" {
					dist := timeToMinutes(slot) - timeToMinutes(req.PreferredTime)
					if dist < 0 {
						dist = -dist
					}
					if dist > preferredWindowMin {
						continue
					}
				}
				slotAt := day.Add(time.Duration(timeToMinutes(slot)) * time.Minute)
				if bookedKeys[c.personID+":"+slotAt.Format(time.RFC3339)] {
					continue
				}
				slots = append(slots, slot)
			}
		}
		if len(slots) == 0 {
			continue
		}

		results = append(results, Result{
			PersonID:      c.personID,
			PersonName:    c.personName,
			WorkplaceID:   c.workplaceID,
			WorkplaceName: c.workplaceName,
			City:          c.city,
			State:         c.state,
			DistanceKm:    math.Round(c.distanceMeters/1000*10) / 10,
			Slots:         slots,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if req.PreferredTime != "" {
			di := closestSlotDistance(results[i].Slots, req.PreferredTime)
			dj := closestSlotDistance(results[j].Slots, req.PreferredTime)
			if di != dj {
				return di < dj
			}
		}
		return results[i].DistanceKm < results[j].DistanceKm
	})
	return results, nil
}

func (s *Service) nearbyCandidates(ctx context.Context, req SearchRequest, radiusMeters float64) ([]candidate, error) {
	cypher := `MATCH (p:Person)-[:WORKS_AT_LOCATION]->(w:Workplace)
WHERE point.distance(w.location, point({latitude: $lat, longitude: $lon})) <= $radius
`
	params := map[string]any{
		"lat":    req.Latitude,
		"lon":    req.Longitude,
		"radius": radiusMeters,
	}
	if req.SpecialtyID != "" {
		cypher += "MATCH (p)-[:SPECIALIZES_IN]->(s:Specialty {extId: $specialtyId})\n"
		params["specialtyId"] = req.SpecialtyID
	}
	cypher += `RETURN p.extId AS personId,
       p.fullName AS personName,
       w.extId AS workplaceId,
       w.name AS workplaceName,
       w.city AS city,
       w.state AS state,
       point.distance(w.location, point({latitude: $lat, longitude: $lon})) AS distanceMeters
ORDER BY distanceMeters ASC`

	records, err := s.client.Read(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	out := make([]candidate, 0, len(records))
	for _, rec := range records {
		out = append(out, candidate{
			personID:       graph.AsString(rec["personId"]),
			personName:     graph.AsString(rec["personName"]),
			workplaceID:    graph.AsString(rec["workplaceId"]),
			workplaceName:  graph.AsString(rec["workplaceName"]),
			city:           graph.AsString(rec["city"]),
			state:          graph.AsString(rec["state"]),
			distanceMeters: graph.AsFloat64(rec["distanceMeters"]),
		})
	}
	return out, nil
}
