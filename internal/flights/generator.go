package flights

import (
	"fmt"
	"math/rand"
	"time"
)

var generatorAirports = []string{
	"ATL", "DFW", "DEN", "ORD", "LAX", "JFK", "LAS", "MCO", "MIA", "CLT",
	"SEA", "PHX", "EWR", "SFO", "IAH", "BOS", "FLL", "MSP", "LGA", "DTW",
}

// Carriers outside the tracked set, so allow-list filtering has something
// to exclude.
var generatorOtherCarriers = []string{"NK", "F9", "HA", "G4"}

// Generator produces deterministic synthetic flight records for local
// warehouses and tests.
type Generator struct {
	rnd *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

func (g *Generator) Day(date time.Time, flights int) []FlightRecord {
	day := date.UTC().Format("2006-01-02")
	records := make([]FlightRecord, 0, flights)
	for i := 0; i < flights; i++ {
		dep := g.pickAirport()
		arr := g.pickAirport()
		for arr == dep {
			arr = g.pickAirport()
		}
		carrier := g.pickCarrier()
		records = append(records, FlightRecord{
			FlightDate: day,
			Carrier:    carrier,
			FlightNum:  fmt.Sprintf("%s%d", carrier, 100+g.rnd.Intn(4900)),
			DepApt:     dep,
			ArrApt:     arr,
		})
	}
	return records
}

// Hubs at the front of the list are picked more often, which gives
// busy_airports a stable ranking to report.
func (g *Generator) pickAirport() string {
	a := g.rnd.Intn(len(generatorAirports))
	b := g.rnd.Intn(len(generatorAirports))
	if b < a {
		return generatorAirports[b]
	}
	return generatorAirports[a]
}

func (g *Generator) pickCarrier() string {
	if g.rnd.Intn(100) < 85 {
		return string(TrackedCarriers[g.rnd.Intn(len(TrackedCarriers))])
	}
	return generatorOtherCarriers[g.rnd.Intn(len(generatorOtherCarriers))]
}
