package flights

// Carrier is an IATA airline designator.
type Carrier string

const (
	CarrierAmerican  Carrier = "AA"
	CarrierDelta     Carrier = "DL"
	CarrierUnited    Carrier = "UA"
	CarrierJetBlue   Carrier = "B6"
	CarrierSouthwest Carrier = "WN"
	CarrierAlaska    Carrier = "AS"
)

// TrackedCarriers is the allow-list airport_daily_carriers reports on.
var TrackedCarriers = [...]Carrier{
	CarrierAmerican,
	CarrierDelta,
	CarrierUnited,
	CarrierJetBlue,
	CarrierSouthwest,
	CarrierAlaska,
}

var carrierNames = map[Carrier]string{
	CarrierAmerican:  "American",
	CarrierDelta:     "Delta",
	CarrierUnited:    "United",
	CarrierJetBlue:   "JetBlue",
	CarrierSouthwest: "Southwest",
	CarrierAlaska:    "Alaska",
}

// Name returns the marketing name of a tracked carrier. Query results carry
// codes only.
func (c Carrier) Name() (string, bool) {
	name, ok := carrierNames[c]
	return name, ok
}

func (c Carrier) Tracked() bool {
	_, ok := carrierNames[c]
	return ok
}

func trackedCarrierArgs() []any {
	args := make([]any, 0, len(TrackedCarriers))
	for _, carrier := range TrackedCarriers {
		args = append(args, string(carrier))
	}
	return args
}
