package travel

import (
	"math"

	"github.com/appengine-ltd/wagon-trail/internal/config"
	"github.com/appengine-ltd/wagon-trail/internal/trail"
)

type Rules struct {
	FoodPerPersonPerDay float64
	MilesPerDay         float64
	PaceMultipliers     map[trail.Pace]float64
	RationFactors       map[trail.Rations]float64
	DiseaseChance       float64
	TrailLengthMiles    float64
}

func DefaultRules() Rules {
	return RulesFromConfig(config.Default().Travel)
}

func RulesFromConfig(c config.TravelConfig) Rules {
	c.ApplyDefaults()
	r := Rules{
		FoodPerPersonPerDay: c.FoodPerPersonPerDay,
		MilesPerDay:         c.MilesPerDay,
		PaceMultipliers:     make(map[trail.Pace]float64, len(c.PaceMultipliers)),
		RationFactors:       make(map[trail.Rations]float64, len(c.RationFactors)),
		DiseaseChance:       c.DiseaseChance,
		TrailLengthMiles:    c.TrailLengthMiles,
	}
	for name, v := range c.PaceMultipliers {
		if pace, ok := trail.ParsePace(name); ok {
			r.PaceMultipliers[pace] = v
		}
	}
	for name, v := range c.RationFactors {
		if rations, ok := trail.ParseRations(name); ok {
			r.RationFactors[rations] = v
		}
	}
	return r
}

type Contraction struct {
	Member  string        `json:"member"`
	Disease trail.Disease `json:"disease"`
}

type DayReport struct {
	Date       trail.Date    `json:"date"`
	FoodEaten  uint32        `json:"food_eaten"`
	Starving   bool          `json:"starving"`
	Miles      float64       `json:"miles"`
	Contracted []Contraction `json:"contracted,omitempty"`
	Treated    []Contraction `json:"treated,omitempty"`
	Improved   []string      `json:"improved,omitempty"`
	Died       []string      `json:"died,omitempty"`
}

// DailyFoodNeed is the pounds the living party eats per day at the current
// rations.
func (r Rules) DailyFoodNeed(s *trail.JourneyState) float64 {
	return float64(s.LivingCount()) * r.FoodPerPersonPerDay * r.rationFactor(s.Rations)
}

func (r Rules) DailyMiles(p trail.Pace) float64 {
	return r.MilesPerDay * r.paceMultiplier(p)
}

// AdvanceDay runs one day on the trail: the party eats, the wagon moves,
// health is rolled and the calendar turns. A party with nobody alive is
// left untouched.
func (r Rules) AdvanceDay(s *trail.JourneyState, rng Roller) DayReport {
	report := DayReport{Date: s.Date()}
	if s.LivingCount() == 0 {
		return report
	}
	alive := livingFlags(s)

	r.feedParty(s, &report)

	report.Miles = r.DailyMiles(s.Pace)
	s.MilesTraveled += report.Miles

	if s.Pace == trail.PaceResting {
		r.restParty(s, &report)
	}
	r.rollDisease(s, rng, &report)

	for i := range alive {
		m, _ := s.Member(i)
		if alive[i] && !m.IsAlive() {
			report.Died = append(report.Died, m.Name)
		}
	}

	s.AdvanceDate(1)
	s.Emit(trail.Event{
		Kind: trail.EventTravelDay,
		Date: report.Date,
		Attrs: map[string]any{
			"miles":      report.Miles,
			"food_eaten": report.FoodEaten,
			"starving":   report.Starving,
			"pace":       s.Pace.String(),
			"rations":    s.Rations.String(),
			"living":     s.LivingCount(),
		},
	})
	return report
}

func (r Rules) feedParty(s *trail.JourneyState, report *DayReport) {
	need := r.DailyFoodNeed(s)
	if need <= 0 {
		return
	}
	inv := s.Inventory()
	before := inv.QuantityOf(trail.ItemFood)
	if inv.UseFood(need) {
		report.FoodEaten = before - inv.QuantityOf(trail.ItemFood)
		return
	}
	inv.Remove(trail.ItemFood, before)
	report.FoodEaten = before
	report.Starving = true
	for i := 0; i < s.PartySize(); i++ {
		m, _ := s.Member(i)
		if m.IsAlive() {
			m.Degrade()
		}
	}
}

func (r Rules) restParty(s *trail.JourneyState, report *DayReport) {
	inv := s.Inventory()
	for i := 0; i < s.PartySize(); i++ {
		m, _ := s.Member(i)
		if !m.IsAlive() {
			continue
		}
		if len(m.Diseases) > 0 {
			if inv.UseMedicalSupply() {
				d := m.Diseases[0]
				m.Recover(d)
				report.Treated = append(report.Treated, Contraction{Member: m.Name, Disease: d})
			}
			continue
		}
		if report.Starving || m.Health == trail.HealthGood {
			continue
		}
		m.Improve()
		report.Improved = append(report.Improved, m.Name)
	}
}

// rollDisease gives each living member a chance to fall ill that grows with
// pace and shrinking rations. Grueling travel favours exhaustion.
func (r Rules) rollDisease(s *trail.JourneyState, rng Roller, report *DayReport) {
	if rng == nil || r.DiseaseChance <= 0 {
		return
	}
	chance := r.DiseaseChance * float64(strain(s.Pace, s.Rations)) / float64(maxStrain)
	if chance <= 0 {
		return
	}
	diseases := trail.AllDiseases()
	for i := 0; i < s.PartySize(); i++ {
		m, _ := s.Member(i)
		if !m.IsAlive() {
			continue
		}
		if rng.Float64() >= chance {
			continue
		}
		d := diseases[rng.IntN(len(diseases))]
		if s.Pace == trail.PaceGrueling && !m.HasDisease(trail.DiseaseExhaustion) {
			d = trail.DiseaseExhaustion
		}
		if m.HasDisease(d) {
			continue
		}
		m.Contract(d)
		report.Contracted = append(report.Contracted, Contraction{Member: m.Name, Disease: d})
	}
}

const maxStrain = 5

func strain(p trail.Pace, r trail.Rations) int {
	paceStrain := 0
	switch p {
	case trail.PaceSteady:
		paceStrain = 1
	case trail.PaceStrenuous:
		paceStrain = 2
	case trail.PaceGrueling:
		paceStrain = 3
	}
	return paceStrain + int(r)
}

func (r Rules) paceMultiplier(p trail.Pace) float64 {
	if v, ok := r.PaceMultipliers[p]; ok {
		return v
	}
	if p == trail.PaceResting {
		return 0
	}
	return 1
}

func (r Rules) rationFactor(x trail.Rations) float64 {
	if v, ok := r.RationFactors[x]; ok {
		return v
	}
	return 1
}

// RemainingMiles is the distance left to the end of the trail.
func (r Rules) RemainingMiles(s *trail.JourneyState) float64 {
	return math.Max(0, r.TrailLengthMiles-s.MilesTraveled)
}

func livingFlags(s *trail.JourneyState) []bool {
	flags := make([]bool, s.PartySize())
	for i := range flags {
		m, _ := s.Member(i)
		flags[i] = m.IsAlive()
	}
	return flags
}
