package trail

import "fmt"

// HealthStatus is a ranked ladder; lower values are healthier.
type HealthStatus int

const (
	HealthGood HealthStatus = iota
	HealthFair
	HealthPoor
	HealthVeryPoor
	HealthDeceased
)

var healthNames = [...]string{
	HealthGood:     "good",
	HealthFair:     "fair",
	HealthPoor:     "poor",
	HealthVeryPoor: "very_poor",
	HealthDeceased: "deceased",
}

var healthLabels = [...]string{
	HealthGood:     "Good",
	HealthFair:     "Fair",
	HealthPoor:     "Poor",
	HealthVeryPoor: "Very Poor",
	HealthDeceased: "Deceased",
}

func (h HealthStatus) Valid() bool {
	return h >= HealthGood && h <= HealthDeceased
}

func (h HealthStatus) String() string {
	if !h.Valid() {
		return fmt.Sprintf("health(%d)", int(h))
	}
	return healthNames[h]
}

func (h HealthStatus) Label() string {
	if !h.Valid() {
		return h.String()
	}
	return healthLabels[h]
}

func (h HealthStatus) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("invalid health status: %d", int(h))
	}
	return []byte(healthNames[h]), nil
}

func (h *HealthStatus) UnmarshalText(text []byte) error {
	for i, name := range healthNames {
		if name == string(text) {
			*h = HealthStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown health status: %q", text)
}

type Disease string

const (
	DiseaseCholera    Disease = "cholera"
	DiseaseDysentery  Disease = "dysentery"
	DiseaseMeasles    Disease = "measles"
	DiseaseTyphoid    Disease = "typhoid"
	DiseaseFever      Disease = "fever"
	DiseaseBrokenLeg  Disease = "broken_leg"
	DiseaseBrokenArm  Disease = "broken_arm"
	DiseaseExhaustion Disease = "exhaustion"
	DiseaseSnakebite  Disease = "snakebite"
)

func AllDiseases() []Disease {
	return []Disease{
		DiseaseCholera,
		DiseaseDysentery,
		DiseaseMeasles,
		DiseaseTyphoid,
		DiseaseFever,
		DiseaseBrokenLeg,
		DiseaseBrokenArm,
		DiseaseExhaustion,
		DiseaseSnakebite,
	}
}

func (d Disease) Valid() bool {
	for _, known := range AllDiseases() {
		if d == known {
			return true
		}
	}
	return false
}

func (d Disease) Label() string {
	switch d {
	case DiseaseBrokenLeg:
		return "a broken leg"
	case DiseaseBrokenArm:
		return "a broken arm"
	case DiseaseSnakebite:
		return "a snakebite"
	default:
		return string(d)
	}
}

type PartyMember struct {
	Name     string       `json:"name"`
	Health   HealthStatus `json:"health"`
	Diseases []Disease    `json:"diseases"`
	IsLeader bool         `json:"is_leader"`
	Age      uint8        `json:"age"`

	sink func(Event)
}

func NewPartyMember(name string, age uint8, isLeader bool) PartyMember {
	return PartyMember{
		Name:     name,
		Health:   HealthGood,
		Diseases: []Disease{},
		IsLeader: isLeader,
		Age:      age,
	}
}

func (m *PartyMember) IsAlive() bool {
	return m.Health != HealthDeceased
}

func (m *PartyMember) HasDisease(d Disease) bool {
	for _, held := range m.Diseases {
		if held == d {
			return true
		}
	}
	return false
}

// Degrade moves one step down the ladder. Deceased is terminal.
func (m *PartyMember) Degrade() {
	if m.Health >= HealthDeceased {
		return
	}
	m.setHealth(m.Health + 1)
}

// Improve moves one step up the ladder. It never revives a deceased member.
func (m *PartyMember) Improve() {
	if m.Health <= HealthGood || m.Health >= HealthDeceased {
		return
	}
	m.setHealth(m.Health - 1)
}

// Contract adds d and degrades once. An already active disease is a no-op.
func (m *PartyMember) Contract(d Disease) {
	if m.HasDisease(d) {
		return
	}
	m.Diseases = append(m.Diseases, d)
	m.notify(Event{
		Kind:  EventMemberContracted,
		Attrs: map[string]any{"member": m.Name, "disease": string(d)},
	})
	m.Degrade()
}

// Recover clears d. Health is left unchanged.
func (m *PartyMember) Recover(d Disease) {
	for i, held := range m.Diseases {
		if held != d {
			continue
		}
		m.Diseases = append(m.Diseases[:i], m.Diseases[i+1:]...)
		m.notify(Event{
			Kind:  EventMemberRecovered,
			Attrs: map[string]any{"member": m.Name, "disease": string(d)},
		})
		return
	}
}

func (m *PartyMember) setHealth(next HealthStatus) {
	prev := m.Health
	m.Health = next
	m.notify(Event{
		Kind: EventMemberHealthChanged,
		Attrs: map[string]any{
			"member": m.Name,
			"from":   prev.String(),
			"to":     next.String(),
		},
	})
	if next == HealthDeceased {
		m.notify(Event{
			Kind:  EventMemberDied,
			Attrs: map[string]any{"member": m.Name},
		})
	}
}

func (m *PartyMember) notify(e Event) {
	if m.sink != nil {
		m.sink(e)
	}
}
