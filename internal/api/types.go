package api

import (
	"time"

	"parkcore/internal/core"
	"parkcore/pkg/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// CreateZoneRequest is the body of POST /zones.
type CreateZoneRequest struct {
	Name   string `json:"name" binding:"required,parkname"`
	IsOpen bool   `json:"isOpen"`
}

// AdmitDinosaurRequest is the body of POST /zones/:name/dinosaurs.
type AdmitDinosaurRequest struct {
	Name    string `json:"name" binding:"required,parkname"`
	Species string `json:"species" binding:"required"`
	IsSick  bool   `json:"isSick"`
}

// MoveDinosaurRequest is the body of POST /dinosaurs/move.
type MoveDinosaurRequest struct {
	DinosaurName string `json:"dinosaurName" binding:"required"`
	FromZoneName string `json:"fromZoneName" binding:"required"`
	ToZoneName   string `json:"toZoneName" binding:"required"`
}

// SetHealthRequest is the body of PATCH /dinosaurs/:dino/health.
type SetHealthRequest struct {
	IsSick *bool `json:"isSick" binding:"required"`
}

// CompatibilityRequest is the body of POST /species/compatibility.
type CompatibilityRequest struct {
	Species1 string `json:"species1" binding:"required"`
	Species2 string `json:"species2" binding:"required"`
}

// CompatibilityResponse reports the evaluator verdict.
type CompatibilityResponse struct {
	Species1   string `json:"species1"`
	Species2   string `json:"species2"`
	Compatible bool   `json:"compatible"`
}

// DinosaurDTO is the wire form of a dinosaur.
type DinosaurDTO struct {
	Name         string    `json:"name"`
	Species      string    `json:"species"`
	Diet         string    `json:"diet"`
	IsSick       bool      `json:"isSick"`
	Health       string    `json:"health"`
	IsDangerous  bool      `json:"isDangerous"`
	LastFed      time.Time `json:"lastFed"`
	NeedsFeeding bool      `json:"needsFeeding"`
	Zone         string    `json:"zone,omitempty"`
}

// ZoneStatsDTO counts a zone's occupants.
type ZoneStatsDTO struct {
	Total      int `json:"total"`
	Carnivores int `json:"carnivores"`
	Herbivores int `json:"herbivores"`
	Sick       int `json:"sick"`
}

// ZoneDTO is the wire form of a zone.
type ZoneDTO struct {
	Name      string        `json:"name"`
	IsOpen    bool          `json:"isOpen"`
	Status    string        `json:"status"`
	Dinosaurs []DinosaurDTO `json:"dinosaurs"`
	Stats     ZoneStatsDTO  `json:"stats"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// SpeciesDTO is one catalog entry.
type SpeciesDTO struct {
	Name                string `json:"name"`
	Diet                string `json:"diet"`
	CompatibilityWeight int    `json:"compatibilityWeight"`
}

// ParkStatusDTO summarizes the park.
type ParkStatusDTO struct {
	Zones      int `json:"zones"`
	OpenZones  int `json:"openZones"`
	Dinosaurs  int `json:"dinosaurs"`
	Carnivores int `json:"carnivores"`
	Herbivores int `json:"herbivores"`
	Sick       int `json:"sick"`
	Hungry     int `json:"hungry"`
}

// ChangeDTO is one committed change inside an EventMessage.
type ChangeDTO struct {
	Entity   string `json:"entity"`
	Action   string `json:"action"`
	Name     string `json:"name,omitempty"`
	Zone     string `json:"zone,omitempty"`
	FromZone string `json:"fromZone,omitempty"`
}

// EventMessage is pushed to /events subscribers after each commit.
type EventMessage struct {
	ID        string      `json:"id"`
	Sequence  uint64      `json:"sequence"`
	Operation string      `json:"operation"`
	Timestamp time.Time   `json:"timestamp"`
	Changes   []ChangeDTO `json:"changes"`
}

func toDinosaurDTO(d domain.Dinosaur, now time.Time) DinosaurDTO {
	return DinosaurDTO{
		Name:         d.Name,
		Species:      d.Species,
		Diet:         string(d.Diet),
		IsSick:       d.IsSick,
		Health:       string(d.Health()),
		IsDangerous:  d.IsCarnivore(),
		LastFed:      d.LastFed,
		NeedsFeeding: d.NeedsFeeding(now),
	}
}

func toDinosaurDTOs(ds []domain.Dinosaur, now time.Time) []DinosaurDTO {
	out := make([]DinosaurDTO, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDinosaurDTO(d, now))
	}
	return out
}

func toZoneDTO(z domain.Zone, now time.Time) ZoneDTO {
	stats := z.Stats()
	return ZoneDTO{
		Name:      z.Name,
		IsOpen:    z.IsOpen,
		Status:    string(z.Status()),
		Dinosaurs: toDinosaurDTOs(z.Dinosaurs, now),
		Stats: ZoneStatsDTO{
			Total:      stats.Total,
			Carnivores: stats.Carnivores,
			Herbivores: stats.Herbivores,
			Sick:       stats.Sick,
		},
		CreatedAt: z.CreatedAt,
		UpdatedAt: z.UpdatedAt,
	}
}

func toParkStatusDTO(s domain.ParkStatus) ParkStatusDTO {
	return ParkStatusDTO(s)
}

func toEventMessage(ev core.ChangeEvent) EventMessage {
	msg := EventMessage{ID: ev.ID, Sequence: ev.Sequence, Operation: ev.Operation, Timestamp: ev.Timestamp, Changes: make([]ChangeDTO, 0, len(ev.Changes))}
	for _, ch := range ev.Changes {
		msg.Changes = append(msg.Changes, ChangeDTO{
			Entity:   string(ch.Entity),
			Action:   string(ch.Action),
			Name:     changeName(ch),
			Zone:     ch.Zone,
			FromZone: ch.FromZone,
		})
	}
	return msg
}

func changeName(ch domain.Change) string {
	for _, v := range []any{ch.After, ch.Before} {
		switch e := v.(type) {
		case domain.Dinosaur:
			return e.Name
		case domain.Zone:
			return e.Name
		}
	}
	return ""
}
