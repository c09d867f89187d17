package show

import "strings"

type EventType string

const (
	EventWedding   EventType = "wedding"
	EventFestival  EventType = "festival"
	EventCorporate EventType = "corporate"
	EventConcert   EventType = "concert"
	EventPolitical EventType = "political"
	EventOther     EventType = "other"
)

type MusicStyle string

const (
	MusicNone       MusicStyle = ""
	MusicClassical  MusicStyle = "classical"
	MusicElectronic MusicStyle = "electronic"
	MusicPop        MusicStyle = "pop"
	MusicRock       MusicStyle = "rock"
	MusicCinematic  MusicStyle = "epic_cinematic"
	MusicAmbient    MusicStyle = "ambient"
)

type VideoStyle string

const (
	StyleMagical      VideoStyle = "magical"
	StyleEnergetic    VideoStyle = "energetic"
	StyleProfessional VideoStyle = "professional"
	StyleRomantic     VideoStyle = "romantic"
	StyleDramatic     VideoStyle = "dramatic"
	StylePlayful      VideoStyle = "playful"
)

type Speed string

const (
	SpeedSlow    Speed = "slow"
	SpeedMedium  Speed = "medium"
	SpeedFast    Speed = "fast"
	SpeedDynamic Speed = "dynamic"
)

type EffectsLevel string

const (
	EffectsSubtle   EffectsLevel = "subtle"
	EffectsModerate EffectsLevel = "moderate"
	EffectsIntense  EffectsLevel = "intense"
)

type CameraMovement string

const (
	CameraStatic  CameraMovement = "static"
	CameraGentle  CameraMovement = "gentle"
	CameraDynamic CameraMovement = "dynamic"
)

// Request is a submitted show order. It is snapshotted into the session on
// submit and never mutated afterwards.
type Request struct {
	ClientName            string     `json:"client_name"`
	EventType             EventType  `json:"event_type"`
	Location              string     `json:"location"`
	CountryCity           string     `json:"country_city"`
	DroneCount            string     `json:"drone_count"`
	Elements              string     `json:"elements"`
	Notes                 string     `json:"notes"`
	MusicStyle            MusicStyle `json:"music_style"`
	HasTransition         bool       `json:"has_transition"`
	TransitionElements    string     `json:"transition_elements"`
	TransitionDescription string     `json:"transition_description"`
}

// Transition carries the two-act context for the video composer. It is only
// considered active when both the second scene and the description are set.
type Transition struct {
	SecondScene string
	Description string
}

func (t *Transition) active() bool {
	return t != nil &&
		strings.TrimSpace(t.SecondScene) != "" &&
		strings.TrimSpace(t.Description) != ""
}

func ParseEventType(value string) EventType {
	switch EventType(strings.ToLower(strings.TrimSpace(value))) {
	case EventWedding:
		return EventWedding
	case EventFestival:
		return EventFestival
	case EventCorporate:
		return EventCorporate
	case EventConcert:
		return EventConcert
	case EventPolitical:
		return EventPolitical
	default:
		return EventOther
	}
}

func ParseMusicStyle(value string) MusicStyle {
	switch MusicStyle(strings.ToLower(strings.TrimSpace(value))) {
	case MusicClassical:
		return MusicClassical
	case MusicElectronic:
		return MusicElectronic
	case MusicPop:
		return MusicPop
	case MusicRock:
		return MusicRock
	case MusicCinematic:
		return MusicCinematic
	case MusicAmbient:
		return MusicAmbient
	default:
		return MusicNone
	}
}
