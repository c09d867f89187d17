package show

import "strings"

// VideoConfig is the fully resolved set of video knobs for one request.
// Exactly one style is active; resolution happens once, in ResolveVideoConfig.
type VideoConfig struct {
	Style           VideoStyle     `json:"style"`
	Speed           Speed          `json:"speed"`
	Effects         EffectsLevel   `json:"effects"`
	Particles       bool           `json:"particles"`
	Trails          bool           `json:"trails"`
	Camera          CameraMovement `json:"camera"`
	DurationSeconds int            `json:"duration_seconds"`
	Resolution      string         `json:"resolution"`
	AspectRatio     string         `json:"aspect_ratio"`
}

// ConfigOverride holds request-level overrides. Nil fields fall through to
// the event-type default, which falls through to the global default.
type ConfigOverride struct {
	Style           *VideoStyle     `json:"style"`
	Speed           *Speed          `json:"speed"`
	Effects         *EffectsLevel   `json:"effects"`
	Particles       *bool           `json:"particles"`
	Trails          *bool           `json:"trails"`
	Camera          *CameraMovement `json:"camera"`
	DurationSeconds *int            `json:"duration_seconds"`
	Resolution      *string         `json:"resolution"`
	AspectRatio     *string         `json:"aspect_ratio"`
}

var globalDefault = VideoConfig{
	Style:           StyleMagical,
	Speed:           SpeedMedium,
	Effects:         EffectsModerate,
	Particles:       false,
	Trails:          true,
	Camera:          CameraGentle,
	DurationSeconds: 8,
	Resolution:      "720p",
	AspectRatio:     "16:9",
}

var eventStyles = map[EventType]VideoStyle{
	EventWedding:   StyleRomantic,
	EventFestival:  StylePlayful,
	EventCorporate: StyleProfessional,
	EventConcert:   StyleEnergetic,
	EventPolitical: StyleDramatic,
	EventOther:     StyleMagical,
}

var eventSpeeds = map[EventType]Speed{
	EventWedding:  SpeedSlow,
	EventFestival: SpeedFast,
	EventConcert:  SpeedDynamic,
}

// DefaultStyle is total over the event enum; unknown values take the
// catch-all magical style.
func DefaultStyle(et EventType) VideoStyle {
	if style, ok := eventStyles[et]; ok {
		return style
	}
	return StyleMagical
}

// DefaultVideoConfig is the event-type layer of the merge: the global
// default with the event's style and pacing applied.
func DefaultVideoConfig(et EventType) VideoConfig {
	cfg := globalDefault
	cfg.Style = DefaultStyle(et)
	if speed, ok := eventSpeeds[et]; ok {
		cfg.Speed = speed
	}
	return cfg
}

// ResolveVideoConfig merges override > event default > global default.
// Unknown enum values in the override are ignored rather than failing:
// composition must never block a paid generation call.
func ResolveVideoConfig(et EventType, o ConfigOverride) VideoConfig {
	cfg := DefaultVideoConfig(et)

	if o.Style != nil {
		if s, ok := normalizeStyle(string(*o.Style)); ok {
			cfg.Style = s
		}
	}
	if o.Speed != nil {
		if s, ok := normalizeSpeed(string(*o.Speed)); ok {
			cfg.Speed = s
		}
	}
	if o.Effects != nil {
		if e, ok := normalizeEffects(string(*o.Effects)); ok {
			cfg.Effects = e
		}
	}
	if o.Particles != nil {
		cfg.Particles = *o.Particles
	}
	if o.Trails != nil {
		cfg.Trails = *o.Trails
	}
	if o.Camera != nil {
		if c, ok := normalizeCamera(string(*o.Camera)); ok {
			cfg.Camera = c
		}
	}
	if o.DurationSeconds != nil && *o.DurationSeconds > 0 {
		cfg.DurationSeconds = *o.DurationSeconds
	}
	if o.Resolution != nil && strings.TrimSpace(*o.Resolution) != "" {
		cfg.Resolution = strings.TrimSpace(*o.Resolution)
	}
	if o.AspectRatio != nil && strings.TrimSpace(*o.AspectRatio) != "" {
		cfg.AspectRatio = strings.TrimSpace(*o.AspectRatio)
	}

	return cfg
}

func normalizeStyle(value string) (VideoStyle, bool) {
	s := VideoStyle(strings.ToLower(strings.TrimSpace(value)))
	switch s {
	case StyleMagical, StyleEnergetic, StyleProfessional, StyleRomantic, StyleDramatic, StylePlayful:
		return s, true
	}
	return "", false
}

func normalizeSpeed(value string) (Speed, bool) {
	s := Speed(strings.ToLower(strings.TrimSpace(value)))
	switch s {
	case SpeedSlow, SpeedMedium, SpeedFast, SpeedDynamic:
		return s, true
	}
	return "", false
}

func normalizeEffects(value string) (EffectsLevel, bool) {
	e := EffectsLevel(strings.ToLower(strings.TrimSpace(value)))
	switch e {
	case EffectsSubtle, EffectsModerate, EffectsIntense:
		return e, true
	}
	return "", false
}

func normalizeCamera(value string) (CameraMovement, bool) {
	c := CameraMovement(strings.ToLower(strings.TrimSpace(value)))
	switch c {
	case CameraStatic, CameraGentle, CameraDynamic:
		return c, true
	}
	return "", false
}
