package show

import (
	"fmt"
	"strings"
)

type eventBank struct {
	Name    string
	Tone    string
	Palette string
	Pacing  string
}

var eventBanks = map[EventType]eventBank{
	EventWedding: {
		Name:    "Wedding",
		Tone:    "The mood is romantic and intimate, a once-in-a-lifetime celebration under the stars.",
		Palette: "Warm golden, champagne and soft white tones dominate the light palette.",
		Pacing:  "Formations unfold gently and gracefully, giving each figure time to breathe.",
	},
	EventFestival: {
		Name:    "Festival",
		Tone:    "The mood is joyful and celebratory, a vibrant open-air festival at night.",
		Palette: "Bright rainbow colors and saturated neon hues fill the sky.",
		Pacing:  "Formations shift playfully with lively, rhythmic changes.",
	},
	EventCorporate: {
		Name:    "Corporate event",
		Tone:    "The mood is polished and professional, a premium brand presentation.",
		Palette: "A restrained palette of brand-clean whites, blues and silver accents.",
		Pacing:  "Formations resolve with crisp precision and deliberate timing.",
	},
	EventConcert: {
		Name:    "Concert",
		Tone:    "The mood is electric and high-energy, an arena crowd at full volume.",
		Palette: "Bold stage-inspired colors with punchy contrasts and strobing accents in the drones themselves.",
		Pacing:  "Formations hit hard on imagined downbeats with rapid, confident changes.",
	},
	EventPolitical: {
		Name:    "Political campaign",
		Tone:    "The mood is solemn and inspiring, a civic moment of shared pride.",
		Palette: "National colors and dignified white-gold tones carry the show.",
		Pacing:  "Formations build steadily toward a single commanding emblem.",
	},
	EventOther: {
		Name:    "Other",
		Tone:    "The mood is magical and wondrous, an unforgettable night-sky spectacle.",
		Palette: "A dreamlike palette of cyan, violet and warm white points of light.",
		Pacing:  "Formations flow smoothly from one figure into the next.",
	},
}

var stylePhrases = map[VideoStyle]string{
	StyleMagical:      "a magical, dreamlike atmosphere with twinkling lights and smooth, flowing motion",
	StyleEnergetic:    "a high-energy spectacle with bold color bursts and sharp, rhythmic movement",
	StyleProfessional: "a polished, corporate-clean presentation with precise formations and restrained color",
	StyleRomantic:     "a romantic, intimate atmosphere with warm golden tones and graceful, unhurried motion",
	StyleDramatic:     "a dramatic, cinematic build-up with deep contrasts and sweeping formation changes",
	StylePlayful:      "a playful, festive feel with bright colors and bouncy, lively motion",
}

var speedPhrases = map[Speed]string{
	SpeedSlow:    "The drones move slowly and deliberately, holding each formation for a long, contemplative beat.",
	SpeedMedium:  "The drones move at a steady, comfortable pace between formations.",
	SpeedFast:    "The drones move quickly and decisively, snapping from one formation to the next.",
	SpeedDynamic: "The drones vary their pace dramatically, alternating slow reveals with sudden bursts of motion.",
}

var effectsPhrases = map[EffectsLevel]string{
	EffectsSubtle:   "Lighting effects stay subtle and refined: gentle fades, soft pulses, no harsh flashing.",
	EffectsModerate: "Lighting effects are balanced: color waves, coordinated pulses and occasional sparkle accents.",
	EffectsIntense:  "Lighting effects are intense and show-stopping: cascading color waves, synchronized strobes and shimmering bursts.",
}

var cameraPhrases = map[CameraMovement]string{
	CameraStatic:  "The camera stays locked off on a tripod, letting the formations own the frame.",
	CameraGentle:  "The camera drifts in a slow, gentle glide that keeps the whole formation in view.",
	CameraDynamic: "The camera sweeps dynamically around the show with cinematic crane-like moves.",
}

var musicPhrases = map[MusicStyle]string{
	MusicClassical:  "The drones' movement follows the feel of an elegant classical orchestral score.",
	MusicElectronic: "The drones' movement follows the pulse of an electronic dance track.",
	MusicPop:        "The drones' movement follows the beat of an upbeat pop anthem.",
	MusicRock:       "The drones' movement follows the drive of a powerful rock track.",
	MusicCinematic:  "The drones' movement follows the swell of an epic cinematic soundtrack.",
	MusicAmbient:    "The drones' movement floats with the calm of an ambient soundscape.",
}

const particleClause = "Fine particle-like shimmer surrounds the formations as drones reposition."

const trailClause = "The drones leave subtle light trails behind them as they move."

// Every video prompt must carry this clause; sales sign-off requires the
// audience to be visible in the shot.
const onlookersClause = "A crowd of onlookers watching the show is visible at the bottom of the frame, silhouetted against the night sky."

const imageQualityClause = "The image must have the quality of a professional camera, with the drone lights perfectly defined, subtle light trails, and realistic reflections on nearby surfaces such as water or buildings. The atmosphere must be magical and striking."

const (
	fallbackLocation = "the indicated place"
	fallbackElements = "abstract luminous figures chosen for the occasion"
	fallbackCount    = "several hundred"
)

var negativePromptTerms = []string{
	"fireworks",
	"pyrotechnics",
	"explosions",
	"smoke",
	"fog",
	"airplanes",
	"helicopters",
	"jets",
	"birds",
	"sped-up motion",
	"time-lapse",
	"fast-forward playback",
	"stage lighting rigs",
	"ground-based spotlights",
	"laser beams",
	"confetti",
	"balloons",
	"lens flare artifacts",
	"text overlays",
	"watermark",
	"daylight",
}

// ComposeImagePrompt builds the still-frame prompt for the image model. The
// user-supplied elements and location text must survive verbatim; absent
// optional fields degrade to generic phrasing instead of failing.
func ComposeImagePrompt(req Request, imageDescription string) string {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = fallbackLocation
	}
	if cc := strings.TrimSpace(req.CountryCity); cc != "" {
		location += ", " + cc
	}

	elements := strings.TrimSpace(req.Elements)
	if elements == "" {
		elements = fallbackElements
	}

	count := strings.TrimSpace(req.DroneCount)
	if count == "" {
		count = fallbackCount
	}

	var b strings.Builder
	b.Grow(1024)

	fmt.Fprintf(&b, "Hyper-realistic professional photograph of a nighttime drone light show with vibrant colored LED lights at %s.", location)
	fmt.Fprintf(&b, " The show forms the following figures in the sky: %s.", elements)
	fmt.Fprintf(&b, " Approximately %s drones are used.", count)

	if desc := strings.TrimSpace(imageDescription); desc != "" {
		fmt.Fprintf(&b, " The event surroundings are described as follows (use as visual reference): %s.", desc)
	} else {
		b.WriteString(" Show the natural or urban surroundings of the venue in a believable way.")
	}

	if notes := strings.TrimSpace(req.Notes); notes != "" {
		fmt.Fprintf(&b, " Additional client notes: %s.", notes)
	}

	b.WriteString(" ")
	b.WriteString(imageQualityClause)

	return b.String()
}

// ComposeEditPrompt passes the user's edit instruction through untouched
// apart from trimming; the edit model consumes free text directly.
func ComposeEditPrompt(instruction string) string {
	return strings.TrimSpace(instruction)
}

// ComposeVideoPrompt builds the animation prompt for the video model. With an
// active transition it produces a two-act narrative; with a partial or absent
// transition it is exactly the single-act output.
func ComposeVideoPrompt(req Request, cfg VideoConfig, transition *Transition) string {
	elements := strings.TrimSpace(req.Elements)
	if elements == "" {
		elements = fallbackElements
	}
	count := strings.TrimSpace(req.DroneCount)
	if count == "" {
		count = fallbackCount
	}

	bank, ok := eventBanks[req.EventType]
	if !ok {
		bank = eventBanks[EventOther]
	}

	var b strings.Builder
	b.Grow(2048)

	if transition.active() {
		fmt.Fprintf(&b, "Animate this drone light show of approximately %s drones as a two-act narrative.", count)
		fmt.Fprintf(&b, " Act one: the drones form %s and hold the formation.", elements)
		fmt.Fprintf(&b, " Transition: %s.", strings.TrimSpace(transition.Description))
		fmt.Fprintf(&b, " Act two: the drones reform into %s.", strings.TrimSpace(transition.SecondScene))
	} else {
		fmt.Fprintf(&b, "Animate this drone light show of approximately %s drones forming %s.", count, elements)
	}

	b.WriteString(" " + bank.Tone)
	b.WriteString(" " + bank.Palette)
	b.WriteString(" " + bank.Pacing)

	if phrase, ok := stylePhrases[cfg.Style]; ok {
		fmt.Fprintf(&b, " The overall direction is %s.", phrase)
	}
	if phrase, ok := speedPhrases[cfg.Speed]; ok {
		b.WriteString(" " + phrase)
	}
	if phrase, ok := effectsPhrases[cfg.Effects]; ok {
		b.WriteString(" " + phrase)
	}
	if cfg.Particles {
		b.WriteString(" " + particleClause)
	}
	if cfg.Trails {
		b.WriteString(" " + trailClause)
	}
	if phrase, ok := cameraPhrases[cfg.Camera]; ok {
		b.WriteString(" " + phrase)
	}

	b.WriteString(" " + onlookersClause)

	if phrase, ok := musicPhrases[req.MusicStyle]; ok {
		b.WriteString(" " + phrase)
	}

	return b.String()
}

// NegativePrompt is the fixed exclusion clause attached to every video
// request. The terms live in negativePromptTerms so the list stays
// reviewable as data.
func NegativePrompt() string {
	return strings.Join(negativePromptTerms, ", ")
}
