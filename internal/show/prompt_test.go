package show

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func weddingRequest() Request {
	return Request{
		ClientName:  "Rivera Wedding",
		EventType:   EventWedding,
		Location:    "Beach Resort",
		CountryCity: "Cancun, Mexico",
		DroneCount:  "150",
		Elements:    "a heart and two interlocking rings",
		MusicStyle:  MusicClassical,
	}
}

func TestComposeImagePromptKeepsUserTextVerbatim(t *testing.T) {
	req := weddingRequest()
	req.Notes = "the couple's initials appear at the finale"

	prompt := ComposeImagePrompt(req, "")

	require.Contains(t, prompt, "a heart and two interlocking rings")
	require.Contains(t, prompt, "Beach Resort, Cancun, Mexico")
	require.Contains(t, prompt, "150 drones")
	require.Contains(t, prompt, "the couple's initials appear at the finale")
	require.Contains(t, prompt, imageQualityClause)
}

func TestComposeImagePromptFallbacks(t *testing.T) {
	prompt := ComposeImagePrompt(Request{EventType: EventOther}, "")

	require.Contains(t, prompt, fallbackLocation)
	require.Contains(t, prompt, fallbackElements)
	require.Contains(t, prompt, fallbackCount)
	require.Contains(t, prompt, "natural or urban surroundings")
	require.NotContains(t, prompt, "use as visual reference")
}

func TestComposeImagePromptUsesVenueDescription(t *testing.T) {
	desc := "a crescent beach at dusk with palm trees along the shoreline"
	prompt := ComposeImagePrompt(weddingRequest(), desc)

	require.Contains(t, prompt, desc)
	require.NotContains(t, prompt, "natural or urban surroundings")
}

func TestComposeEditPromptTrims(t *testing.T) {
	require.Equal(t, "make the rings golden", ComposeEditPrompt("  make the rings golden \n"))
	require.Equal(t, "", ComposeEditPrompt("   "))
}

func TestComposeVideoPromptAlwaysIncludesOnlookers(t *testing.T) {
	events := []EventType{EventWedding, EventFestival, EventCorporate, EventConcert, EventPolitical, EventOther}
	transitions := []*Transition{
		nil,
		{SecondScene: "a dove in flight", Description: "the rings dissolve into sparks"},
	}

	for _, et := range events {
		for _, tr := range transitions {
			req := weddingRequest()
			req.EventType = et
			prompt := ComposeVideoPrompt(req, DefaultVideoConfig(et), tr)
			require.Contains(t, prompt, onlookersClause, "event %s", et)
		}
	}
}

func TestComposeVideoPromptTwoActTransition(t *testing.T) {
	req := weddingRequest()
	tr := &Transition{
		SecondScene: "a dove in flight",
		Description: "the rings dissolve into drifting sparks",
	}

	prompt := ComposeVideoPrompt(req, DefaultVideoConfig(req.EventType), tr)

	require.Contains(t, prompt, "two-act narrative")
	require.Contains(t, prompt, "a heart and two interlocking rings")
	require.Contains(t, prompt, "the rings dissolve into drifting sparks")
	require.Contains(t, prompt, "a dove in flight")
}

func TestComposeVideoPromptPartialTransitionFallsBack(t *testing.T) {
	req := weddingRequest()
	cfg := DefaultVideoConfig(req.EventType)
	single := ComposeVideoPrompt(req, cfg, nil)

	partials := []*Transition{
		{SecondScene: "a dove in flight"},
		{Description: "the rings dissolve into sparks"},
		{SecondScene: "  ", Description: "the rings dissolve into sparks"},
		{},
	}
	for _, tr := range partials {
		require.Equal(t, single, ComposeVideoPrompt(req, cfg, tr))
	}

	require.NotContains(t, single, "two-act")
	require.Contains(t, single, "a heart and two interlocking rings")
}

func TestComposeVideoPromptToneFollowsEvent(t *testing.T) {
	wedding := weddingRequest()
	concert := weddingRequest()
	concert.EventType = EventConcert

	weddingPrompt := ComposeVideoPrompt(wedding, DefaultVideoConfig(wedding.EventType), nil)
	concertPrompt := ComposeVideoPrompt(concert, DefaultVideoConfig(concert.EventType), nil)

	require.NotEqual(t, weddingPrompt, concertPrompt)
	require.Contains(t, weddingPrompt, "romantic and intimate")
	require.Contains(t, concertPrompt, "electric and high-energy")
}

func TestComposeVideoPromptMusicClause(t *testing.T) {
	req := weddingRequest()
	cfg := DefaultVideoConfig(req.EventType)

	withMusic := ComposeVideoPrompt(req, cfg, nil)
	require.Contains(t, withMusic, musicPhrases[MusicClassical])

	req.MusicStyle = MusicNone
	withoutMusic := ComposeVideoPrompt(req, cfg, nil)
	require.NotContains(t, withoutMusic, "movement follows")
}

func TestComposeVideoPromptConfigClauses(t *testing.T) {
	req := weddingRequest()
	cfg := DefaultVideoConfig(req.EventType)
	cfg.Particles = true
	cfg.Trails = false
	cfg.Camera = CameraDynamic

	prompt := ComposeVideoPrompt(req, cfg, nil)

	require.Contains(t, prompt, particleClause)
	require.NotContains(t, prompt, trailClause)
	require.Contains(t, prompt, cameraPhrases[CameraDynamic])
}

func TestNegativePromptIsStable(t *testing.T) {
	first := NegativePrompt()
	second := NegativePrompt()

	require.Equal(t, first, second)
	require.Contains(t, first, "fireworks")
	require.Contains(t, first, "daylight")
	require.False(t, strings.HasSuffix(first, ","))
	require.Len(t, strings.Split(first, ", "), len(negativePromptTerms))
}
