package show

type NamedOption struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func EventTypes() []NamedOption {
	order := []EventType{
		EventWedding,
		EventFestival,
		EventCorporate,
		EventConcert,
		EventPolitical,
		EventOther,
	}

	out := make([]NamedOption, 0, len(order))
	for _, et := range order {
		if bank, ok := eventBanks[et]; ok {
			out = append(out, NamedOption{Key: string(et), Name: bank.Name})
		}
	}
	return out
}

func MusicStyles() []NamedOption {
	return []NamedOption{
		{Key: string(MusicNone), Name: "No music"},
		{Key: string(MusicClassical), Name: "Classical"},
		{Key: string(MusicElectronic), Name: "Electronic"},
		{Key: string(MusicPop), Name: "Pop"},
		{Key: string(MusicRock), Name: "Rock"},
		{Key: string(MusicCinematic), Name: "Epic cinematic"},
		{Key: string(MusicAmbient), Name: "Ambient"},
	}
}

func VideoStyles() []NamedOption {
	return []NamedOption{
		{Key: string(StyleMagical), Name: "Magical"},
		{Key: string(StyleEnergetic), Name: "Energetic"},
		{Key: string(StyleProfessional), Name: "Professional"},
		{Key: string(StyleRomantic), Name: "Romantic"},
		{Key: string(StyleDramatic), Name: "Dramatic"},
		{Key: string(StylePlayful), Name: "Playful"},
	}
}

func Speeds() []NamedOption {
	return []NamedOption{
		{Key: string(SpeedSlow), Name: "Slow"},
		{Key: string(SpeedMedium), Name: "Medium"},
		{Key: string(SpeedFast), Name: "Fast"},
		{Key: string(SpeedDynamic), Name: "Dynamic"},
	}
}

func EffectsLevels() []NamedOption {
	return []NamedOption{
		{Key: string(EffectsSubtle), Name: "Subtle"},
		{Key: string(EffectsModerate), Name: "Moderate"},
		{Key: string(EffectsIntense), Name: "Intense"},
	}
}

func CameraMovements() []NamedOption {
	return []NamedOption{
		{Key: string(CameraStatic), Name: "Static"},
		{Key: string(CameraGentle), Name: "Gentle"},
		{Key: string(CameraDynamic), Name: "Dynamic"},
	}
}
