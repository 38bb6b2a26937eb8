package profile

import "wowprofile/pkg/models"

// Assemble merges the pipeline outputs into one profile. Nil slices become
// empty so every array is present in the rendered document.
func Assemble(titles models.Titles, mounts []models.Mount, pets []models.Pet, toys []models.Toy, seasons []models.MythicSeason, character models.Character) models.Profile {
	if titles.Titles == nil {
		titles.Titles = []models.TitleEntry{}
	}
	return models.Profile{
		Titles:     titles,
		Mounts:     orEmpty(mounts),
		Pets:       orEmpty(pets),
		Toys:       orEmpty(toys),
		MythicPlus: orEmpty(seasons),
		Character:  character,
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
