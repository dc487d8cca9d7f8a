package models

import "slices"

// MaxGenres caps genre tags on a novel and favourite genres on a profile.
const MaxGenres = 3

var Genres = []string{
	"Horror", "Fantasy", "Adventure", "Mystery", "Literary", "Dystopian",
	"Romance", "Sci-Fi", "Thriller", "Detective", "Urban", "Action",
	"ACG", "Games", "LGBT+", "War", "Realistic", "History",
	"Cherads", "General", "Teen", "Devotional", "Poetry",
}

var Languages = []string{
	"English", "Spanish", "French", "German", "Chinese", "Japanese", "Korean",
	"Russian", "Arabic", "Hindi", "Portuguese", "Italian", "Dutch", "Swedish",
	"Turkish", "Polish", "Vietnamese", "Thai", "Indonesian", "Malay", "Other",
}

const (
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"

	LeadMale   = "male"
	LeadFemale = "female"

	ChapterDraft     = "draft"
	ChapterPublished = "published"

	VoteUp   = "up"
	VoteDown = "down"

	DefaultLanguage = "English"
)

var (
	NovelStatuses     = []string{StatusOngoing, StatusCompleted}
	LeadingCharacters = []string{LeadMale, LeadFemale}
	ChapterStatuses   = []string{ChapterDraft, ChapterPublished}
)

// AllGenres is the listing filter value meaning "no genre filter".
const AllGenres = "All"

func IsGenre(g string) bool    { return slices.Contains(Genres, g) }
func IsLanguage(l string) bool { return slices.Contains(Languages, l) }
