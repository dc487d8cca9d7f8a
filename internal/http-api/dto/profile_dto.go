package dto

import "novelhub/internal/service"

// ProfileRequest binds from JSON or a multipart form carrying a "picture"
// file.
type ProfileRequest struct {
	Username       string   `json:"username" form:"username"`
	Age            *int     `json:"age" form:"age"`
	InterestGenres []string `json:"interest_genre" form:"interest_genre"`
	Bio            *string  `json:"bio" form:"bio"`
	ProfilePicture *string  `json:"profile_picture" form:"profile_picture"`
}

func (r ProfileRequest) ToInput() service.ProfileInput {
	return service.ProfileInput{
		Username:       r.Username,
		Age:            r.Age,
		InterestGenres: r.InterestGenres,
		Bio:            r.Bio,
		ProfilePicture: r.ProfilePicture,
	}
}
