package api

import (
	"github.com/starford/designa/internal/contact"
	"github.com/starford/designa/internal/models"
	"github.com/starford/designa/internal/viewer"
)

// ArtworkListResponse is the filtered gallery with its filter options.
type ArtworkListResponse struct {
	Artworks        []models.Artwork `json:"artworks" validate:"required"`
	Total           int              `json:"total" example:"12" validate:"required"`
	SoftwareOptions []string         `json:"softwareOptions" validate:"required"`
	TypeOptions     []string         `json:"typeOptions" validate:"required"`
	Tags            []string         `json:"tags" validate:"required"`
	Size            string           `json:"size" example:"medium" validate:"required"`
	Columns         int              `json:"columns" example:"4" validate:"required"`
	Version         string           `json:"version" validate:"required"`
}

// WorkshopListResponse is the filtered workshop listing.
type WorkshopListResponse struct {
	Workshops  []models.Workshop         `json:"workshops" validate:"required"`
	Categories []models.WorkshopCategory `json:"categories" validate:"required"`
	Total      int                       `json:"total" validate:"required"`
}

// ViewerFilterRequest sets the artworks displayed by the viewer.
type ViewerFilterRequest struct {
	Software string `json:"software" example:"Blender"`
	Type     string `json:"type" example:"3D Model"`
	Tag      string `json:"tag"`
	Size     string `json:"size" example:"large"`
}

// SelectRequest opens an artwork.
type SelectRequest struct {
	ID int `json:"id" example:"3" validate:"required"`
}

// NavigateRequest moves within the viewer.
type NavigateRequest struct {
	Target    string `json:"target" example:"artwork" enums:"artwork,image" validate:"required"`
	Direction string `json:"direction" example:"next" enums:"next,prev" validate:"required"`
}

// ViewerResponse is the viewer state plus the displayed list size.
type ViewerResponse struct {
	viewer.View
	Filter ViewerFilterRequest `json:"filter"`
}

// ContactRequest is a contact form submission.
type ContactRequest = contact.Form

// ContactResponse is the contact form state.
type ContactResponse = contact.State

// ReloadResponse reports an admin reload.
type ReloadResponse struct {
	Changed   bool   `json:"changed"`
	Version   string `json:"version" validate:"required"`
	Artworks  int    `json:"artworks"`
	Workshops int    `json:"workshops"`
}

// SubmissionListResponse wraps paginated submission listings.
type SubmissionListResponse struct {
	Submissions []models.Submission `json:"submissions" validate:"required"`
	Total       int                 `json:"total" example:"42" validate:"required"`
}
