package musiccontent

import (
	"time"

	"github.com/google/uuid"
)

// Genre classifies a track.
type Genre string

// Genre constants (typed).
const (
	GenreRock       Genre = "ROCK"
	GenrePop        Genre = "POP"
	GenreJazz       Genre = "JAZZ"
	GenreClassical  Genre = "CLASSICAL"
	GenreElectronic Genre = "ELECTRONIC"
	GenreHipHop     Genre = "HIP_HOP"
	GenreCountry    Genre = "COUNTRY"
	GenreBlues      Genre = "BLUES"
	GenreFolk       Genre = "FOLK"
	GenreOther      Genre = "OTHER"
)

// IsValid returns true for known genres.
func (g Genre) IsValid() bool {
	switch g {
	case GenreRock, GenrePop, GenreJazz, GenreClassical, GenreElectronic,
		GenreHipHop, GenreCountry, GenreBlues, GenreFolk, GenreOther:
		return true
	}
	return false
}

// PresentationType describes how a track was recorded or performed.
type PresentationType string

// Presentation type constants (typed).
const (
	PresentationLive     PresentationType = "LIVE"
	PresentationStudio   PresentationType = "STUDIO"
	PresentationRemix    PresentationType = "REMIX"
	PresentationAcoustic PresentationType = "ACOUSTIC"
)

// IsValid returns true for known presentation types.
func (p PresentationType) IsValid() bool {
	switch p {
	case PresentationLive, PresentationStudio, PresentationRemix, PresentationAcoustic:
		return true
	}
	return false
}

// MusicAsset is the metadata record for one uploaded track.
//
// FileName holds the object key of the required audio payload and
// SheetMusicName the key of the optional sheet-music payload. The record
// never stores download URLs; those are derived at read time.
type MusicAsset struct {
	UID              uuid.UUID        `json:"uid"`
	Title            string           `json:"title"`
	Subtitle         string           `json:"subtitle,omitempty"`
	Author           string           `json:"author"`
	Version          string           `json:"version,omitempty"`
	PresentationType PresentationType `json:"presentation_type"`
	Genre            Genre            `json:"genre"`
	BPM              *int             `json:"bpm,omitempty"`
	FileName         string           `json:"file_name"`
	SheetMusicName   string           `json:"sheet_music_name,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// AssetView is a MusicAsset with freshly signed download URLs. The URLs carry
// their own expiry; callers must not cache them beyond a single response.
type AssetView struct {
	MusicAsset
	FileURL       string `json:"file_url,omitempty"`
	SheetMusicURL string `json:"sheet_music_url,omitempty"`
}

// SearchFilters narrows a search. Zero-value fields are no-ops; set fields
// combine with logical AND. Title and Author match case-insensitive
// substrings; Genre and PresentationType match exactly.
type SearchFilters struct {
	Title            string
	Author           string
	Genre            Genre
	PresentationType PresentationType
}

// UpdateAssetFields carries a partial update. Nil fields are left unchanged.
// Object keys are deliberately absent: the base update path never replaces
// files.
type UpdateAssetFields struct {
	Title            *string
	Subtitle         *string
	Author           *string
	Version          *string
	PresentationType *PresentationType
	Genre            *Genre
	BPM              *int
}
