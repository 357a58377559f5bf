package musiccontent

import "io"

// FileUpload is one incoming file handed over by the transport layer.
type FileUpload struct {
	Reader      io.Reader
	FileName    string
	ContentType string
}

// CreateAssetRequest contains parameters for creating a music asset. File is
// mandatory; SheetMusic is optional.
type CreateAssetRequest struct {
	Title            string
	Subtitle         string
	Author           string
	Version          string
	PresentationType PresentationType
	Genre            Genre
	BPM              *int

	File       FileUpload
	SheetMusic *FileUpload
}
