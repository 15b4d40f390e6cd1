package domain

import "time"

// Supported profile picture content types. The label is trusted as declared.
var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/jpg":  {},
}

// IsSupportedImageType reports whether contentType may be stored as a profile asset.
func IsSupportedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// ProfileAsset is the metadata for the single picture an account may own.
// The bytes live in the asset store under Key.
type ProfileAsset struct {
	ID           string    `json:"id"`
	FileName     string    `json:"file_name"`
	Key          string    `json:"-"`
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	AccountEmail string    `json:"-"`
	UploadedAt   time.Time `json:"upload_date"`
}
