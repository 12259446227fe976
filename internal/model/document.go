package model

import "time"

// Document is the metadata record of one uploaded PDF.
// OriginalFilename is client supplied and only used for display and download headers;
// StoredFilename is the server-generated name the content is kept under.
type Document struct {
	ID               int64     `json:"id"`
	OriginalFilename string    `json:"originalFilename"`
	StoredFilename   string    `json:"storedFilename"`
	Filepath         string    `json:"filepath"`
	Filesize         int64     `json:"filesize"`
	CreatedAt        time.Time `json:"createdAt"`
}
