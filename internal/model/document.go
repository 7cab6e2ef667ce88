package model

import "time"

// Document is one ingested file in the upload ledger.
type Document struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	Filename   string    `gorm:"size:255;not null" json:"filename"`
	Source     string    `gorm:"size:16;not null;index" json:"source"`
	ChunkCount int       `gorm:"not null" json:"chunk_count"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

const (
	DocumentSourceUpload = "upload"
	DocumentSourceIngest = "ingest"
)
