package dto

import "time"

type Identity struct {
	FileName     string    `json:"fileName"`
	FileSize     int64     `json:"fileSize"`
	LastModified time.Time `json:"lastModified"`
}

type OpenInput struct {
	Identity     Identity
	SectionCount int
}

// Progress is the state of the open song.
type Progress struct {
	Key                  string `json:"key"`
	FileName             string `json:"fileName"`
	CurrentSection       int    `json:"currentSection"`
	CompletedSections    []int  `json:"completedSections"`
	SectionCount         int    `json:"sectionCount"`
	CompletedCount       int    `json:"completedCount"`
	CompletionPercentage int    `json:"completionPercentage"`
	Restored             bool   `json:"restored,omitempty"`
}

// Record is a stored progress entry.
type Record struct {
	Key                  string    `json:"key"`
	FileName             string    `json:"fileName"`
	CurrentSection       int       `json:"currentSection"`
	CompletedSections    []int     `json:"completedSections"`
	TotalSections        int       `json:"totalSections"`
	CompletionPercentage int       `json:"completionPercentage"`
	LastPlayed           time.Time `json:"lastPlayed"`
}
