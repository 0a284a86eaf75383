package models

import "time"

// RawPost represents the record shape produced by the scraper
type RawPost struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	Caption     string    `json:"caption"`
	Hook        string    `json:"hook"`
	Transcript  string    `json:"transcript"`
	Views       int       `json:"views"`
	Likes       int       `json:"likes"`
	Comments    int       `json:"comments"`
	Shares      int       `json:"shares"`
	ContentType string    `json:"contentType"`
	UploadDate  time.Time `json:"uploadDate"`
	PostURL     string    `json:"postUrl"`
	Hashtags    []string  `json:"hashtags"`
	Mentions    []string  `json:"mentions"`
	ViralScore  float64   `json:"viralScore"`
}

// Ingestion status values
const (
	StatusNeverRun = "never_run"
	StatusRunning  = "running"
	StatusSuccess  = "success"
	StatusFailure  = "failure"
)

// IngestionStatus tracks the status of ingestion runs
type IngestionStatus struct {
	LastSuccessfulRun time.Time `json:"last_successful_run" bson:"last_successful_run"`
	LastAttempt       time.Time `json:"last_attempt" bson:"last_attempt"`
	Status            string    `json:"status" bson:"status"` // "success", "failure", "running", "never_run"
	ErrorMessage      string    `json:"error_message,omitempty" bson:"error_message,omitempty"`
	RecordsIngested   int       `json:"records_ingested" bson:"records_ingested"`
	RecordsSkipped    int       `json:"records_skipped" bson:"records_skipped"`
}
