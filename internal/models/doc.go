// Package models defines the data model for the wedding-video wizard.
//
// FormState is the single record carried across wizard steps; Artifact tracks
// the lifecycle of one generated asset; Run records a completed final video.
package models
