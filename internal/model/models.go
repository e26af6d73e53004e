// internal/model/models.go
package model

import "time"

// Owner identifies the account that owns a repository.
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// Repository represents a repository record as returned by the GitHub search API.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Owner           Owner     `json:"owner"`
	HTMLURL         string    `json:"html_url"`
	Description     string    `json:"description"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	WatchersCount   int       `json:"watchers_count"`
	Language        string    `json:"language"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
}

// RankedRepository is a Repository with the metrics computed at fetch time.
// Cached values are served as-is; they are never recomputed.
type RankedRepository struct {
	Repository
	SparkScore       float64 `json:"sparkScore"`
	GrowthPercentage int     `json:"growthPercentage"`
}
