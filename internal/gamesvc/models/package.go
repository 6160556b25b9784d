package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PackageType string

const (
	PackagePublic         PackageType = "public"
	PackageOrganizational PackageType = "organizational"
	PackagePrivate        PackageType = "private"
)

type PackageVisibility string

const (
	VisibilityPublic       PackageVisibility = "public"
	VisibilityOrganization PackageVisibility = "organization"
	VisibilityPrivate      PackageVisibility = "private"
)

type PackageStatus string

const (
	PackageDraft     PackageStatus = "draft"
	PackagePublished PackageStatus = "published"
	PackageArchived  PackageStatus = "archived"
)

func (s PackageStatus) Valid() bool {
	switch s {
	case PackageDraft, PackagePublished, PackageArchived:
		return true
	}
	return false
}

// QuestionPackage is a curated, ordered set of questions from the bank that
// players attempt outside of card games.
type QuestionPackage struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Type              PackageType       `json:"type"`
	Category          string            `json:"category"`
	Visibility        PackageVisibility `json:"visibility"`
	Difficulty        string            `json:"difficulty"`
	EstimatedDuration int               `json:"estimated_duration"` // minutes
	Language          string            `json:"language"`
	Tags              []string          `json:"tags"`
	Version           string            `json:"version"`
	Status            PackageStatus     `json:"status"`
	CreatedBy         string            `json:"created_by,omitempty"`
	QuestionIDs       []int64           `json:"-"`
	QuestionCount     int               `json:"question_count"`
	TotalAttempts     int               `json:"total_attempts"`
	CompletedAttempts int               `json:"completed_attempts"`
	AverageScore      float64           `json:"average_score"`
	CompletionRate    float64           `json:"completion_rate"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Normalize fills defaults and checks the enumerations.
func (p *QuestionPackage) Normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if p.Type == "" {
		p.Type = PackagePublic
	}
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	if p.Difficulty == "" {
		p.Difficulty = "beginner"
	}
	if p.Language == "" {
		p.Language = "en"
	}
	if p.Version == "" {
		p.Version = "1.0"
	}
	if p.Status == "" {
		p.Status = PackageDraft
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	switch p.Type {
	case PackagePublic, PackageOrganizational, PackagePrivate:
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidPackage, p.Type)
	}
	switch p.Visibility {
	case VisibilityPublic, VisibilityOrganization, VisibilityPrivate:
	default:
		return fmt.Errorf("%w: visibility %q", ErrInvalidPackage, p.Visibility)
	}
	switch p.Difficulty {
	case "beginner", "intermediate", "advanced":
	default:
		return fmt.Errorf("%w: difficulty %q", ErrInvalidPackage, p.Difficulty)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidPackage, p.Status)
	}
	if p.EstimatedDuration < 0 {
		return fmt.Errorf("%w: estimated_duration must not be negative", ErrInvalidPackage)
	}
	if len(p.QuestionIDs) == 0 {
		return fmt.Errorf("%w: a package needs at least one question", ErrInvalidPackage)
	}
	seen := make(map[int64]bool, len(p.QuestionIDs))
	for _, id := range p.QuestionIDs {
		if seen[id] {
			return fmt.Errorf("%w: question %d listed twice", ErrInvalidPackage, id)
		}
		seen[id] = true
	}
	p.QuestionCount = len(p.QuestionIDs)
	return nil
}

// RecordAttempt folds a finished attempt into the package statistics.
// The average score covers completed attempts only.
func (p *QuestionPackage) RecordAttempt(a *PackageAttempt) {
	p.TotalAttempts++
	if a.Completed {
		p.CompletedAttempts++
		n := decimal.NewFromInt(int64(p.CompletedAttempts))
		avg, _ := decimal.NewFromFloat(p.AverageScore).
			Mul(n.Sub(decimal.NewFromInt(1))).
			Add(decimal.NewFromFloat(a.Score)).
			DivRound(n, 2).
			Float64()
		p.AverageScore = avg
	}
	p.CompletionRate = percentage(p.CompletedAttempts, p.TotalAttempts)
}

func (p *QuestionPackage) Clone() *QuestionPackage {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	c.QuestionIDs = append([]int64(nil), p.QuestionIDs...)
	return &c
}

// PackageAttempt is one player's graded run through a package.
type PackageAttempt struct {
	ID             int64      `json:"id"`
	PlayerID       int64      `json:"player_id"`
	PackageID      int64      `json:"package_id"`
	Score          float64    `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	CorrectAnswers int        `json:"correct_answers"`
	TimeTaken      int        `json:"time_taken"` // seconds
	Completed      bool       `json:"completed"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// Grade sets the score as the percentage of correct answers over the
// package's questions.
func (a *PackageAttempt) Grade() {
	a.Score = percentage(a.CorrectAnswers, a.TotalQuestions)
}

func (a *PackageAttempt) Clone() *PackageAttempt {
	c := *a
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
