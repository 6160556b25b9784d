package service

import (
	"context"
	"fmt"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/store"
	log "github.com/sirupsen/logrus"
)

// PackageService manages question packages and grades attempts at them.
type PackageService struct {
	*deps
}

func NewPackageService(st store.Store, opts ...Option) *PackageService {
	return &PackageService{deps: newDeps(st, opts)}
}

// CreatePackage validates p and stores it with its ordered question list.
func (s *PackageService) CreatePackage(ctx context.Context, p *models.QuestionPackage) (*models.QuestionPackage, error) {
	if err := p.Normalize(); err != nil {
		return nil, err
	}
	p.CreatedAt = s.now()
	if err := s.store.CreatePackage(ctx, p); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"package_id": p.ID, "questions": p.QuestionCount}).Info("question package created")
	return p, nil
}

// SetStatus moves a package between draft, published and archived.
func (s *PackageService) SetStatus(ctx context.Context, id int64, status models.PackageStatus) (*models.QuestionPackage, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", models.ErrInvalidPackage, status)
	}

	var out *models.QuestionPackage
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		p, err := tx.GetPackageForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return models.ErrPackageNotFound
		}
		p.Status = status
		if err := tx.UpdatePackage(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListPublished returns every published package.
func (s *PackageService) ListPublished(ctx context.Context) ([]*models.QuestionPackage, error) {
	pkgs, err := s.store.ListPackages(ctx, models.PackagePublished)
	if err != nil {
		return nil, err
	}
	if pkgs == nil {
		pkgs = []*models.QuestionPackage{}
	}
	return pkgs, nil
}

type PackageQuestions struct {
	Package   *models.QuestionPackage `json:"package"`
	Questions []*models.Question      `json:"questions"`
}

// Questions returns a published package with its questions in order.
// Answers and explanations stay hidden; attempts reveal them.
func (s *PackageService) Questions(ctx context.Context, id int64) (*PackageQuestions, error) {
	p, err := s.published(ctx, s.store, id, false)
	if err != nil {
		return nil, err
	}
	qs, err := s.store.PackageQuestions(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &PackageQuestions{Package: p, Questions: make([]*models.Question, len(qs))}
	for i, q := range qs {
		out.Questions[i] = q.Public()
	}
	return out, nil
}

func (s *PackageService) published(ctx context.Context, st store.Store, id int64, lock bool) (*models.QuestionPackage, error) {
	get := st.GetPackage
	if lock {
		get = st.GetPackageForUpdate
	}
	p, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Status != models.PackagePublished {
		return nil, models.ErrPackageNotFound
	}
	return p, nil
}

type PackageAnswer struct {
	QuestionID int64
	Answer     string
}

type AttemptInput struct {
	Answers   []PackageAnswer
	TimeTaken int // seconds
}

type GradedAnswer struct {
	QuestionID    int64  `json:"question_id"`
	Answer        string `json:"answer"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

type AttemptResult struct {
	Attempt *models.PackageAttempt  `json:"attempt"`
	Package *models.QuestionPackage `json:"package"`
	Answers []GradedAnswer          `json:"answers"`
}

// SubmitAttempt grades a player's answers to a published package and folds the
// attempt into the package statistics. An attempt that answers every question
// is completed.
func (s *PackageService) SubmitAttempt(ctx context.Context, player *models.Player, packageID int64, in AttemptInput) (*AttemptResult, error) {
	if player == nil {
		return nil, models.ErrInvalidCredentials
	}
	if in.TimeTaken < 0 {
		return nil, fmt.Errorf("%w: time_taken must not be negative", models.ErrValidation)
	}

	var res *AttemptResult
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		p, err := s.published(ctx, tx, packageID, true)
		if err != nil {
			return err
		}
		qs, err := tx.PackageQuestions(ctx, packageID)
		if err != nil {
			return err
		}
		byID := make(map[int64]*models.Question, len(qs))
		for _, q := range qs {
			byID[q.ID] = q
		}

		graded := make([]GradedAnswer, 0, len(in.Answers))
		seen := make(map[int64]bool, len(in.Answers))
		correct := 0
		for _, a := range in.Answers {
			q, ok := byID[a.QuestionID]
			if !ok {
				return fmt.Errorf("%w: question %d is not in this package", models.ErrValidation, a.QuestionID)
			}
			if seen[a.QuestionID] {
				return fmt.Errorf("%w: question %d answered twice", models.ErrValidation, a.QuestionID)
			}
			seen[a.QuestionID] = true

			isCorrect := q.IsCorrect(a.Answer)
			if isCorrect {
				correct++
			}
			s.metrics.AnswerGraded(isCorrect)
			graded = append(graded, GradedAnswer{
				QuestionID:    q.ID,
				Answer:        a.Answer,
				IsCorrect:     isCorrect,
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
			})
		}

		now := s.now()
		attempt := &models.PackageAttempt{
			PlayerID:       player.ID,
			PackageID:      packageID,
			TotalQuestions: len(qs),
			CorrectAnswers: correct,
			TimeTaken:      in.TimeTaken,
			Completed:      len(qs) > 0 && len(seen) == len(qs),
			StartedAt:      now,
		}
		if attempt.Completed {
			attempt.CompletedAt = &now
		}
		attempt.Grade()
		if err := tx.CreateAttempt(ctx, attempt); err != nil {
			return err
		}

		p.RecordAttempt(attempt)
		if err := tx.UpdatePackage(ctx, p); err != nil {
			return err
		}

		res = &AttemptResult{Attempt: attempt, Package: p, Answers: graded}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"package_id": packageID,
		"username":   player.Username,
		"score":      res.Attempt.Score,
		"completed":  res.Attempt.Completed,
	}).Info("package attempt recorded")
	return res, nil
}

// Attempts lists a player's package attempts, newest first.
func (s *PackageService) Attempts(ctx context.Context, playerID int64) ([]*models.PackageAttempt, error) {
	out, err := s.store.ListAttempts(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*models.PackageAttempt{}
	}
	return out, nil
}
