package store

import (
	"context"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
)

// Lookups return (nil, nil) when the row does not exist.

type GameRepository interface {
	CreateGame(ctx context.Context, g *models.Game) error
	GetGameByMatchID(ctx context.Context, matchID string) (*models.Game, error)
	// GetGameForUpdate locks the game row until the surrounding transaction ends.
	GetGameForUpdate(ctx context.Context, matchID string) (*models.Game, error)
	UpdateGame(ctx context.Context, g *models.Game) error
}

type PlayerRepository interface {
	CreatePlayer(ctx context.Context, p *models.Player) error
	GetPlayerByID(ctx context.Context, id int64) (*models.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error)
	GetPlayerByUUID(ctx context.Context, uuid string) (*models.Player, error)
	UpdatePlayer(ctx context.Context, p *models.Player) error
	// UpdatePlayerProfile writes the editable profile columns only.
	UpdatePlayerProfile(ctx context.Context, p *models.Player) error
	// SetPlayerUUID replaces the player's API token.
	SetPlayerUUID(ctx context.Context, id int64, uuid string) error
	ListPlayers(ctx context.Context) ([]*models.Player, error)
}

type ParticipantRepository interface {
	// CreateParticipant fails with models.ErrDuplicateSubmission when the
	// (game, player) pair already exists.
	CreateParticipant(ctx context.Context, p *models.Participant) error
	GetParticipant(ctx context.Context, gameID, playerID int64) (*models.Participant, error)
	ListParticipants(ctx context.Context, gameID int64) ([]*models.Participant, error)
	UpdateParticipant(ctx context.Context, p *models.Participant) error
}

type QuestionRepository interface {
	CreateQuestion(ctx context.Context, q *models.Question) error
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)
	// QuestionsByCard returns the card's questions ordered by id.
	QuestionsByCard(ctx context.Context, card models.Card) ([]*models.Question, error)
	// RandomQuestion picks any question carrying an explanation.
	RandomQuestion(ctx context.Context) (*models.Question, error)
}

type ResponseRepository interface {
	CreateResponse(ctx context.Context, r *models.GameResponse) error
	GetResponseByParticipant(ctx context.Context, participantID int64) (*models.GameResponse, error)
	ListResponses(ctx context.Context, gameID int64) ([]*models.GameResponse, error)
	UpdateResponse(ctx context.Context, r *models.GameResponse) error
}

type PackageRepository interface {
	// CreatePackage stores the package and its question list in order.
	CreatePackage(ctx context.Context, p *models.QuestionPackage) error
	GetPackage(ctx context.Context, id int64) (*models.QuestionPackage, error)
	// GetPackageForUpdate locks the package row until the surrounding transaction ends.
	GetPackageForUpdate(ctx context.Context, id int64) (*models.QuestionPackage, error)
	// ListPackages returns packages with the given status ordered by id.
	ListPackages(ctx context.Context, status models.PackageStatus) ([]*models.QuestionPackage, error)
	// UpdatePackage writes status and attempt statistics.
	UpdatePackage(ctx context.Context, p *models.QuestionPackage) error
	// PackageQuestions returns the package's questions in package order.
	PackageQuestions(ctx context.Context, packageID int64) ([]*models.Question, error)
	CreateAttempt(ctx context.Context, a *models.PackageAttempt) error
	// ListAttempts returns a player's attempts, newest first.
	ListAttempts(ctx context.Context, playerID int64) ([]*models.PackageAttempt, error)
}

// Store is the persistence port used by the services.
type Store interface {
	GameRepository
	PlayerRepository
	ParticipantRepository
	QuestionRepository
	ResponseRepository
	PackageRepository

	// WithTx runs fn atomically. The Store passed to fn is bound to the transaction;
	// any error returned by fn rolls everything back.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
