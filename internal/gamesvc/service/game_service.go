package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/trivia-services/internal/comm"
	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/store"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type GameService struct {
	*deps
}

func NewGameService(st store.Store, opts ...Option) *GameService {
	return &GameService{deps: newDeps(st, opts)}
}

// SubmitResultInput is one player's own report of a finished match.
type SubmitResultInput struct {
	MatchID    string
	PlayerID   int64
	Username   string
	PlayerName string
	Team       int
	IsWinner   bool
	LostCard   string
}

type SubmitResult struct {
	Player      models.PlayerStats  `json:"player"`
	Participant *models.Participant `json:"participant"`
	Response    *ResponseView       `json:"response"`
	GameStatus  models.GameStatus   `json:"game_status"`
	Game        *models.Game        `json:"game"`
	Result      *models.GameResult  `json:"result,omitempty"`
}

type CompleteGameInput struct {
	MatchID     string
	CardsChosen []string
	Players     []SubmitResultInput
}

type CompleteResult struct {
	Game        *models.Game       `json:"game"`
	Submissions []*SubmitResult    `json:"submissions"`
	Result      *models.GameResult `json:"result,omitempty"`
}

type GameSnapshot struct {
	Game         *models.Game          `json:"game"`
	Participants []*models.Participant `json:"participants"`
}

func (s *GameService) CreateGame(ctx context.Context, participantCount int) (*models.Game, error) {
	if !models.ValidParticipantCount(participantCount) {
		return nil, fmt.Errorf("%w, got %d", models.ErrInvalidParticipantCount, participantCount)
	}

	now := s.now()
	game := &models.Game{
		MatchID:          uuid.NewString(),
		ParticipantCount: participantCount,
		TeamCount:        models.TeamCountFor(participantCount),
		Status:           models.GameWaiting,
		CardsChosen:      []models.Card{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateGame(ctx, game); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"match_id": game.MatchID, "participants": participantCount}).Info("game created")
	events := &eventLog{now: now}
	events.add(comm.EventGameCreated, game.MatchID, game)
	s.publish(events.events)
	return game, nil
}

// ActivateGame moves a waiting game to active. Activating an active game is a no-op.
func (s *GameService) ActivateGame(ctx context.Context, matchID string) (*models.Game, error) {
	var game *models.Game
	events := &eventLog{now: s.now()}

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		g, err := lockGame(ctx, tx, matchID)
		if err != nil {
			return err
		}
		switch g.Status {
		case models.GameCompleted:
			return models.ErrGameCompleted
		case models.GameCancelled:
			return models.ErrGameCancelled
		case models.GameWaiting:
			g.Status = models.GameActive
			if err := tx.UpdateGame(ctx, g); err != nil {
				return err
			}
			events.add(comm.EventGameActivated, g.MatchID, g)
		}
		game = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(events.events)
	return game, nil
}

// CancelGame ends a game that has not completed. Cancelling twice is a no-op.
func (s *GameService) CancelGame(ctx context.Context, matchID string) (*models.Game, error) {
	var game *models.Game
	events := &eventLog{now: s.now()}

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		g, err := lockGame(ctx, tx, matchID)
		if err != nil {
			return err
		}
		switch g.Status {
		case models.GameCompleted:
			return models.ErrGameCompleted
		case models.GameCancelled:
		default:
			g.Status = models.GameCancelled
			if err := tx.UpdateGame(ctx, g); err != nil {
				return err
			}
			events.add(comm.EventGameCancelled, g.MatchID, g)
		}
		game = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(events.events) > 0 {
		log.WithField("match_id", matchID).Info("game cancelled")
	}
	s.publish(events.events)
	return game, nil
}

func (s *GameService) GameStatus(ctx context.Context, matchID string) (*GameSnapshot, error) {
	game, err := s.store.GetGameByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, models.ErrGameNotFound
	}

	participants, err := s.store.ListParticipants(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	if participants == nil {
		participants = []*models.Participant{}
	}
	return &GameSnapshot{Game: game, Participants: participants}, nil
}

// SubmitPlayerResult records one player's result and finalizes the game when the
// last expected participant has reported.
func (s *GameService) SubmitPlayerResult(ctx context.Context, in SubmitResultInput) (*SubmitResult, error) {
	lost, err := validateSubmission(in)
	if err != nil {
		s.metrics.ResultRejected()
		return nil, err
	}

	var res *SubmitResult
	events := &eventLog{now: s.now()}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		res, err = s.submit(ctx, tx, in, lost, events)
		return err
	})
	if err != nil {
		s.metrics.ResultRejected()
		return nil, err
	}

	s.recordSubmission(res)
	s.publish(events.events)
	return res, nil
}

// CompleteGame stores the losing side's chosen cards and submits every listed
// player in order, all in one transaction.
func (s *GameService) CompleteGame(ctx context.Context, in CompleteGameInput) (*CompleteResult, error) {
	if in.MatchID == "" {
		return nil, fmt.Errorf("%w: match_id", models.ErrMissingField)
	}
	if len(in.Players) == 0 {
		return nil, fmt.Errorf("%w: players", models.ErrMissingField)
	}
	cards, err := models.ParseCards(in.CardsChosen)
	if err != nil {
		return nil, err
	}

	lost := make([]*models.Card, len(in.Players))
	for i := range in.Players {
		in.Players[i].MatchID = in.MatchID
		if lost[i], err = validateSubmission(in.Players[i]); err != nil {
			return nil, fmt.Errorf("players[%d]: %w", i, err)
		}
	}

	out := &CompleteResult{}
	events := &eventLog{now: s.now()}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		game, err := lockGame(ctx, tx, in.MatchID)
		if err != nil {
			return err
		}
		if len(cards) > 0 && !game.Status.Terminal() {
			game.CardsChosen = cards
			if err := tx.UpdateGame(ctx, game); err != nil {
				return err
			}
		}

		for i, p := range in.Players {
			res, err := s.submit(ctx, tx, p, lost[i], events)
			if err != nil {
				return fmt.Errorf("players[%d]: %w", i, err)
			}
			out.Submissions = append(out.Submissions, res)
			out.Game = res.Game
			if res.Result != nil {
				out.Result = res.Result
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.ResultRejected()
		return nil, err
	}

	for _, res := range out.Submissions {
		s.recordSubmission(res)
	}
	s.publish(events.events)
	return out, nil
}

// Finalize completes the game if every expected participant has submitted.
// It returns nil when there was nothing to do, including on repeated calls.
func (s *GameService) Finalize(ctx context.Context, matchID string) (*models.GameResult, error) {
	var result *models.GameResult
	events := &eventLog{now: s.now()}

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		game, err := lockGame(ctx, tx, matchID)
		if err != nil {
			return err
		}
		participants, err := tx.ListParticipants(ctx, game.ID)
		if err != nil {
			return err
		}
		if result = finalize(game, participants, events.now); result == nil {
			return nil
		}
		events.add(comm.EventGameCompleted, game.MatchID, result)
		return tx.UpdateGame(ctx, game)
	})
	if err != nil {
		return nil, err
	}

	if result != nil {
		s.metrics.GameCompleted()
	}
	s.publish(events.events)
	return result, nil
}

// GameResponses returns the fun fact or question of every participant, or of
// playerID alone when it is non-zero. Missing responses are generated once.
func (s *GameService) GameResponses(ctx context.Context, matchID string, playerID int64) ([]*ResponseView, error) {
	var views []*ResponseView

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		game, err := lockGame(ctx, tx, matchID)
		if err != nil {
			return err
		}
		participants, err := tx.ListParticipants(ctx, game.ID)
		if err != nil {
			return err
		}

		for _, p := range participants {
			if playerID != 0 && p.PlayerID != playerID {
				continue
			}
			resp, err := s.ensureResponse(ctx, tx, game, p, participants)
			if err != nil {
				return err
			}
			v, err := s.view(ctx, tx, resp)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		if playerID != 0 && len(views) == 0 {
			return models.ErrParticipantNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []*ResponseView{}
	}
	return views, nil
}

func (s *GameService) submit(ctx context.Context, tx store.Store, in SubmitResultInput,
	lost *models.Card, events *eventLog) (*SubmitResult, error) {

	game, err := lockGame(ctx, tx, in.MatchID)
	if err != nil {
		return nil, err
	}

	player, err := resolvePlayer(ctx, tx, in.PlayerID, in.Username)
	if err != nil {
		return nil, err
	}
	if player == nil {
		if player, err = createPlayerLazily(ctx, tx, in, events.now); err != nil {
			return nil, err
		}
	}

	existing, err := tx.GetParticipant(ctx, game.ID, player.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrDuplicateSubmission
	}

	switch {
	case game.Status == models.GameCompleted:
		return nil, models.ErrGameCompleted
	case game.Status == models.GameCancelled:
		return nil, models.ErrGameCancelled
	case game.ParticipantsSubmitted >= game.ParticipantCount:
		return nil, models.ErrGameFull
	case !game.ValidTeam(in.Team):
		return nil, fmt.Errorf("%w: team %d, game has %d team(s)", models.ErrInvalidTeam, in.Team, game.TeamCount)
	}

	participants, err := tx.ListParticipants(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	p := &models.Participant{
		GameID:      game.ID,
		PlayerID:    player.ID,
		Username:    player.Username,
		PlayerName:  player.PlayerName,
		Team:        in.Team,
		IsWinner:    in.IsWinner,
		SubmittedAt: events.now,
	}
	if in.IsWinner {
		p.MarksEarned = 1
	} else {
		if lost == nil {
			card := AssignCard(game.CardsChosen, countLosers(participants), s.intn)
			lost = &card
		}
		p.LostCard = lost
	}
	if err := tx.CreateParticipant(ctx, p); err != nil {
		return nil, err
	}
	participants = append(participants, p)

	ApplyGameOutcome(player, Outcome{Won: p.IsWinner, Marks: p.MarksEarned, PlayedAt: events.now})
	if err := tx.UpdatePlayer(ctx, player); err != nil {
		return nil, err
	}

	game.ParticipantsSubmitted++
	if game.Status == models.GameWaiting {
		game.Status = models.GameActive
	}
	result := finalize(game, participants, events.now)
	if err := tx.UpdateGame(ctx, game); err != nil {
		return nil, err
	}

	resp, err := s.ensureResponse(ctx, tx, game, p, participants)
	if err != nil {
		return nil, err
	}
	view, err := s.view(ctx, tx, resp)
	if err != nil {
		return nil, err
	}

	submitted := comm.PlayerSubmitted{
		PlayerID:     player.ID,
		Username:     player.Username,
		Team:         p.Team,
		IsWinner:     p.IsWinner,
		Submitted:    game.ParticipantsSubmitted,
		Participants: game.ParticipantCount,
	}
	if p.LostCard != nil {
		c := p.LostCard.String()
		submitted.LostCard = &c
	}
	events.add(comm.EventPlayerSubmitted, game.MatchID, submitted)
	if result != nil {
		events.add(comm.EventGameCompleted, game.MatchID, result)
	}

	return &SubmitResult{
		Player:      player.Stats(),
		Participant: p,
		Response:    view,
		GameStatus:  game.Status,
		Game:        game,
		Result:      result,
	}, nil
}

func (s *GameService) recordSubmission(res *SubmitResult) {
	s.metrics.PlayerResult(res.Participant.IsWinner)
	if res.Result != nil {
		s.metrics.GameCompleted()
		winner := 0
		if res.Result.WinningTeam != nil {
			winner = *res.Result.WinningTeam
		}
		log.WithFields(log.Fields{
			"match_id":     res.Result.MatchID,
			"team1_marks":  res.Result.Team1Marks,
			"team2_marks":  res.Result.Team2Marks,
			"winning_team": winner,
		}).Info("game completed")
	}
}

// finalize completes game once every expected participant has submitted and
// returns the summary. It returns nil when the game is not ready or is already
// terminal, so calling it again is harmless.
func finalize(game *models.Game, participants []*models.Participant, now time.Time) *models.GameResult {
	if game.Status.Terminal() || game.ParticipantsSubmitted < game.ParticipantCount {
		return nil
	}

	var marks, wins [3]int
	for _, p := range participants {
		if p.Team < 1 || p.Team > 2 {
			continue
		}
		marks[p.Team] += p.MarksEarned
		if p.IsWinner {
			wins[p.Team]++
		}
	}

	game.Team1Marks, game.Team2Marks = marks[1], marks[2]
	game.WinningTeam = nil
	switch {
	case wins[1] > wins[2]:
		team := 1
		game.WinningTeam = &team
	case wins[2] > wins[1]:
		team := 2
		game.WinningTeam = &team
	}
	if game.CompletedAt == nil {
		t := now
		game.CompletedAt = &t
	}
	game.Status = models.GameCompleted

	return &models.GameResult{
		MatchID:     game.MatchID,
		Team1Marks:  game.Team1Marks,
		Team2Marks:  game.Team2Marks,
		WinningTeam: game.WinningTeam,
		CompletedAt: *game.CompletedAt,
	}
}

func validateSubmission(in SubmitResultInput) (*models.Card, error) {
	if in.MatchID == "" {
		return nil, fmt.Errorf("%w: match_id", models.ErrMissingField)
	}
	if in.PlayerID == 0 && in.Username == "" {
		return nil, fmt.Errorf("%w: player_id or username", models.ErrMissingField)
	}
	if in.Team < 1 {
		return nil, fmt.Errorf("%w: team is required", models.ErrInvalidTeam)
	}
	if in.LostCard == "" || in.IsWinner {
		return nil, nil
	}
	card, err := models.ParseCard(in.LostCard)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func lockGame(ctx context.Context, tx store.Store, matchID string) (*models.Game, error) {
	game, err := tx.GetGameForUpdate(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, models.ErrGameNotFound
	}
	return game, nil
}

// resolvePlayer looks the player up by id, then by username. It returns nil
// when neither matches.
func resolvePlayer(ctx context.Context, tx store.Store, playerID int64, username string) (*models.Player, error) {
	if playerID > 0 {
		p, err := tx.GetPlayerByID(ctx, playerID)
		if err != nil || p != nil {
			return p, err
		}
	}
	if username != "" {
		return tx.GetPlayerByUsername(ctx, username)
	}
	return nil, nil
}

func createPlayerLazily(ctx context.Context, tx store.Store, in SubmitResultInput, now time.Time) (*models.Player, error) {
	if in.Username == "" {
		return nil, models.ErrPlayerNotFound
	}
	name := in.PlayerName
	if name == "" {
		name = in.Username
	}
	p := &models.Player{
		UUID:       uuid.NewString(),
		Username:   in.Username,
		PlayerName: name,
		CreatedAt:  now,
	}
	if err := tx.CreatePlayer(ctx, p); err != nil {
		return nil, err
	}
	log.WithField("username", p.Username).Info("player created on first submission")
	return p, nil
}

func countLosers(participants []*models.Participant) int {
	n := 0
	for _, p := range participants {
		if !p.IsWinner {
			n++
		}
	}
	return n
}
