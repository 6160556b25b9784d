package service

import (
	"context"
	"fmt"

	"github.com/avvvet/trivia-services/internal/comm"
	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/store"
	log "github.com/sirupsen/logrus"
)

// AnswerService grades the questions handed to losing participants.
type AnswerService struct {
	*deps
}

func NewAnswerService(st store.Store, opts ...Option) *AnswerService {
	return &AnswerService{deps: newDeps(st, opts)}
}

type AnswerInput struct {
	MatchID    string
	PlayerID   int64
	Username   string
	QuestionID int64
	Answer     string
	Points     int // award-points only; <= 0 means the question's own value
}

type AnswerResult struct {
	IsCorrect     bool                 `json:"is_correct"`
	PointsAwarded int                  `json:"points_awarded"`
	CorrectAnswer string               `json:"correct_answer"`
	Explanation   string               `json:"explanation,omitempty"`
	Participant   *models.Participant  `json:"participant"`
	Response      *models.GameResponse `json:"response"`
	Player        models.PlayerStats   `json:"player"`
	Game          *models.Game         `json:"game"`
}

// answerContext is everything an answer touches, loaded under the game lock.
type answerContext struct {
	game        *models.Game
	player      *models.Player
	participant *models.Participant
	response    *models.GameResponse
	question    *models.Question
}

// SubmitAnswer grades the answer and records it. It grants no marks.
func (s *AnswerService) SubmitAnswer(ctx context.Context, in AnswerInput) (*AnswerResult, error) {
	return s.answer(ctx, in, func(ctx context.Context, tx store.Store, ac *answerContext, correct bool) (int, error) {
		if ac.response.Answered() || ac.participant.QuestionAnswered {
			return 0, models.ErrAlreadyAnswered
		}
		return 0, s.recordAnswer(ctx, tx, ac, in.Answer, correct, 0)
	})
}

// AwardPoints credits a correct answer. The participant can be credited once.
func (s *AnswerService) AwardPoints(ctx context.Context, in AnswerInput) (*AnswerResult, error) {
	return s.answer(ctx, in, func(ctx context.Context, tx store.Store, ac *answerContext, correct bool) (int, error) {
		if ac.participant.PointsAwarded() {
			return 0, models.ErrPointsAlreadyGiven
		}
		if ac.response.Answered() && ac.response.IsCorrect != nil && !*ac.response.IsCorrect {
			return 0, models.ErrAlreadyAnswered
		}
		if !correct {
			return 0, models.ErrIncorrectAnswer
		}

		points := in.Points
		if points <= 0 {
			points = ac.question.Points
		}
		if points <= 0 {
			points = 1
		}
		return points, s.recordAnswer(ctx, tx, ac, in.Answer, true, points)
	})
}

// RecordWrongAnswer stores an incorrect answer and reveals the solution.
func (s *AnswerService) RecordWrongAnswer(ctx context.Context, in AnswerInput) (*AnswerResult, error) {
	return s.answer(ctx, in, func(ctx context.Context, tx store.Store, ac *answerContext, correct bool) (int, error) {
		if ac.response.Answered() || ac.participant.QuestionAnswered {
			return 0, models.ErrAlreadyAnswered
		}
		if correct {
			return 0, models.ErrAnswerIsCorrect
		}
		return 0, s.recordAnswer(ctx, tx, ac, in.Answer, false, 0)
	})
}

type answerFunc func(ctx context.Context, tx store.Store, ac *answerContext, correct bool) (points int, err error)

func (s *AnswerService) answer(ctx context.Context, in AnswerInput, fn answerFunc) (*AnswerResult, error) {
	if in.MatchID == "" {
		return nil, fmt.Errorf("%w: match_id", models.ErrMissingField)
	}
	if in.PlayerID == 0 && in.Username == "" {
		return nil, fmt.Errorf("%w: player_id or username", models.ErrMissingField)
	}

	var (
		res    *AnswerResult
		events = &eventLog{now: s.now()}
	)
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		ac, err := s.load(ctx, tx, in)
		if err != nil {
			return err
		}

		correct := ac.question.IsCorrect(in.Answer)
		points, err := fn(ctx, tx, ac, correct)
		if err != nil {
			return err
		}

		events.add(comm.EventAnswerSubmitted, ac.game.MatchID, comm.AnswerSubmitted{PlayerID: ac.player.ID, IsCorrect: correct})
		if points > 0 {
			events.add(comm.EventPointsAwarded, ac.game.MatchID, comm.PointsAwarded{PlayerID: ac.player.ID, Points: points})
		}

		res = &AnswerResult{
			IsCorrect:     correct,
			PointsAwarded: points,
			CorrectAnswer: ac.question.CorrectAnswer,
			Explanation:   ac.question.Explanation,
			Participant:   ac.participant,
			Response:      ac.response,
			Player:        ac.player.Stats(),
			Game:          ac.game,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AnswerGraded(res.IsCorrect)
	if res.PointsAwarded > 0 {
		s.metrics.Points(res.PointsAwarded)
		log.WithFields(log.Fields{
			"match_id":  res.Game.MatchID,
			"player_id": res.Participant.PlayerID,
			"points":    res.PointsAwarded,
		}).Info("points awarded")
	}
	s.publish(events.events)
	return res, nil
}

func (s *AnswerService) load(ctx context.Context, tx store.Store, in AnswerInput) (*answerContext, error) {
	game, err := lockGame(ctx, tx, in.MatchID)
	if err != nil {
		return nil, err
	}

	player, err := resolvePlayer(ctx, tx, in.PlayerID, in.Username)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, models.ErrPlayerNotFound
	}

	participant, err := tx.GetParticipant(ctx, game.ID, player.ID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, models.ErrParticipantNotFound
	}
	if participant.IsWinner {
		return nil, models.ErrNotALoser
	}

	response, err := tx.GetResponseByParticipant(ctx, participant.ID)
	if err != nil {
		return nil, err
	}
	if response == nil {
		participants, err := tx.ListParticipants(ctx, game.ID)
		if err != nil {
			return nil, err
		}
		if response, err = s.ensureResponse(ctx, tx, game, participant, participants); err != nil {
			return nil, err
		}
	}
	if response.QuestionID == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrQuestionNotFound, models.NoQuestionAvailable)
	}
	if in.QuestionID != 0 && in.QuestionID != *response.QuestionID {
		return nil, models.ErrQuestionMismatch
	}

	question, err := tx.GetQuestion(ctx, *response.QuestionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, models.ErrQuestionNotFound
	}

	return &answerContext{
		game:        game,
		player:      player,
		participant: participant,
		response:    response,
		question:    question,
	}, nil
}

// recordAnswer writes the answer to the response, participant and player and,
// for a positive award, the marks. Team totals change only once the game has
// completed; before that they are summed from participants at finalization.
func (s *AnswerService) recordAnswer(ctx context.Context, tx store.Store, ac *answerContext,
	answer string, correct bool, points int) error {

	now := s.now()
	if !ac.response.Answered() {
		ac.response.PlayerAnswer = answer
		ac.response.IsCorrect = &correct
		ac.response.AnsweredAt = &now
		if err := tx.UpdateResponse(ctx, ac.response); err != nil {
			return err
		}
	}

	firstAnswer := !ac.participant.QuestionAnswered
	ac.participant.QuestionAnswered = true
	ac.participant.AnswerCorrect = correct
	ac.participant.MarksEarned += points
	if err := tx.UpdateParticipant(ctx, ac.participant); err != nil {
		return err
	}

	if firstAnswer {
		ac.player.QuestionsAnswered++
	}
	if correct {
		ac.player.CorrectAnswers++
	}
	ac.player.TotalMarks += points
	if err := tx.UpdatePlayer(ctx, ac.player); err != nil {
		return err
	}

	if points > 0 && ac.game.Status == models.GameCompleted {
		ac.game.AddTeamMarks(ac.participant.Team, points)
		if err := tx.UpdateGame(ctx, ac.game); err != nil {
			return err
		}
	}
	return nil
}
