package models

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the service wraps exactly one of them,
// which is how the HTTP layer picks a status code.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

var (
	ErrInvalidCard             = fmt.Errorf("%w: invalid card", ErrValidation)
	ErrInvalidParticipantCount = fmt.Errorf("%w: participant_count must be one of 1, 2, 4, 6", ErrValidation)
	ErrInvalidTeam             = fmt.Errorf("%w: invalid team", ErrValidation)
	ErrMissingField            = fmt.Errorf("%w: missing required field", ErrValidation)
	ErrIncorrectAnswer         = fmt.Errorf("%w: answer is not correct", ErrValidation)
	ErrAnswerIsCorrect         = fmt.Errorf("%w: answer is correct, award points instead", ErrValidation)
	ErrQuestionMismatch        = fmt.Errorf("%w: question was not assigned to this participant", ErrValidation)
	ErrNotALoser               = fmt.Errorf("%w: only losing participants answer questions", ErrValidation)
	ErrInvalidQuestion         = fmt.Errorf("%w: invalid question", ErrValidation)
	ErrInvalidMetric           = fmt.Errorf("%w: unknown leaderboard metric", ErrValidation)
	ErrInvalidLocation         = fmt.Errorf("%w: district is not valid for province", ErrValidation)
	ErrInvalidPackage          = fmt.Errorf("%w: invalid package", ErrValidation)

	ErrGameNotFound        = fmt.Errorf("%w: game not found", ErrNotFound)
	ErrPlayerNotFound      = fmt.Errorf("%w: player not found", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("%w: participant not found in game", ErrNotFound)
	ErrQuestionNotFound    = fmt.Errorf("%w: question not found", ErrNotFound)
	ErrResponseNotFound    = fmt.Errorf("%w: no question response for participant", ErrNotFound)
	ErrPackageNotFound     = fmt.Errorf("%w: package not found or not published", ErrNotFound)

	ErrDuplicateSubmission = fmt.Errorf("%w: player already submitted a result for this game", ErrConflict)
	ErrGameCompleted       = fmt.Errorf("%w: game already completed", ErrConflict)
	ErrGameCancelled       = fmt.Errorf("%w: game is cancelled", ErrConflict)
	ErrGameFull            = fmt.Errorf("%w: all participants already submitted", ErrConflict)
	ErrAlreadyAnswered     = fmt.Errorf("%w: question already answered", ErrConflict)
	ErrPointsAlreadyGiven  = fmt.Errorf("%w: points already awarded for this answer", ErrConflict)
	ErrUsernameTaken       = fmt.Errorf("%w: username already exists", ErrConflict)

	// ErrInvalidCredentials wraps no class; handlers answer 401.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
