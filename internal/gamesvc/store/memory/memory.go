package memory

import (
	"context"
	"fmt"
	"maps"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/store"
)

// Store is an in-memory implementation of store.Store. A single mutex
// serializes every call, and WithTx holds it for the whole transaction.
type Store struct {
	mu  sync.Mutex
	st  *state
	rnd *rand.Rand
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		st:  newState(),
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type participantKey struct{ gameID, playerID int64 }

type sequences struct {
	game, player, participant, question, response, pkg, attempt int64
}

// state keeps cloned values only, so a shallow copy of the maps is a full snapshot.
type state struct {
	games       map[int64]*models.Game
	gameByMatch map[string]int64

	players    map[int64]*models.Player
	byUsername map[string]int64
	byUUID     map[string]int64

	participants  map[int64]*models.Participant
	byParticipant map[participantKey]int64

	questions map[int64]*models.Question

	responses     map[int64]*models.GameResponse
	responseOwner map[int64]int64

	packages map[int64]*models.QuestionPackage
	attempts map[int64]*models.PackageAttempt

	seq sequences
}

func newState() *state {
	return &state{
		games:         make(map[int64]*models.Game),
		gameByMatch:   make(map[string]int64),
		players:       make(map[int64]*models.Player),
		byUsername:    make(map[string]int64),
		byUUID:        make(map[string]int64),
		participants:  make(map[int64]*models.Participant),
		byParticipant: make(map[participantKey]int64),
		questions:     make(map[int64]*models.Question),
		responses:     make(map[int64]*models.GameResponse),
		responseOwner: make(map[int64]int64),
		packages:      make(map[int64]*models.QuestionPackage),
		attempts:      make(map[int64]*models.PackageAttempt),
	}
}

func (st *state) snapshot() *state {
	return &state{
		games:         maps.Clone(st.games),
		gameByMatch:   maps.Clone(st.gameByMatch),
		players:       maps.Clone(st.players),
		byUsername:    maps.Clone(st.byUsername),
		byUUID:        maps.Clone(st.byUUID),
		participants:  maps.Clone(st.participants),
		byParticipant: maps.Clone(st.byParticipant),
		questions:     maps.Clone(st.questions),
		responses:     maps.Clone(st.responses),
		responseOwner: maps.Clone(st.responseOwner),
		packages:      maps.Clone(st.packages),
		attempts:      maps.Clone(st.attempts),
		seq:           st.seq,
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.st.snapshot()
	if err := fn(&tx{st: s.st, rnd: s.rnd}); err != nil {
		s.st = before
		return err
	}
	return nil
}

// tx is the view handed to WithTx callbacks; the Store lock is already held.
type tx struct {
	st  *state
	rnd *rand.Rand
}

func (t *tx) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(t)
}

func (t *tx) CreateGame(_ context.Context, g *models.Game) error { return t.st.createGame(g) }
func (t *tx) GetGameByMatchID(_ context.Context, matchID string) (*models.Game, error) {
	return t.st.gameByMatchID(matchID), nil
}
func (t *tx) GetGameForUpdate(_ context.Context, matchID string) (*models.Game, error) {
	return t.st.gameByMatchID(matchID), nil
}
func (t *tx) UpdateGame(_ context.Context, g *models.Game) error { return t.st.updateGame(g) }

func (t *tx) CreatePlayer(_ context.Context, p *models.Player) error { return t.st.createPlayer(p) }
func (t *tx) GetPlayerByID(_ context.Context, id int64) (*models.Player, error) {
	return t.st.playerByID(id), nil
}
func (t *tx) GetPlayerByUsername(_ context.Context, username string) (*models.Player, error) {
	return t.st.playerByID(t.st.byUsername[username]), nil
}
func (t *tx) GetPlayerByUUID(_ context.Context, uuid string) (*models.Player, error) {
	return t.st.playerByID(t.st.byUUID[uuid]), nil
}
func (t *tx) UpdatePlayer(_ context.Context, p *models.Player) error { return t.st.updatePlayer(p) }
func (t *tx) UpdatePlayerProfile(_ context.Context, p *models.Player) error {
	return t.st.updatePlayerProfile(p)
}
func (t *tx) SetPlayerUUID(_ context.Context, id int64, uuid string) error {
	return t.st.setPlayerUUID(id, uuid)
}
func (t *tx) ListPlayers(_ context.Context) ([]*models.Player, error) {
	return t.st.listPlayers(), nil
}

func (t *tx) CreateParticipant(_ context.Context, p *models.Participant) error {
	return t.st.createParticipant(p)
}
func (t *tx) GetParticipant(_ context.Context, gameID, playerID int64) (*models.Participant, error) {
	return t.st.participant(gameID, playerID), nil
}
func (t *tx) ListParticipants(_ context.Context, gameID int64) ([]*models.Participant, error) {
	return t.st.listParticipants(gameID), nil
}
func (t *tx) UpdateParticipant(_ context.Context, p *models.Participant) error {
	return t.st.updateParticipant(p)
}

func (t *tx) CreateQuestion(_ context.Context, q *models.Question) error {
	return t.st.createQuestion(q)
}
func (t *tx) GetQuestion(_ context.Context, id int64) (*models.Question, error) {
	return t.st.question(id), nil
}
func (t *tx) QuestionsByCard(_ context.Context, card models.Card) ([]*models.Question, error) {
	return t.st.questionsByCard(card), nil
}
func (t *tx) RandomQuestion(_ context.Context) (*models.Question, error) {
	return t.st.randomQuestion(t.rnd), nil
}

func (t *tx) CreateResponse(_ context.Context, r *models.GameResponse) error {
	return t.st.createResponse(r)
}
func (t *tx) GetResponseByParticipant(_ context.Context, participantID int64) (*models.GameResponse, error) {
	return t.st.responseByParticipant(participantID), nil
}
func (t *tx) ListResponses(_ context.Context, gameID int64) ([]*models.GameResponse, error) {
	return t.st.listResponses(gameID), nil
}
func (t *tx) UpdateResponse(_ context.Context, r *models.GameResponse) error {
	return t.st.updateResponse(r)
}

func (t *tx) CreatePackage(_ context.Context, p *models.QuestionPackage) error {
	return t.st.createPackage(p)
}
func (t *tx) GetPackage(_ context.Context, id int64) (*models.QuestionPackage, error) {
	return t.st.pkg(id), nil
}
func (t *tx) GetPackageForUpdate(_ context.Context, id int64) (*models.QuestionPackage, error) {
	return t.st.pkg(id), nil
}
func (t *tx) ListPackages(_ context.Context, status models.PackageStatus) ([]*models.QuestionPackage, error) {
	return t.st.listPackages(status), nil
}
func (t *tx) UpdatePackage(_ context.Context, p *models.QuestionPackage) error {
	return t.st.updatePackage(p)
}
func (t *tx) PackageQuestions(_ context.Context, packageID int64) ([]*models.Question, error) {
	return t.st.packageQuestions(packageID), nil
}
func (t *tx) CreateAttempt(_ context.Context, a *models.PackageAttempt) error {
	return t.st.createAttempt(a)
}
func (t *tx) ListAttempts(_ context.Context, playerID int64) ([]*models.PackageAttempt, error) {
	return t.st.listAttempts(playerID), nil
}

// locked runs fn against a tx view while holding the store lock.
func locked[T any](s *Store, fn func(t *tx) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&tx{st: s.st, rnd: s.rnd})
}

func lockedErr(s *Store, fn func(t *tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&tx{st: s.st, rnd: s.rnd})
}

func (s *Store) CreateGame(ctx context.Context, g *models.Game) error {
	return lockedErr(s, func(t *tx) error { return t.CreateGame(ctx, g) })
}
func (s *Store) GetGameByMatchID(ctx context.Context, matchID string) (*models.Game, error) {
	return locked(s, func(t *tx) (*models.Game, error) { return t.GetGameByMatchID(ctx, matchID) })
}

// GetGameForUpdate outside WithTx is a plain read.
func (s *Store) GetGameForUpdate(ctx context.Context, matchID string) (*models.Game, error) {
	return locked(s, func(t *tx) (*models.Game, error) { return t.GetGameForUpdate(ctx, matchID) })
}
func (s *Store) UpdateGame(ctx context.Context, g *models.Game) error {
	return lockedErr(s, func(t *tx) error { return t.UpdateGame(ctx, g) })
}

func (s *Store) CreatePlayer(ctx context.Context, p *models.Player) error {
	return lockedErr(s, func(t *tx) error { return t.CreatePlayer(ctx, p) })
}
func (s *Store) GetPlayerByID(ctx context.Context, id int64) (*models.Player, error) {
	return locked(s, func(t *tx) (*models.Player, error) { return t.GetPlayerByID(ctx, id) })
}
func (s *Store) GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error) {
	return locked(s, func(t *tx) (*models.Player, error) { return t.GetPlayerByUsername(ctx, username) })
}
func (s *Store) GetPlayerByUUID(ctx context.Context, uuid string) (*models.Player, error) {
	return locked(s, func(t *tx) (*models.Player, error) { return t.GetPlayerByUUID(ctx, uuid) })
}
func (s *Store) UpdatePlayer(ctx context.Context, p *models.Player) error {
	return lockedErr(s, func(t *tx) error { return t.UpdatePlayer(ctx, p) })
}
func (s *Store) UpdatePlayerProfile(ctx context.Context, p *models.Player) error {
	return lockedErr(s, func(t *tx) error { return t.UpdatePlayerProfile(ctx, p) })
}
func (s *Store) SetPlayerUUID(ctx context.Context, id int64, uuid string) error {
	return lockedErr(s, func(t *tx) error { return t.SetPlayerUUID(ctx, id, uuid) })
}
func (s *Store) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	return locked(s, func(t *tx) ([]*models.Player, error) { return t.ListPlayers(ctx) })
}

func (s *Store) CreateParticipant(ctx context.Context, p *models.Participant) error {
	return lockedErr(s, func(t *tx) error { return t.CreateParticipant(ctx, p) })
}
func (s *Store) GetParticipant(ctx context.Context, gameID, playerID int64) (*models.Participant, error) {
	return locked(s, func(t *tx) (*models.Participant, error) { return t.GetParticipant(ctx, gameID, playerID) })
}
func (s *Store) ListParticipants(ctx context.Context, gameID int64) ([]*models.Participant, error) {
	return locked(s, func(t *tx) ([]*models.Participant, error) { return t.ListParticipants(ctx, gameID) })
}
func (s *Store) UpdateParticipant(ctx context.Context, p *models.Participant) error {
	return lockedErr(s, func(t *tx) error { return t.UpdateParticipant(ctx, p) })
}

func (s *Store) CreateQuestion(ctx context.Context, q *models.Question) error {
	return lockedErr(s, func(t *tx) error { return t.CreateQuestion(ctx, q) })
}
func (s *Store) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	return locked(s, func(t *tx) (*models.Question, error) { return t.GetQuestion(ctx, id) })
}
func (s *Store) QuestionsByCard(ctx context.Context, card models.Card) ([]*models.Question, error) {
	return locked(s, func(t *tx) ([]*models.Question, error) { return t.QuestionsByCard(ctx, card) })
}
func (s *Store) RandomQuestion(ctx context.Context) (*models.Question, error) {
	return locked(s, func(t *tx) (*models.Question, error) { return t.RandomQuestion(ctx) })
}

func (s *Store) CreateResponse(ctx context.Context, r *models.GameResponse) error {
	return lockedErr(s, func(t *tx) error { return t.CreateResponse(ctx, r) })
}
func (s *Store) GetResponseByParticipant(ctx context.Context, participantID int64) (*models.GameResponse, error) {
	return locked(s, func(t *tx) (*models.GameResponse, error) { return t.GetResponseByParticipant(ctx, participantID) })
}
func (s *Store) ListResponses(ctx context.Context, gameID int64) ([]*models.GameResponse, error) {
	return locked(s, func(t *tx) ([]*models.GameResponse, error) { return t.ListResponses(ctx, gameID) })
}
func (s *Store) UpdateResponse(ctx context.Context, r *models.GameResponse) error {
	return lockedErr(s, func(t *tx) error { return t.UpdateResponse(ctx, r) })
}

func (s *Store) CreatePackage(ctx context.Context, p *models.QuestionPackage) error {
	return lockedErr(s, func(t *tx) error { return t.CreatePackage(ctx, p) })
}
func (s *Store) GetPackage(ctx context.Context, id int64) (*models.QuestionPackage, error) {
	return locked(s, func(t *tx) (*models.QuestionPackage, error) { return t.GetPackage(ctx, id) })
}

// GetPackageForUpdate outside WithTx is a plain read.
func (s *Store) GetPackageForUpdate(ctx context.Context, id int64) (*models.QuestionPackage, error) {
	return locked(s, func(t *tx) (*models.QuestionPackage, error) { return t.GetPackageForUpdate(ctx, id) })
}
func (s *Store) ListPackages(ctx context.Context, status models.PackageStatus) ([]*models.QuestionPackage, error) {
	return locked(s, func(t *tx) ([]*models.QuestionPackage, error) { return t.ListPackages(ctx, status) })
}
func (s *Store) UpdatePackage(ctx context.Context, p *models.QuestionPackage) error {
	return lockedErr(s, func(t *tx) error { return t.UpdatePackage(ctx, p) })
}
func (s *Store) PackageQuestions(ctx context.Context, packageID int64) ([]*models.Question, error) {
	return locked(s, func(t *tx) ([]*models.Question, error) { return t.PackageQuestions(ctx, packageID) })
}
func (s *Store) CreateAttempt(ctx context.Context, a *models.PackageAttempt) error {
	return lockedErr(s, func(t *tx) error { return t.CreateAttempt(ctx, a) })
}
func (s *Store) ListAttempts(ctx context.Context, playerID int64) ([]*models.PackageAttempt, error) {
	return locked(s, func(t *tx) ([]*models.PackageAttempt, error) { return t.ListAttempts(ctx, playerID) })
}

func now() time.Time { return time.Now().UTC() }

func (st *state) createGame(g *models.Game) error {
	if _, ok := st.gameByMatch[g.MatchID]; ok {
		return fmt.Errorf("%w: match %s already exists", models.ErrConflict, g.MatchID)
	}
	st.seq.game++
	g.ID = st.seq.game
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now()
	}
	g.UpdatedAt = g.CreatedAt
	st.games[g.ID] = g.Clone()
	st.gameByMatch[g.MatchID] = g.ID
	return nil
}

func (st *state) gameByMatchID(matchID string) *models.Game {
	g, ok := st.games[st.gameByMatch[matchID]]
	if !ok {
		return nil
	}
	return g.Clone()
}

func (st *state) updateGame(g *models.Game) error {
	if _, ok := st.games[g.ID]; !ok {
		return models.ErrGameNotFound
	}
	g.UpdatedAt = now()
	st.games[g.ID] = g.Clone()
	return nil
}

func (st *state) createPlayer(p *models.Player) error {
	if _, ok := st.byUsername[p.Username]; ok {
		return fmt.Errorf("%w: %s", models.ErrUsernameTaken, p.Username)
	}
	st.seq.player++
	p.ID = st.seq.player
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	p.UpdatedAt = p.CreatedAt
	st.players[p.ID] = p.Clone()
	st.byUsername[p.Username] = p.ID
	if p.UUID != "" {
		st.byUUID[p.UUID] = p.ID
	}
	return nil
}

func (st *state) playerByID(id int64) *models.Player {
	p, ok := st.players[id]
	if !ok {
		return nil
	}
	return p.Clone()
}

func (st *state) updatePlayer(p *models.Player) error {
	old, ok := st.players[p.ID]
	if !ok {
		return models.ErrPlayerNotFound
	}
	// identity columns are immutable
	c := p.Clone()
	c.UUID, c.Username, c.PasswordHash, c.CreatedAt = old.UUID, old.Username, old.PasswordHash, old.CreatedAt
	c.UpdatedAt = now()
	p.UpdatedAt = c.UpdatedAt
	st.players[p.ID] = c
	return nil
}

func (st *state) updatePlayerProfile(p *models.Player) error {
	old, ok := st.players[p.ID]
	if !ok {
		return models.ErrPlayerNotFound
	}
	c := old.Clone()
	c.PlayerName, c.Email, c.Phone = p.PlayerName, p.Email, p.Phone
	c.AgeGroup, c.Gender, c.Province, c.District = p.AgeGroup, p.Gender, p.Province, p.District
	c.UpdatedAt = now()
	p.UpdatedAt = c.UpdatedAt
	st.players[p.ID] = c
	return nil
}

func (st *state) setPlayerUUID(id int64, uuid string) error {
	old, ok := st.players[id]
	if !ok {
		return models.ErrPlayerNotFound
	}
	if owner, taken := st.byUUID[uuid]; taken && owner != id {
		return fmt.Errorf("%w: token already in use", models.ErrConflict)
	}
	c := old.Clone()
	delete(st.byUUID, c.UUID)
	c.UUID = uuid
	c.UpdatedAt = now()
	st.players[id] = c
	st.byUUID[uuid] = id
	return nil
}

func (st *state) listPlayers() []*models.Player {
	out := make([]*models.Player, 0, len(st.players))
	for _, p := range st.players {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (st *state) createParticipant(p *models.Participant) error {
	key := participantKey{p.GameID, p.PlayerID}
	if _, ok := st.byParticipant[key]; ok {
		return models.ErrDuplicateSubmission
	}
	st.seq.participant++
	p.ID = st.seq.participant
	if p.SubmittedAt.IsZero() {
		p.SubmittedAt = now()
	}
	st.participants[p.ID] = p.Clone()
	st.byParticipant[key] = p.ID
	return nil
}

func (st *state) participant(gameID, playerID int64) *models.Participant {
	p, ok := st.participants[st.byParticipant[participantKey{gameID, playerID}]]
	if !ok {
		return nil
	}
	return p.Clone()
}

func (st *state) listParticipants(gameID int64) []*models.Participant {
	var out []*models.Participant
	for _, p := range st.participants {
		if p.GameID == gameID {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (st *state) updateParticipant(p *models.Participant) error {
	if _, ok := st.participants[p.ID]; !ok {
		return models.ErrParticipantNotFound
	}
	st.participants[p.ID] = p.Clone()
	return nil
}

func (st *state) createQuestion(q *models.Question) error {
	st.seq.question++
	q.ID = st.seq.question
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now()
	}
	st.questions[q.ID] = q.Clone()
	return nil
}

func (st *state) question(id int64) *models.Question {
	q, ok := st.questions[id]
	if !ok {
		return nil
	}
	return q.Clone()
}

func (st *state) questionsByCard(card models.Card) []*models.Question {
	var out []*models.Question
	for _, q := range st.questions {
		if q.Card == card {
			out = append(out, q.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (st *state) randomQuestion(rnd *rand.Rand) *models.Question {
	var pool []*models.Question
	for _, q := range st.questions {
		if q.Explanation != "" {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool[rnd.Intn(len(pool))].Clone()
}

func (st *state) createResponse(r *models.GameResponse) error {
	if _, ok := st.responseOwner[r.ParticipantID]; ok {
		return fmt.Errorf("%w: response already exists for participant %d", models.ErrConflict, r.ParticipantID)
	}
	st.seq.response++
	r.ID = st.seq.response
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now()
	}
	st.responses[r.ID] = r.Clone()
	st.responseOwner[r.ParticipantID] = r.ID
	return nil
}

func (st *state) responseByParticipant(participantID int64) *models.GameResponse {
	r, ok := st.responses[st.responseOwner[participantID]]
	if !ok {
		return nil
	}
	return r.Clone()
}

func (st *state) listResponses(gameID int64) []*models.GameResponse {
	var out []*models.GameResponse
	for _, r := range st.responses {
		if r.GameID == gameID {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (st *state) updateResponse(r *models.GameResponse) error {
	if _, ok := st.responses[r.ID]; !ok {
		return models.ErrResponseNotFound
	}
	st.responses[r.ID] = r.Clone()
	return nil
}

func (st *state) createPackage(p *models.QuestionPackage) error {
	for _, id := range p.QuestionIDs {
		if _, ok := st.questions[id]; !ok {
			return fmt.Errorf("%w: %d", models.ErrQuestionNotFound, id)
		}
	}
	st.seq.pkg++
	p.ID = st.seq.pkg
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	p.UpdatedAt = p.CreatedAt
	p.QuestionCount = len(p.QuestionIDs)
	st.packages[p.ID] = p.Clone()
	return nil
}

func (st *state) pkg(id int64) *models.QuestionPackage {
	p, ok := st.packages[id]
	if !ok {
		return nil
	}
	return p.Clone()
}

func (st *state) listPackages(status models.PackageStatus) []*models.QuestionPackage {
	var out []*models.QuestionPackage
	for _, p := range st.packages {
		if p.Status == status {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (st *state) updatePackage(p *models.QuestionPackage) error {
	old, ok := st.packages[p.ID]
	if !ok {
		return models.ErrPackageNotFound
	}
	c := old.Clone()
	c.Status = p.Status
	c.TotalAttempts, c.CompletedAttempts = p.TotalAttempts, p.CompletedAttempts
	c.AverageScore, c.CompletionRate = p.AverageScore, p.CompletionRate
	c.UpdatedAt = now()
	p.UpdatedAt = c.UpdatedAt
	st.packages[p.ID] = c
	return nil
}

func (st *state) packageQuestions(packageID int64) []*models.Question {
	p, ok := st.packages[packageID]
	if !ok {
		return nil
	}
	out := make([]*models.Question, 0, len(p.QuestionIDs))
	for _, id := range p.QuestionIDs {
		if q, ok := st.questions[id]; ok {
			out = append(out, q.Clone())
		}
	}
	return out
}

func (st *state) createAttempt(a *models.PackageAttempt) error {
	if _, ok := st.packages[a.PackageID]; !ok {
		return models.ErrPackageNotFound
	}
	st.seq.attempt++
	a.ID = st.seq.attempt
	if a.StartedAt.IsZero() {
		a.StartedAt = now()
	}
	st.attempts[a.ID] = a.Clone()
	return nil
}

func (st *state) listAttempts(playerID int64) []*models.PackageAttempt {
	var out []*models.PackageAttempt
	for _, a := range st.attempts {
		if a.PlayerID == playerID {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
