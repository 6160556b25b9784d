package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/service"
	"github.com/avvvet/trivia-services/internal/gamesvc/store/memory"
	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

type envelope struct {
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t     *testing.T
	srv   *httptest.Server
	admin string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st := memory.NewStore()
	h := NewHandler(Services{
		Games:     service.NewGameService(st),
		Answers:   service.NewAnswerService(st),
		Players:   service.NewPlayerService(st),
		Questions: service.NewQuestionService(st),
		Packages:  service.NewPackageService(st),
	}, NewTokenAuth(testSecret), "8080")

	r := chi.NewRouter()
	h.SetRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	admin, err := AdminToken(h.tokenAuth, "ops", time.Hour)
	require.NoError(t, err)
	return &testServer{t: t, srv: srv, admin: admin}
}

func (ts *testServer) do(method, path string, body interface{}, header map[string]string) (int, envelope) {
	ts.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(ts.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(ts.t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}

func (ts *testServer) asAdmin() map[string]string {
	return map[string]string{"Authorization": "Bearer " + ts.admin}
}

func (ts *testServer) createGame(n int) *models.Game {
	ts.t.Helper()
	code, env := ts.do(http.MethodPost, "/v1/games/create", map[string]int{"participant_count": n}, nil)
	require.Equal(ts.t, http.StatusCreated, code, env.Error)
	var g models.Game
	require.NoError(ts.t, json.Unmarshal(env.Data, &g))
	return &g
}

func (ts *testServer) addQuestion(card, text, answer string) *models.Question {
	ts.t.Helper()
	code, env := ts.do(http.MethodPost, "/v1/admin/questions", map[string]interface{}{
		"card":           card,
		"question_text":  text,
		"options":        []string{"Kigali", "Huye", "Musanze"},
		"correct_answer": answer,
		"explanation":    "It is the capital.",
		"points":         2,
	}, ts.asAdmin())
	require.Equal(ts.t, http.StatusCreated, code, env.Error)
	var q models.Question
	require.NoError(ts.t, json.Unmarshal(env.Data, &q))
	return &q
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	code, env := ts.do(http.MethodGet, "/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, env.Message, "8080")
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t)

	g := ts.createGame(4)
	assert.NotEmpty(t, g.MatchID)
	assert.Equal(t, 4, g.ParticipantCount)
	assert.Equal(t, 2, g.TeamCount)
	assert.Equal(t, models.GameWaiting, g.Status)

	code, env := ts.do(http.MethodPost, "/v1/games/create", map[string]int{"participant_count": 3}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "participant_count")

	code, _ = ts.do(http.MethodPost, "/v1/games/create", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTwoPlayerGame(t *testing.T) {
	ts := newTestServer(t)
	q := ts.addQuestion("S3", "What is the capital of Rwanda?", "Kigali")
	g := ts.createGame(2)

	code, env := ts.do(http.MethodPost, "/v1/games/submit-player-result", map[string]interface{}{
		"match_id": g.MatchID, "username": "alice", "team": 1, "is_winner": true,
	}, nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = ts.do(http.MethodPost, "/v1/games/submit-completed", map[string]interface{}{
		"match_id": g.MatchID, "username": "bob", "team": 2, "is_winner": false, "lost_card": "S3",
	}, nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	var res struct {
		GameStatus models.GameStatus `json:"game_status"`
		Game       models.Game       `json:"game"`
		Response   struct {
			ResponseType models.ResponseType `json:"response_type"`
			QuestionID   *int64              `json:"question_id"`
			Question     *models.Question    `json:"question"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.GameCompleted, res.GameStatus)
	require.NotNil(t, res.Game.WinningTeam)
	assert.Equal(t, 1, *res.Game.WinningTeam)
	assert.Equal(t, 1, res.Game.Team1Marks)
	assert.Equal(t, 0, res.Game.Team2Marks)
	assert.Equal(t, models.ResponseQuestion, res.Response.ResponseType)
	require.NotNil(t, res.Response.QuestionID)
	assert.Equal(t, q.ID, *res.Response.QuestionID)
	require.NotNil(t, res.Response.Question)
	assert.Empty(t, res.Response.Question.CorrectAnswer)

	code, env = ts.do(http.MethodGet, "/v1/games/"+g.MatchID+"/status", nil, nil)
	require.Equal(t, http.StatusOK, code)
	var snap service.GameSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Len(t, snap.Participants, 2)

	code, env = ts.do(http.MethodGet, "/v1/games/"+g.MatchID+"/responses", nil, nil)
	require.Equal(t, http.StatusOK, code)
	var views []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &views))
	assert.Len(t, views, 2)

	// bob's question answers through award-points exactly once
	bob := snap.Participants[1].PlayerID
	award := map[string]interface{}{
		"match_id": g.MatchID, "player_id": bob, "question_id": q.ID, "answer": " kigali ",
	}
	code, env = ts.do(http.MethodPost, "/v1/games/award-points", award, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var ar service.AnswerResult
	require.NoError(t, json.Unmarshal(env.Data, &ar))
	assert.True(t, ar.IsCorrect)
	assert.Equal(t, 2, ar.PointsAwarded)
	assert.Equal(t, 2, ar.Game.Team2Marks)

	code, env = ts.do(http.MethodPost, "/v1/games/award-points", award, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "points already awarded")

	code, env = ts.do(http.MethodGet, "/v1/players/bob/stats", nil, nil)
	require.Equal(t, http.StatusOK, code)
	var stats models.PlayerStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.GamesLost)
	assert.Equal(t, 2, stats.TotalMarks)
	assert.Equal(t, 100.0, stats.AnswerAccuracy)
}

func TestSubmitAnswerUsesAssignedQuestion(t *testing.T) {
	ts := newTestServer(t)
	q := ts.addQuestion("S3", "What is the capital of Rwanda?", "Kigali")
	g := ts.createGame(2)

	code, env := ts.do(http.MethodPost, "/v1/games/submit-player-result", map[string]interface{}{
		"match_id": g.MatchID, "username": "alice", "team": 1, "is_winner": true,
	}, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	code, env = ts.do(http.MethodPost, "/v1/games/submit-player-result", map[string]interface{}{
		"match_id": g.MatchID, "username": "bob", "team": 2, "is_winner": false, "lost_card": "S3",
	}, nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = ts.do(http.MethodPost, "/v1/games/submit-answer", map[string]interface{}{
		"match_id": g.MatchID, "username": "bob", "answer": "Kigali",
	}, nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	var ar service.AnswerResult
	require.NoError(t, json.Unmarshal(env.Data, &ar))
	assert.True(t, ar.IsCorrect)
	assert.Equal(t, "Kigali", ar.CorrectAnswer)
	require.NotNil(t, ar.Response.QuestionID)
	assert.Equal(t, q.ID, *ar.Response.QuestionID)

	// answered questions reveal correct_answer and explanation
	code, env = ts.do(http.MethodGet, "/v1/games/"+g.MatchID+"/responses", nil, nil)
	require.Equal(t, http.StatusOK, code)
	var views []service.ResponseView
	require.NoError(t, json.Unmarshal(env.Data, &views))
	revealed := false
	for _, v := range views {
		if v.Question != nil {
			assert.Equal(t, "Kigali", v.Question.CorrectAnswer)
			assert.Equal(t, "It is the capital.", v.Question.Explanation)
			revealed = true
		}
	}
	assert.True(t, revealed)

	code, env = ts.do(http.MethodPost, "/v1/games/submit-answer", map[string]interface{}{
		"match_id": g.MatchID, "username": "bob", "question_id": -1, "answer": "Kigali",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "question_id")
}

func TestSubmitRejections(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(2)

	code, env := ts.do(http.MethodPost, "/v1/games/submit-player-result", map[string]interface{}{
		"match_id": g.MatchID, "username": "carol", "team": 2, "is_winner": false, "lost_card": "Z9",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "invalid card")

	_, env = ts.do(http.MethodGet, "/v1/games/"+g.MatchID+"/status", nil, nil)
	var snap service.GameSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Empty(t, snap.Participants)

	code, env = ts.do(http.MethodPost, "/v1/games/submit-player-result", map[string]interface{}{
		"match_id": g.MatchID, "username": "carol", "team": 1,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "is_winner is required")

	body := map[string]interface{}{"match_id": g.MatchID, "username": "carol", "team": 1, "is_winner": true}
	code, _ = ts.do(http.MethodPost, "/v1/games/submit-player-result", body, nil)
	require.Equal(t, http.StatusOK, code)
	code, env = ts.do(http.MethodPost, "/v1/games/submit-player-result", body, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "already submitted")

	code, _ = ts.do(http.MethodGet, "/v1/games/missing/status", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCompleteGame(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(2)

	code, env := ts.do(http.MethodPost, "/v1/games/complete", map[string]interface{}{
		"match_id":     g.MatchID,
		"cards_chosen": []string{"HJ"},
		"players": []map[string]interface{}{
			{"username": "dan", "team": 1, "is_winner": false},
			{"username": "eve", "team": 2, "is_winner": true},
		},
	}, nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	var res service.CompleteResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.GameCompleted, res.Game.Status)
	require.NotNil(t, res.Result)
	require.NotNil(t, res.Result.WinningTeam)
	assert.Equal(t, 2, *res.Result.WinningTeam)

	code, env = ts.do(http.MethodPost, "/v1/games/complete", map[string]interface{}{
		"match_id": g.MatchID, "cards_chosen": []string{"X1"},
		"players": []map[string]interface{}{{"username": "dan", "team": 1, "is_winner": false}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "invalid card")
}

func TestPlayerAccount(t *testing.T) {
	ts := newTestServer(t)

	reg := map[string]string{
		"username": "frank", "player_name": "Frank", "phone": "0780000000",
		"password": "secret1", "password_confirm": "secret1",
		"province": "Kigali City", "district": "Gasabo",
	}
	code, env := ts.do(http.MethodPost, "/v1/players/register", reg, nil)
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, env = ts.do(http.MethodPost, "/v1/players/register", reg, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "username already exists")

	code, _ = ts.do(http.MethodPost, "/v1/players/login", map[string]string{"username": "frank", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = ts.do(http.MethodPost, "/v1/players/login", map[string]string{"username": "frank", "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)

	code, env = ts.do(http.MethodGet, "/v1/players/me", nil, map[string]string{"Authorization": "Token " + login.Token})
	require.Equal(t, http.StatusOK, code)
	var me models.Player
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "frank", me.Username)

	code, _ = ts.do(http.MethodGet, "/v1/players/me", nil, map[string]string{"Authorization": "Token not-a-uuid"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = ts.do(http.MethodGet, "/v1/players/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterPasswordConfirm(t *testing.T) {
	ts := newTestServer(t)

	reg := map[string]string{
		"player_name": "Grace", "username": "grace", "email": "grace@example.rw",
		"phone": "0781111111", "password": "secret1", "password_confirm": "secret1",
		"age_group": "20-24", "gender": "female", "province": "Southern Province", "district": "Huye",
	}
	code, env := ts.do(http.MethodPost, "/v1/players/register", reg, nil)
	require.Equal(t, http.StatusCreated, code, env.Error)

	reg["username"] = "grace2"
	reg["password_confirm"] = "secret2"
	code, env = ts.do(http.MethodPost, "/v1/players/register", reg, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "passwords do not match")

	delete(reg, "password_confirm")
	code, env = ts.do(http.MethodPost, "/v1/players/register", reg, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "password_confirm is required")
}

func TestAdminRoutesRequireJWT(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(1)

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/v1/admin/games/"+g.MatchID+"/cancel", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	code, env := ts.do(http.MethodPost, "/v1/admin/games/"+g.MatchID+"/cancel", nil, ts.asAdmin())
	require.Equal(t, http.StatusOK, code, env.Error)
	var cancelled models.Game
	require.NoError(t, json.Unmarshal(env.Data, &cancelled))
	assert.Equal(t, models.GameCancelled, cancelled.Status)
}

func TestCardQuestionsAndFormData(t *testing.T) {
	ts := newTestServer(t)
	ts.addQuestion("hj", "Which city hosts the national university?", "Huye")

	code, env := ts.do(http.MethodGet, "/v1/cards/HJ/questions", nil, nil)
	require.Equal(t, http.StatusOK, code)
	var qs []models.Question
	require.NoError(t, json.Unmarshal(env.Data, &qs))
	require.Len(t, qs, 1)
	assert.Equal(t, models.Card("HJ"), qs[0].Card)
	assert.Empty(t, qs[0].CorrectAnswer)

	code, _ = ts.do(http.MethodGet, "/v1/cards/ZZ/questions", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = ts.do(http.MethodGet, "/v1/form-data/genders", nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["male","female","other","prefer_not_to_say"]`, string(env.Data))

	code, env = ts.do(http.MethodGet, "/v1/form-data/provinces-districts", nil, nil)
	require.Equal(t, http.StatusOK, code)
	var provinces []models.Province
	require.NoError(t, json.Unmarshal(env.Data, &provinces))
	assert.Len(t, provinces, 5)
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(http.MethodGet, "/v1/leaderboard?metric=shoe_size", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "unknown leaderboard metric")

	code, _ = ts.do(http.MethodGet, "/v1/leaderboard?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = ts.do(http.MethodGet, "/v1/leaderboard?metric=games_won&limit=5", nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrInvalidCard, http.StatusBadRequest},
		{models.ErrDuplicateSubmission, http.StatusBadRequest},
		{models.ErrGameNotFound, http.StatusNotFound},
		{fmt.Errorf("lookup: %w", models.ErrPlayerNotFound), http.StatusNotFound},
		{models.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func (ts *testServer) register(username string) string {
	ts.t.Helper()
	code, env := ts.do(http.MethodPost, "/v1/players/register", map[string]string{
		"username": username, "phone": "0782222222", "password": "secret1", "password_confirm": "secret1",
	}, nil)
	require.Equal(ts.t, http.StatusCreated, code, env.Error)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(ts.t, json.Unmarshal(env.Data, &login))
	return login.Token
}

func playerToken(token string) map[string]string {
	return map[string]string{"Authorization": "Token " + token}
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("henri")

	code, env := ts.do(http.MethodPost, "/v1/players/logout", nil, playerToken(token))
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "successfully logged out", env.Message)

	code, _ = ts.do(http.MethodGet, "/v1/players/me", nil, playerToken(token))
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = ts.do(http.MethodPost, "/v1/players/logout", nil, playerToken(token))
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = ts.do(http.MethodPost, "/v1/players/logout", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = ts.do(http.MethodPost, "/v1/players/login", map[string]string{"username": "henri", "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.NotEqual(t, token, login.Token)
	code, _ = ts.do(http.MethodGet, "/v1/players/me", nil, playerToken(login.Token))
	assert.Equal(t, http.StatusOK, code)
}

func TestUpdateProfile(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("irene")

	code, env := ts.do(http.MethodPut, "/v1/players/me", map[string]string{
		"player_name": "Irene M.", "province": "Northern Province", "district": "Musanze",
	}, playerToken(token))
	require.Equal(t, http.StatusOK, code, env.Error)
	var p models.Player
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Irene M.", p.PlayerName)
	assert.Equal(t, "Musanze", p.District)
	assert.Equal(t, "0782222222", p.Phone)

	code, env = ts.do(http.MethodPut, "/v1/players/me", map[string]string{"email": "not-an-email"}, playerToken(token))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "email")

	code, env = ts.do(http.MethodPut, "/v1/players/me", map[string]string{"district": "Huye"}, playerToken(token))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "district is not valid")

	code, _ = ts.do(http.MethodPut, "/v1/players/me", map[string]string{"player_name": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	_, env = ts.do(http.MethodGet, "/v1/players/me", nil, playerToken(token))
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Musanze", p.District)
}

func TestQuestionPackages(t *testing.T) {
	ts := newTestServer(t)
	q1 := ts.addQuestion("S3", "What is the capital of Rwanda?", "Kigali")
	q2 := ts.addQuestion("H5", "Which city hosts the national university?", "Huye")

	pkgBody := map[string]interface{}{
		"name": "Cities of Rwanda", "category": "geography", "difficulty": "beginner",
		"tags": []string{"cities"}, "question_ids": []int64{q1.ID, q2.ID},
	}
	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/v1/admin/packages", nil)
	require.NoError(t, err)
	unauth, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	unauth.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, unauth.StatusCode)

	code, env := ts.do(http.MethodPost, "/v1/admin/packages", map[string]interface{}{"name": "empty"}, ts.asAdmin())
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "question_ids is required")

	code, env = ts.do(http.MethodPost, "/v1/admin/packages", pkgBody, ts.asAdmin())
	require.Equal(t, http.StatusCreated, code, env.Error)
	var pkg models.QuestionPackage
	require.NoError(t, json.Unmarshal(env.Data, &pkg))
	assert.Equal(t, models.PackageDraft, pkg.Status)
	assert.Equal(t, "ops", pkg.CreatedBy)
	assert.Equal(t, 2, pkg.QuestionCount)

	path := fmt.Sprintf("/v1/packages/%d", pkg.ID)
	code, _ = ts.do(http.MethodGet, path+"/questions", nil, nil)
	assert.Equal(t, http.StatusNotFound, code, "drafts are not served")

	code, env = ts.do(http.MethodPost, fmt.Sprintf("/v1/admin/packages/%d/status", pkg.ID),
		map[string]string{"status": "published"}, ts.asAdmin())
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = ts.do(http.MethodGet, "/v1/packages", nil, nil)
	require.Equal(t, http.StatusOK, code)
	var pkgs []models.QuestionPackage
	require.NoError(t, json.Unmarshal(env.Data, &pkgs))
	require.Len(t, pkgs, 1)
	assert.Equal(t, "Cities of Rwanda", pkgs[0].Name)

	code, env = ts.do(http.MethodGet, path+"/questions", nil, nil)
	require.Equal(t, http.StatusOK, code)
	var pq service.PackageQuestions
	require.NoError(t, json.Unmarshal(env.Data, &pq))
	require.Len(t, pq.Questions, 2)
	assert.Empty(t, pq.Questions[0].CorrectAnswer)

	attempt := map[string]interface{}{
		"answers": []map[string]interface{}{
			{"question_id": q1.ID, "answer": "kigali"},
			{"question_id": q2.ID, "answer": "Musanze"},
		},
		"time_taken": 30,
	}
	code, _ = ts.do(http.MethodPost, path+"/attempts", attempt, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	token := ts.register("jean")
	code, env = ts.do(http.MethodPost, path+"/attempts", attempt, playerToken(token))
	require.Equal(t, http.StatusCreated, code, env.Error)
	var res service.AttemptResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Attempt.Completed)
	assert.Equal(t, 50.0, res.Attempt.Score)
	require.Len(t, res.Answers, 2)
	assert.Equal(t, "Huye", res.Answers[1].CorrectAnswer)
	assert.Equal(t, 1, res.Package.TotalAttempts)

	code, env = ts.do(http.MethodGet, "/v1/players/me/attempts", nil, playerToken(token))
	require.Equal(t, http.StatusOK, code)
	var attempts []models.PackageAttempt
	require.NoError(t, json.Unmarshal(env.Data, &attempts))
	require.Len(t, attempts, 1)
	assert.Equal(t, pkg.ID, attempts[0].PackageID)

	code, _ = ts.do(http.MethodGet, "/v1/packages/abc/questions", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = ts.do(http.MethodGet, "/v1/packages/999/questions", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
