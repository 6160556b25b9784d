package store_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/avvvet/trivia-services/internal/gamesvc/db"
	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/service"
	"github.com/avvvet/trivia-services/internal/gamesvc/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPgStore(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	requireDocker(t)
	ctx := context.Background()

	dsn := startPostgres(t, ctx)
	require.NoError(t, db.Migrate(ctx, dsn))
	require.NoError(t, db.Migrate(ctx, dsn), "second run is a no-op")

	pool, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	st := store.NewPgStore(pool)

	t.Run("two player game", func(t *testing.T) {
		qs := service.NewQuestionService(st)
		q, err := qs.CreateQuestion(ctx, &models.Question{
			Card:          "S3",
			QuestionText:  "In which year did Rwanda gain independence?",
			Options:       []string{"1959", "1962"},
			CorrectAnswer: "1962",
			Explanation:   "July 1, 1962.",
		})
		require.NoError(t, err)

		games := service.NewGameService(st)
		g, err := games.CreateGame(ctx, 2)
		require.NoError(t, err)

		_, err = games.SubmitPlayerResult(ctx, service.SubmitResultInput{
			MatchID: g.MatchID, Username: "alice", Team: 1, IsWinner: true,
		})
		require.NoError(t, err)
		res, err := games.SubmitPlayerResult(ctx, service.SubmitResultInput{
			MatchID: g.MatchID, Username: "bob", Team: 2, LostCard: "s3",
		})
		require.NoError(t, err)

		assert.Equal(t, models.GameCompleted, res.GameStatus)
		require.NotNil(t, res.Game.WinningTeam)
		assert.Equal(t, 1, *res.Game.WinningTeam)
		require.NotNil(t, res.Response.QuestionID)
		assert.Equal(t, q.ID, *res.Response.QuestionID)

		_, err = games.SubmitPlayerResult(ctx, service.SubmitResultInput{
			MatchID: g.MatchID, Username: "bob", Team: 2, LostCard: "S3",
		})
		assert.ErrorIs(t, err, models.ErrDuplicateSubmission)

		answers := service.NewAnswerService(st)
		ar, err := answers.AwardPoints(ctx, service.AnswerInput{
			MatchID: g.MatchID, Username: "bob", QuestionID: q.ID, Answer: "1962",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, ar.PointsAwarded)
		assert.Equal(t, 1, ar.Game.Team2Marks)

		_, err = answers.AwardPoints(ctx, service.AnswerInput{
			MatchID: g.MatchID, Username: "bob", QuestionID: q.ID, Answer: "1962",
		})
		assert.ErrorIs(t, err, models.ErrPointsAlreadyGiven)

		stats, err := service.NewPlayerService(st).Stats(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalMarks)
		assert.Equal(t, 100.0, stats.AnswerAccuracy)
	})

	t.Run("concurrent duplicate submissions", func(t *testing.T) {
		games := service.NewGameService(st)
		g, err := games.CreateGame(ctx, 4)
		require.NoError(t, err)

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			errs []error
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := games.SubmitPlayerResult(ctx, service.SubmitResultInput{
					MatchID: g.MatchID, Username: "carol", Team: 1, IsWinner: true,
				})
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}()
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.ErrorIs(t, err, models.ErrConflict)
		}
		assert.Equal(t, 1, ok)

		snap, err := games.GameStatus(ctx, g.MatchID)
		require.NoError(t, err)
		assert.Len(t, snap.Participants, 1)
		assert.Equal(t, 1, snap.Game.ParticipantsSubmitted)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := st.WithTx(ctx, func(tx store.Store) error {
			if err := tx.CreatePlayer(ctx, &models.Player{UUID: "5b0c3f8e-1f1e-4d55-9a53-1c2d3e4f5a6b", Username: "ghost", PlayerName: "Ghost"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		p, err := st.GetPlayerByUsername(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("question packages", func(t *testing.T) {
		qs := service.NewQuestionService(st)
		var ids []int64
		for _, answer := range []string{"Kigali", "Huye"} {
			q, err := qs.CreateQuestion(ctx, &models.Question{
				Card:          "H5",
				QuestionText:  "Which city is " + answer + "?",
				Options:       []string{"Kigali", "Huye"},
				CorrectAnswer: answer,
			})
			require.NoError(t, err)
			ids = append(ids, q.ID)
		}

		packages := service.NewPackageService(st)
		_, err := packages.CreatePackage(ctx, &models.QuestionPackage{Name: "ghosts", QuestionIDs: []int64{ids[0], 999999}})
		assert.ErrorIs(t, err, models.ErrQuestionNotFound)

		pkg, err := packages.CreatePackage(ctx, &models.QuestionPackage{
			Name:        "Cities",
			Tags:        []string{"geography", "cities"},
			Status:      models.PackagePublished,
			QuestionIDs: []int64{ids[1], ids[0]},
		})
		require.NoError(t, err)

		pq, err := packages.Questions(ctx, pkg.ID)
		require.NoError(t, err)
		require.Len(t, pq.Questions, 2)
		assert.Equal(t, ids[1], pq.Questions[0].ID)
		assert.Equal(t, []string{"geography", "cities"}, pq.Package.Tags)

		player, err := service.NewPlayerService(st).Register(ctx, service.RegisterInput{
			Username: "dina", Password: "secret1", ConfirmPassword: "secret1",
		})
		require.NoError(t, err)

		res, err := packages.SubmitAttempt(ctx, player, pkg.ID, service.AttemptInput{
			Answers: []service.PackageAnswer{
				{QuestionID: ids[0], Answer: "Kigali"},
				{QuestionID: ids[1], Answer: "Kigali"},
			},
			TimeTaken: 40,
		})
		require.NoError(t, err)
		assert.Equal(t, 50.0, res.Attempt.Score)

		stored, err := st.GetPackage(ctx, pkg.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.TotalAttempts)
		assert.Equal(t, 50.0, stored.AverageScore)
		assert.Equal(t, 100.0, stored.CompletionRate)

		attempts, err := packages.Attempts(ctx, player.ID)
		require.NoError(t, err)
		require.Len(t, attempts, 1)
		assert.True(t, attempts[0].Completed)
		assert.Equal(t, 40, attempts[0].TimeTaken)
	})

	t.Run("profile and logout", func(t *testing.T) {
		players := service.NewPlayerService(st)
		p, err := players.Register(ctx, service.RegisterInput{
			Username: "eric", Password: "secret1", ConfirmPassword: "secret1",
		})
		require.NoError(t, err)

		district := "Huye"
		province := "Southern Province"
		updated, err := players.UpdateProfile(ctx, p.ID, service.ProfileInput{Province: &province, District: &district})
		require.NoError(t, err)
		assert.Equal(t, "Huye", updated.District)

		require.NoError(t, players.Logout(ctx, p))
		_, err = players.Authenticate(ctx, p.UUID)
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("lookups return nil when absent", func(t *testing.T) {
		g, err := st.GetGameByMatchID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, g)

		q, err := st.GetQuestion(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, q)
	})
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "trivia"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://trivia:triviapass@%s:%s/trivia?sslmode=disable", host, port.Port())
}
