package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylar-exchange/models"
	"stylar-exchange/services"
	"stylar-exchange/storage/memory"
)

var fixtureNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

type stubUploader struct{ keys []string }

func (u *stubUploader) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	u.keys = append(u.keys, key)
	return "https://cdn.test/" + key, nil
}

type testEnv struct {
	app      *fiber.App
	store    *memory.Store
	uploader *stubUploader
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	store, err := memory.NewFromFixtures()
	require.NoError(t, err)

	clock := services.Clock(func() time.Time { return fixtureNow })
	uploader := &stubUploader{}

	users := services.NewUserService(store, "1")
	users.Clock = clock
	badges := services.NewBadgeService(store)
	challenges := services.NewChallengeService(store, badges)
	challenges.Clock = clock
	investments := services.NewInvestmentService(store)
	investments.Clock = clock

	users.Badges = badges
	stylars := services.NewStylarService(store, uploader)
	stylars.Clock = clock
	stylars.Badges = badges
	battles := services.NewBattleService(store, services.DefaultVoteReward)
	battles.Badges = badges

	app := fiber.New()
	SetupRoutes(app, Services{
		Stylars:     stylars,
		Users:       users,
		Investments: investments,
		Challenges:  challenges,
		Battles:     battles,
		Portfolios:  services.NewPortfolioService(store, users, badges),
		Badges:      badges,
	}, "1")
	return testEnv{app: app, store: store, uploader: uploader}
}

func (e testEnv) do(t *testing.T, method, path string, body any, headers ...string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestListStylarsByFeed(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/stylars?feed=high-value", nil)
	require.Equal(t, fiber.StatusOK, status)
	stylars := decode[[]models.Stylar](t, body)
	ids := make([]string, 0, len(stylars))
	for _, s := range stylars {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"7", "1", "5", "2"}, ids)

	status, _ = env.do(t, http.MethodGet, "/stylars?feed=bogus", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetStylarNotFound(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodGet, "/stylars/404", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, string(body), `"error"`)
}

func TestCreateStylarUsesRequestUser(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/stylars", map[string]any{
		"name":        "Harbour Knit",
		"description": "Chunky cable knit over wide trousers",
		"style":       "casual",
		"images":      []string{"https://img.test/knit.jpg"},
	}, "X-User-ID", "3")
	require.Equal(t, fiber.StatusCreated, status, string(body))
	st := decode[models.Stylar](t, body)
	assert.Equal(t, "3", st.CreatorID)
	assert.Equal(t, "harbour-knit", st.Slug)

	status, _ = env.do(t, http.MethodPost, "/stylars", map[string]any{"name": "No style"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUpdateValueAndDelete(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPatch, "/stylars/8/value", map[string]any{"value": 333})
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, int64(333), decode[models.Stylar](t, body).Value)

	status, _ = env.do(t, http.MethodPatch, "/stylars/8/value", map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodDelete, "/stylars/8", nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = env.do(t, http.MethodDelete, "/stylars/8", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAttachImage(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "look.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/stylars/2/images", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	st := decode[models.Stylar](t, raw)
	require.Len(t, env.uploader.keys, 1)
	assert.Contains(t, st.Images, "https://cdn.test/"+env.uploader.keys[0])

	status, _ := env.do(t, http.MethodPost, "/stylars/2/images", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCurrentUserAndLookup(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/users/me", nil)
	require.Equal(t, fiber.StatusOK, status)
	me := decode[models.User](t, body)
	assert.Equal(t, "stylefan", me.Username)
	assert.Len(t, me.Investments, 1)

	status, body = env.do(t, http.MethodGet, "/users/me", nil, "X-User-ID", "2")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "trendsetter", decode[models.User](t, body).Username)

	status, _ = env.do(t, http.MethodGet, "/users/99", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestInvestFlow(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/users/me/investments", map[string]any{"stylar_id": "2", "amount": 200})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	res := decode[services.InvestResult](t, body)
	assert.Equal(t, int64(800), res.User.StyleCoins)
	assert.Equal(t, int64(840), res.Stylar.Value)
	assert.True(t, res.User.Owns("2"))

	status, _ = env.do(t, http.MethodPost, "/users/me/investments", map[string]any{"stylar_id": "2", "amount": 5000})
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = env.do(t, http.MethodPost, "/users/me/investments", map[string]any{"stylar_id": "2", "amount": 0})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/investments?user_id=1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Investment](t, body), 2)

	status, body = env.do(t, http.MethodGet, "/investments?user_id=1&stylar_id=2", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Investment](t, body), 1)
}

func TestAdjustCoins(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodPost, "/users/me/coins", map[string]any{"delta": -250})
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, int64(750), decode[models.User](t, body).StyleCoins)
}

func TestPortfolioAndProfile(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/users/me/portfolio", nil)
	require.Equal(t, fiber.StatusOK, status)
	p := decode[services.Portfolio](t, body)
	assert.Equal(t, int64(2140), p.Value)
	assert.Equal(t, int64(150), p.Invested)

	status, body = env.do(t, http.MethodGet, "/users/me/profile", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Rising", decode[services.Profile](t, body).Level)
}

func TestChallenges(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/challenges?status=active", nil)
	require.Equal(t, fiber.StatusOK, status)
	list := decode[services.ChallengeList](t, body)
	require.Len(t, list.Challenges, 1)
	assert.Equal(t, "2", list.Challenges[0].ID)

	status, body = env.do(t, http.MethodGet, "/challenges/2", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"seconds_left"`)

	status, _ = env.do(t, http.MethodPost, "/challenges/2/submissions", map[string]any{"stylar_id": "1"})
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = env.do(t, http.MethodPost, "/challenges/3/submissions", map[string]any{"stylar_id": "1"})
	assert.Equal(t, fiber.StatusConflict, status)

	status, body = env.do(t, http.MethodPost, "/challenges", map[string]any{
		"name":        "Monochrome Week",
		"theme":       "Monochrome",
		"description": "One colour head to toe",
		"start_date":  "2026-02-01",
		"end_date":    "2026-02-08",
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))

	status, _ = env.do(t, http.MethodPost, "/challenges", map[string]any{"theme": "x", "start_date": "soon"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestBattleVoting(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/battles/1", nil, "X-User-ID", "2")
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, decode[services.BattleView](t, body).Tally.HasVoted)

	status, body = env.do(t, http.MethodPost, "/battles/2/votes", map[string]any{"stylar_id": "3"})
	require.Equal(t, fiber.StatusOK, status, string(body))
	res := decode[services.VoteResult](t, body)
	assert.Equal(t, int64(19), res.Battle.Votes2)
	assert.Equal(t, int64(1010), res.Voter.StyleCoins)

	status, _ = env.do(t, http.MethodPost, "/battles/2/votes", map[string]any{"stylar_id": "3"})
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = env.do(t, http.MethodPost, "/battles/2/votes", map[string]any{"stylar_id": "7"}, "X-User-ID", "3")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPost, "/battles", map[string]any{"stylar1_id": "6", "stylar2_id": "8"})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	assert.Equal(t, "Campus Cardigan vs Sunday Errands", decode[services.BattleView](t, body).Name)

	status, _ = env.do(t, http.MethodPost, "/battles", map[string]any{"stylar1_id": "6", "stylar2_id": "6"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/battles", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]services.BattleView](t, body), 4)
}

func TestBadgeCatalogue(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodGet, "/badges", nil)
	require.Equal(t, fiber.StatusOK, status)
	catalogue := decode[[]models.BadgeType](t, body)
	assert.Len(t, catalogue, len(models.BadgeTriggers))
	assert.Equal(t, "First Stylar", catalogue[0].Name)
}

func TestInvestStoresCreatorBadges(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodPost, "/users/me/investments", map[string]any{"stylar_id": "5", "amount": 100})
	require.Equal(t, fiber.StatusCreated, status, string(body))

	status, body = env.do(t, http.MethodGet, "/users/3", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, decode[models.User](t, body).Badges, "Style Icon")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusConflict, statusFor(services.ErrInsufficientCoins))
	assert.Equal(t, fiber.StatusBadRequest, statusFor(services.ErrInvalidAmount))
	assert.Equal(t, fiber.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
