package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/logger"
	"greenhouse_console/internal/sim/hub"
	"greenhouse_console/internal/sim/repository"
	"greenhouse_console/internal/sim/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// ---- In-memory repositories ----

type userRepoStub struct {
	byName map[string]*repository.UserRecord
	nextID int
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{byName: make(map[string]*repository.UserRecord), nextID: 1}
}

func (s *userRepoStub) seed(username, password, role, status string) *repository.UserRecord {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	rec := &repository.UserRecord{
		User: greenhouse.User{
			ID: s.nextID, Username: username, Role: role, Status: status, Theme: greenhouse.ThemeDark,
		},
		PasswordHash: string(hash),
	}
	s.nextID++
	s.byName[username] = rec
	return rec
}

func (s *userRepoStub) Create(ctx context.Context, username, email, hash string) (*repository.UserRecord, error) {
	rec := &repository.UserRecord{
		User: greenhouse.User{
			ID: s.nextID, Username: username, Email: email,
			Role: greenhouse.RoleUser, Status: greenhouse.StatusActive, Theme: greenhouse.ThemeDark,
		},
		PasswordHash: hash,
	}
	s.nextID++
	s.byName[username] = rec
	return rec, nil
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*repository.UserRecord, error) {
	return s.byName[username], nil
}

func (s *userRepoStub) GetByID(ctx context.Context, id int) (*repository.UserRecord, error) {
	for _, rec := range s.byName {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (s *userRepoStub) List(ctx context.Context) ([]greenhouse.User, error) {
	var out []greenhouse.User
	for _, rec := range s.byName {
		out = append(out, rec.User)
	}
	return out, nil
}

func (s *userRepoStub) Delete(ctx context.Context, id int) error {
	for name, rec := range s.byName {
		if rec.ID == id {
			delete(s.byName, name)
		}
	}
	return nil
}

func (s *userRepoStub) SetStatus(ctx context.Context, id int, status string) error {
	if rec, _ := s.GetByID(ctx, id); rec != nil {
		rec.Status = status
	}
	return nil
}

func (s *userRepoStub) SetRole(ctx context.Context, id int, role string) error {
	if rec, _ := s.GetByID(ctx, id); rec != nil {
		rec.Role = role
	}
	return nil
}

func (s *userRepoStub) SetTheme(ctx context.Context, id int, theme string) error {
	if rec, _ := s.GetByID(ctx, id); rec != nil {
		rec.Theme = theme
	}
	return nil
}

func (s *userRepoStub) SetUsername(ctx context.Context, id int, username string) error {
	if rec, _ := s.GetByID(ctx, id); rec != nil {
		delete(s.byName, rec.Username)
		rec.Username = username
		s.byName[username] = rec
	}
	return nil
}

func (s *userRepoStub) SetPasswordHash(ctx context.Context, id int, hash string) error {
	if rec, _ := s.GetByID(ctx, id); rec != nil {
		rec.PasswordHash = hash
	}
	return nil
}

type readingRepoStub struct {
	readings []greenhouse.EnvironmentReading
}

func (s *readingRepoStub) Append(ctx context.Context, r greenhouse.EnvironmentReading) error {
	s.readings = append(s.readings, r)
	return nil
}

func (s *readingRepoStub) Latest(ctx context.Context) (*greenhouse.EnvironmentReading, error) {
	if len(s.readings) == 0 {
		return nil, nil
	}
	r := s.readings[len(s.readings)-1]
	return &r, nil
}

func (s *readingRepoStub) Range(ctx context.Context, from, to time.Time) ([]greenhouse.EnvironmentReading, error) {
	var out []greenhouse.EnvironmentReading
	for _, r := range s.readings {
		if !r.Timestamp.Before(from) && r.Timestamp.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type thresholdRepoStub struct {
	stored greenhouse.ThresholdSet
}

func (s *thresholdRepoStub) Load(ctx context.Context) (greenhouse.ThresholdSet, error) {
	return s.stored, nil
}

func (s *thresholdRepoStub) Save(ctx context.Context, t greenhouse.ThresholdSet) error {
	s.stored = t
	return nil
}

type alertRepoStub struct {
	alerts []greenhouse.Alert
}

func (s *alertRepoStub) Append(ctx context.Context, a greenhouse.Alert) error {
	s.alerts = append(s.alerts, a)
	return nil
}
func (s *alertRepoStub) List(ctx context.Context) ([]greenhouse.Alert, error) { return s.alerts, nil }
func (s *alertRepoStub) Acknowledge(ctx context.Context, id int) error        { return nil }

// ---- Fixture ----

type routerFixture struct {
	router *gin.Engine
	users  *userRepoStub
	svc    *service.Service
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()

	users := newUserRepoStub()
	repos := &repository.Repository{
		Users:      users,
		Readings:   &readingRepoStub{},
		Thresholds: &thresholdRepoStub{stored: greenhouse.ThresholdSet{TempHigh: 30, HumHigh: 80}},
		Alerts:     &alertRepoStub{},
	}
	pushHub := hub.New(log)
	svc := service.NewService(repos, pushHub, "test-signing-key")
	h := NewHandler(svc, repos, pushHub, log)
	return &routerFixture{router: h.InitRoutes(), users: users, svc: svc}
}

func (f *routerFixture) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Buffer
	if body == "" {
		r = bytes.NewBufferString("")
	} else {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *routerFixture) loginAs(t *testing.T, username, password string) string {
	t.Helper()
	w := f.request(t, http.MethodPost, "/auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login body=%s err=%v", w.Body.String(), err)
	}
	return resp.Token
}

// ---- Tests ----

func TestAuthEndpoints_RegisterAndLogin(t *testing.T) {
	f := newRouterFixture(t)

	w := f.request(t, http.MethodPost, "/auth/register", "",
		`{"username":"grower","email":"g@example.com","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("register status=%d body=%s", w.Code, w.Body.String())
	}
	var reg struct {
		Token string           `json:"token"`
		User  *greenhouse.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reg.Token == "" || reg.User == nil || reg.User.Username != "grower" {
		t.Fatalf("body=%s", w.Body.String())
	}

	// Wrong password is a 401 with a generic message.
	w = f.request(t, http.MethodPost, "/auth/login", "", `{"username":"grower","password":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", w.Code)
	}
	var rej struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &rej)
	if rej.Error != "invalid credentials" {
		t.Fatalf("error=%q", rej.Error)
	}

	// Valid login; /auth/me echoes the identity in the data envelope.
	token := f.loginAs(t, "grower", "secret1")
	w = f.request(t, http.MethodGet, "/auth/me", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status=%d body=%s", w.Code, w.Body.String())
	}
	var me struct {
		Data *greenhouse.User `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil || me.Data == nil || me.Data.Username != "grower" {
		t.Fatalf("me body=%s err=%v", w.Body.String(), err)
	}
}

func TestAuthRequired_RejectsMissingAndBanned(t *testing.T) {
	f := newRouterFixture(t)
	f.users.seed("outcast", "secret1", greenhouse.RoleUser, greenhouse.StatusActive)
	token := f.loginAs(t, "outcast", "secret1")

	if w := f.request(t, http.MethodGet, "/sensors/latest", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status=%d", w.Code)
	}
	if w := f.request(t, http.MethodGet, "/sensors/latest", "garbage", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status=%d", w.Code)
	}

	// A ban takes effect on the next request even with a valid token.
	rec, _ := f.users.GetByUsername(context.Background(), "outcast")
	_ = f.users.SetStatus(context.Background(), rec.ID, greenhouse.StatusBanned)
	if w := f.request(t, http.MethodGet, "/sensors/latest", token, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("banned status=%d", w.Code)
	}
}

func TestAdminRequired_GatesByCapability(t *testing.T) {
	f := newRouterFixture(t)
	f.users.seed("grower", "secret1", greenhouse.RoleUser, greenhouse.StatusActive)
	f.users.seed("boss", "secret1", greenhouse.RoleAdmin, greenhouse.StatusActive)
	f.users.seed("chief", "secret1", greenhouse.RoleHeadAdmin, greenhouse.StatusActive)

	userTok := f.loginAs(t, "grower", "secret1")
	adminTok := f.loginAs(t, "boss", "secret1")
	chiefTok := f.loginAs(t, "chief", "secret1")

	if w := f.request(t, http.MethodGet, "/admin/users", userTok, ""); w.Code != http.StatusForbidden {
		t.Fatalf("user on admin surface status=%d", w.Code)
	}
	if w := f.request(t, http.MethodGet, "/admin/users", adminTok, ""); w.Code != http.StatusOK {
		t.Fatalf("admin status=%d body=%s", w.Code, w.Body.String())
	}

	// Promote is head-admin only.
	rec, _ := f.users.GetByUsername(context.Background(), "grower")
	path := "/admin/users/" + strconv.Itoa(rec.ID) + "/promote"
	if w := f.request(t, http.MethodPut, path, adminTok, ""); w.Code != http.StatusForbidden {
		t.Fatalf("admin promote status=%d", w.Code)
	}
	if w := f.request(t, http.MethodPut, path, chiefTok, ""); w.Code != http.StatusOK {
		t.Fatalf("head admin promote status=%d body=%s", w.Code, w.Body.String())
	}
	if rec, _ := f.users.GetByUsername(context.Background(), "grower"); rec.Role != greenhouse.RoleAdmin {
		t.Fatalf("role after promote = %s", rec.Role)
	}
}

func TestManualControl_ValidationAndOverride(t *testing.T) {
	f := newRouterFixture(t)
	f.users.seed("grower", "secret1", greenhouse.RoleUser, greenhouse.StatusActive)
	token := f.loginAs(t, "grower", "secret1")

	w := f.request(t, http.MethodPost, "/manual/control", token,
		`{"actuator":"pump_water","state":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("control status=%d body=%s", w.Code, w.Body.String())
	}

	w = f.request(t, http.MethodPost, "/manual/control", token,
		`{"actuator":"heater","state":true}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown actuator status=%d", w.Code)
	}

	w = f.request(t, http.MethodPost, "/manual/auto", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("resume status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestThresholds_GetAndPartialUpdate(t *testing.T) {
	f := newRouterFixture(t)
	f.users.seed("grower", "secret1", greenhouse.RoleUser, greenhouse.StatusActive)
	token := f.loginAs(t, "grower", "secret1")

	w := f.request(t, http.MethodGet, "/thresholds", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d body=%s", w.Code, w.Body.String())
	}

	w = f.request(t, http.MethodPut, "/thresholds", token, `{"temp_high":32}`)
	if w.Code != http.StatusOK {
		t.Fatalf("put status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Data greenhouse.ThresholdSet `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.TempHigh != 32 || resp.Data.HumHigh != 80 {
		t.Fatalf("partial update broke the set: %+v", resp.Data)
	}

	if w := f.request(t, http.MethodPut, "/thresholds", token, `{"temp_high":-1}`); w.Code != http.StatusBadRequest {
		t.Fatalf("range status=%d", w.Code)
	}
	if w := f.request(t, http.MethodPut, "/thresholds", token, `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty update status=%d", w.Code)
	}
}
