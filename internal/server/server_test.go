package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"artspace/internal/config"
	"artspace/internal/db"
	"artspace/internal/domain"
	"artspace/internal/storage"
	"artspace/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testApp struct {
	router    *gin.Engine
	db        *gorm.DB
	uploadDir string
	cfg       *config.Config
}

func newTestApp(t *testing.T, allowResale bool) *testApp {
	t.Helper()
	return newTestAppWith(t, func(cfg *config.Config) { cfg.AllowResale = allowResale }, nil)
}

func newTestAppWith(t *testing.T, configure func(*config.Config), rdb *redis.Client) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		UploadDir:     filepath.Join(dir, "uploads"),
		TemplateDir:   filepath.Join(dir, "templates"),
		AdminName:     "Admin",
		AdminEmail:    "admin@artspace.com",
		AdminPassword: "admin888",
		CORSOrigins:   []string{"*"},
		MaxUploadMB:   10,
	}
	configure(cfg)
	gdb, err := db.OpenSQLite(filepath.Join(dir, "artspace.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, db.SeedAdmin(gdb, AdminSeed(cfg)))
	assets, err := storage.NewLocalStore(cfg.UploadDir)
	require.NoError(t, err)
	return &testApp{
		router:    NewRouter(Deps{Config: cfg, DB: gdb, Assets: assets, Redis: rdb}),
		db:        gdb,
		uploadDir: cfg.UploadDir,
		cfg:       cfg,
	}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) postJSON(t *testing.T, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(req)
}

func (a *testApp) postForm(t *testing.T, path string, fields map[string]string, fileField, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req, _ := http.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req)
}

func (a *testApp) get(path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(req)
}

type listedArtwork struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Price    int    `json:"price"`
	Category string `json:"category"`
	Artist   string `json:"artist"`
	Owner    string `json:"owner"`
	Img      string `json:"img"`
	IsSold   bool   `json:"isSold"`
	Sales    int    `json:"sales"`
	Caption  string `json:"caption"`
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	ID      uint   `json:"id"`
	User    struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (a *testApp) listing(t *testing.T) []listedArtwork {
	t.Helper()
	w := a.get("/api/artworks", "")
	require.Equal(t, http.StatusOK, w.Code)
	return decode[[]listedArtwork](t, w)
}

func (a *testApp) upload(t *testing.T, title, price string) uint {
	t.Helper()
	w := a.postForm(t, "/api/upload", map[string]string{
		"title": title, "price": price, "category": "painting", "artist": "Ann",
	}, "image", "sunset.PNG", []byte("png-bytes"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[envelope](t, w)
	require.True(t, resp.Success)
	return resp.ID
}

func (a *testApp) buy(t *testing.T, id uint, buyer string) *httptest.ResponseRecorder {
	t.Helper()
	return a.postForm(t, "/api/buy", map[string]string{
		"id": fmt.Sprint(id), "buyer": buyer,
	}, "slip", "slip.jpg", []byte("slip-bytes"))
}

func (a *testApp) login(t *testing.T, email, password string) envelope {
	t.Helper()
	w := a.postJSON(t, "/api/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[envelope](t, w)
}

func (a *testApp) register(t *testing.T, name, email, password string) envelope {
	t.Helper()
	w := a.postJSON(t, "/api/register", "", gin.H{"name": name, "email": email, "password": password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[envelope](t, w)
}

func files(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRegisterAndDuplicateEmail(t *testing.T) {
	app := newTestApp(t, false)

	resp := app.register(t, "Ann", "ann@example.com", "pw")
	assert.True(t, resp.Success)
	assert.Equal(t, "Ann", resp.User.Name)
	assert.Equal(t, "ann@example.com", resp.User.Email)
	assert.Equal(t, domain.RoleMember, resp.User.Role)
	assert.NotEmpty(t, resp.Token)

	w := app.postJSON(t, "/api/register", "", gin.H{"name": "Other", "email": "ann@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)
	dup := decode[envelope](t, w)
	assert.False(t, dup.Success)
	assert.Equal(t, "อีเมลนี้ถูกใช้แล้ว", dup.Message)

	var count int64
	require.NoError(t, app.db.Model(&domain.User{}).Where("email = ?", "ann@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var stored domain.User
	require.NoError(t, app.db.Where("email = ?", "ann@example.com").First(&stored).Error)
	assert.Equal(t, "Ann", stored.Name)
	assert.NotEqual(t, "pw", stored.Password)
}

func TestRegisterRequiresFields(t *testing.T) {
	app := newTestApp(t, false)
	w := app.postJSON(t, "/api/register", "", gin.H{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[envelope](t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "name is required")
}

func TestLogin(t *testing.T) {
	app := newTestApp(t, false)
	app.register(t, "Ann", "ann@example.com", "pw")

	member := app.login(t, "ann@example.com", "pw")
	assert.True(t, member.Success)
	assert.Equal(t, domain.RoleMember, member.User.Role)

	admin := app.login(t, "admin@artspace.com", "admin888")
	assert.True(t, admin.Success)
	assert.Equal(t, domain.RoleAdmin, admin.User.Role)

	for _, creds := range []gin.H{
		{"email": "ann@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "pw"},
	} {
		w := app.postJSON(t, "/api/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false}`, w.Body.String())
	}
}

func TestLoginRestoresSeedAdminRole(t *testing.T) {
	app := newTestApp(t, false)
	require.NoError(t, app.db.Model(&domain.User{}).Where("email = ?", "admin@artspace.com").Update("role", domain.RoleMember).Error)

	resp := app.login(t, "admin@artspace.com", "admin888")
	assert.Equal(t, domain.RoleAdmin, resp.User.Role)

	var stored domain.User
	require.NoError(t, app.db.Where("email = ?", "admin@artspace.com").First(&stored).Error)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}

func TestUploadThenBuyExample(t *testing.T) {
	app := newTestApp(t, false)
	older := app.upload(t, "Older", "100")
	id := app.upload(t, "Sunset", "500")

	list := app.listing(t)
	require.Len(t, list, 2)
	first := list[0]
	assert.Equal(t, id, first.ID)
	assert.Equal(t, older, list[1].ID)
	assert.Equal(t, "Sunset", first.Title)
	assert.Equal(t, 500, first.Price)
	assert.Equal(t, "painting", first.Category)
	assert.Equal(t, "Ann", first.Artist)
	assert.Equal(t, "Ann", first.Owner)
	assert.False(t, first.IsSold)
	assert.Equal(t, 0, first.Sales)
	assert.Equal(t, "", first.Caption)
	assert.Regexp(t, `^/static/uploads/artworks/[0-9a-f-]{36}\.png$`, first.Img)

	// image is served back from the asset store
	img := app.get(first.Img, "")
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "png-bytes", img.Body.String())
	assert.Equal(t, "image/png", img.Header().Get("Content-Type"))

	w := app.buy(t, id, "Bob")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	list = app.listing(t)
	assert.True(t, list[0].IsSold)
	assert.Equal(t, "Bob", list[0].Owner)
	assert.Equal(t, 1, list[0].Sales)

	slips := files(t, filepath.Join(app.uploadDir, storage.FolderSlips))
	require.Len(t, slips, 1)
	assert.Regexp(t, fmt.Sprintf(`^SLIP_%d_[0-9a-f-]{36}\.jpg$`, id), slips[0])
}

func TestUploadValidation(t *testing.T) {
	app := newTestApp(t, false)

	w := app.postForm(t, "/api/upload", map[string]string{"title": "x", "price": "1"}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decode[envelope](t, w).Success)

	w = app.postForm(t, "/api/upload", map[string]string{"title": "x", "price": "cheap"}, "image", "a.jpg", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, app.listing(t))
	assert.Empty(t, files(t, filepath.Join(app.uploadDir, storage.FolderArtworks)))
}

func TestUploadDefaultsExtension(t *testing.T) {
	app := newTestApp(t, false)
	w := app.postForm(t, "/api/upload", map[string]string{"title": "x", "price": "1", "artist": "Ann"}, "image", "noext", []byte("x"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Regexp(t, `\.jpg$`, app.listing(t)[0].Img)
}

func TestBuyFailures(t *testing.T) {
	app := newTestApp(t, false)
	id := app.upload(t, "Sunset", "500")

	w := app.buy(t, id+100, "Bob")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false}`, w.Body.String())

	w = app.postForm(t, "/api/buy", map[string]string{"id": fmt.Sprint(id), "buyer": "Bob"}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.False(t, app.listing(t)[0].IsSold)
	assert.Empty(t, files(t, filepath.Join(app.uploadDir, storage.FolderSlips)))
}

func TestBuySoldArtworkRejectedByDefault(t *testing.T) {
	app := newTestApp(t, false)
	id := app.upload(t, "Sunset", "500")
	require.Equal(t, http.StatusOK, app.buy(t, id, "Bob").Code)

	w := app.buy(t, id, "Carol")
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode[envelope](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "artwork already sold", resp.Message)

	list := app.listing(t)
	assert.Equal(t, "Bob", list[0].Owner)
	assert.Equal(t, 1, list[0].Sales)
	assert.Len(t, files(t, filepath.Join(app.uploadDir, storage.FolderSlips)), 1)
}

func TestBuySoldArtworkWithResale(t *testing.T) {
	app := newTestApp(t, true)
	id := app.upload(t, "Sunset", "500")
	for i, buyer := range []string{"Bob", "Carol", "Dan"} {
		require.Equal(t, http.StatusOK, app.buy(t, id, buyer).Code)
		list := app.listing(t)
		assert.Equal(t, buyer, list[0].Owner)
		assert.Equal(t, i+1, list[0].Sales)
		assert.True(t, list[0].IsSold)
	}
}

func TestEdit(t *testing.T) {
	app := newTestApp(t, false)
	id := app.upload(t, "Sunset", "500")

	// the storefront sends form values as strings
	w := app.postJSON(t, "/api/edit", "", gin.H{"id": fmt.Sprint(id), "price": "750", "caption": "oil"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	list := app.listing(t)
	assert.Equal(t, 750, list[0].Price)
	assert.Equal(t, "oil", list[0].Caption)

	// a missing caption is rejected instead of blanking the stored one
	w = app.postJSON(t, "/api/edit", "", gin.H{"id": id, "price": 800})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false}`, w.Body.String())

	w = app.postJSON(t, "/api/edit", "", gin.H{"id": id, "price": "lots", "caption": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false}`, w.Body.String())

	w = app.postJSON(t, "/api/edit", "", gin.H{"id": id + 100, "price": 1, "caption": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false}`, w.Body.String())

	require.Equal(t, http.StatusOK, app.buy(t, id, "Bob").Code)
	w = app.postJSON(t, "/api/edit", "", gin.H{"id": id, "price": 1, "caption": "cheap now"})
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode[envelope](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "สินค้าขายแล้ว ไม่สามารถแก้ไขได้", resp.Message)

	list = app.listing(t)
	assert.Equal(t, 750, list[0].Price)
	assert.Equal(t, "oil", list[0].Caption)
}

func TestDeleteArtwork(t *testing.T) {
	app := newTestApp(t, false)
	id := app.upload(t, "Sunset", "500")
	require.Equal(t, http.StatusOK, app.buy(t, id, "Bob").Code)
	require.Len(t, files(t, filepath.Join(app.uploadDir, storage.FolderArtworks)), 1)

	w := app.postJSON(t, "/api/delete_art", "", gin.H{"id": id})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Empty(t, app.listing(t))
	assert.Empty(t, files(t, filepath.Join(app.uploadDir, storage.FolderArtworks)))
	// the payment slip is retained
	assert.Len(t, files(t, filepath.Join(app.uploadDir, storage.FolderSlips)), 1)

	w = app.postJSON(t, "/api/delete_art", "", gin.H{"id": id})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false}`, w.Body.String())
}

func TestDeleteArtworkWithMissingImage(t *testing.T) {
	app := newTestApp(t, false)
	id := app.upload(t, "Sunset", "500")
	for _, name := range files(t, filepath.Join(app.uploadDir, storage.FolderArtworks)) {
		require.NoError(t, os.Remove(filepath.Join(app.uploadDir, storage.FolderArtworks, name)))
	}

	w := app.postJSON(t, "/api/delete_art", "", gin.H{"id": id})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, app.listing(t))
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	app := newTestApp(t, false)
	member := app.register(t, "Ann", "ann@example.com", "pw")

	assert.Equal(t, http.StatusUnauthorized, app.get("/api/users", "").Code)
	assert.Equal(t, http.StatusForbidden, app.get("/api/users", member.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, app.postJSON(t, "/api/reset", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, app.postJSON(t, "/api/reset", member.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, app.postJSON(t, "/api/delete_user", member.Token, gin.H{"email": "ann@example.com"}).Code)
}

func TestListUsers(t *testing.T) {
	app := newTestApp(t, false)
	app.register(t, "Ann", "ann@example.com", "pw")
	admin := app.login(t, "admin@artspace.com", "admin888")

	w := app.get("/api/users", admin.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"name":"Admin","email":"admin@artspace.com","role":"admin"},
		{"name":"Ann","email":"ann@example.com","role":"member"}
	]`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
}

func TestDeleteUserAndAccount(t *testing.T) {
	app := newTestApp(t, false)
	ann := app.register(t, "Ann", "ann@example.com", "pw")
	app.register(t, "Bob", "bob@example.com", "pw")
	app.register(t, "Cat", "cat@example.com", "pw")
	admin := app.login(t, "admin@artspace.com", "admin888")

	// members cannot delete other accounts
	w := app.postJSON(t, "/api/delete_account", ann.Token, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// but can delete their own, after which the token is dead
	w = app.postJSON(t, "/api/delete_account", ann.Token, gin.H{"email": "ann@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	w = app.postJSON(t, "/api/delete_account", ann.Token, gin.H{"email": "ann@example.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// both routes behave the same for an admin
	w = app.postJSON(t, "/api/delete_user", admin.Token, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.postJSON(t, "/api/delete_account", admin.Token, gin.H{"email": "cat@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.postJSON(t, "/api/delete_user", admin.Token, gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false}`, w.Body.String())

	w = app.postJSON(t, "/api/delete_user", admin.Token, gin.H{"email": "admin@artspace.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, app.db.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReset(t *testing.T) {
	app := newTestApp(t, false)
	app.register(t, "Ann", "ann@example.com", "pw")
	id := app.upload(t, "Sunset", "500")
	app.upload(t, "Moon", "300")
	require.Equal(t, http.StatusOK, app.buy(t, id, "Ann").Code)
	admin := app.login(t, "admin@artspace.com", "admin888")

	w := app.postJSON(t, "/api/reset", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	assert.Empty(t, app.listing(t))
	assert.Empty(t, files(t, filepath.Join(app.uploadDir, storage.FolderArtworks)))
	assert.Empty(t, files(t, filepath.Join(app.uploadDir, storage.FolderSlips)))

	var users []domain.User
	require.NoError(t, app.db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@artspace.com", users[0].Email)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)

	again := app.login(t, "admin@artspace.com", "admin888")
	assert.Equal(t, http.StatusOK, app.get("/api/users", again.Token).Code)
}

func TestAssetAndIndexRoutes(t *testing.T) {
	app := newTestApp(t, false)

	assert.Equal(t, http.StatusNotFound, app.get("/static/uploads/artworks/missing.png", "").Code)
	assert.Equal(t, http.StatusNotFound, app.get("/static/uploads/private/x.png", "").Code)
	assert.Equal(t, http.StatusNotFound, app.get("/", "").Code)

	require.NoError(t, os.MkdirAll(app.cfg.TemplateDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(app.cfg.TemplateDir, "index.html"), []byte("<h1>ArtSpace</h1>"), 0o644))
	w := app.get("/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "ArtSpace")
}

func TestEmptySecretRejectsForgedTokens(t *testing.T) {
	app := newTestAppWith(t, func(cfg *config.Config) { cfg.JWTSecret = "" }, nil)
	var admin domain.User
	require.NoError(t, app.db.Where("email = ?", "admin@artspace.com").First(&admin).Error)
	forged, err := utils.GenerateJWT(admin.ID, admin.Email, "artspace_secret_key")
	require.NoError(t, err)

	w := app.postJSON(t, "/api/reset", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, app.get("/api/users", forged).Code)
}
