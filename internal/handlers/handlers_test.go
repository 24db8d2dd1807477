package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pquerna/otp/totp"

	"github.com/yourorg/healthai/internal/cache"
	appdb "github.com/yourorg/healthai/internal/db"
	"github.com/yourorg/healthai/internal/handlers"
	"github.com/yourorg/healthai/internal/inference"
	"github.com/yourorg/healthai/internal/routes"
)

var (
	appOnce sync.Once
	testApp *fiber.App
	testDB  *sql.DB
)

// testArtifact writes a zero-weight scoring artifact, which always yields
// probability 0.5 (a negative verdict at the strict threshold).
func testArtifact(dir, file, name string, features int) error {
	art := map[string]interface{}{
		"name":     name,
		"features": features,
		"weights":  make([]float64, features),
		"bias":     0,
	}
	raw, err := json.Marshal(art)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, file), raw, 0o644)
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	appOnce.Do(func() {
		// Límites generosos para que la suite no choque con el rate limiting
		os.Setenv("AUTH_RATE_LIMIT", "10000")
		os.Setenv("INFERENCE_RATE_LIMIT", "10000")

		dir, err := os.MkdirTemp("", "healthai-test")
		if err != nil {
			t.Fatalf("temp dir: %v", err)
		}

		db, err := sql.Open("sqlite3", filepath.Join(dir, "test.db")+"?_busy_timeout=5000")
		if err != nil {
			t.Fatalf("open db: %v", err)
		}
		if err := appdb.EnsureSchema(db); err != nil {
			t.Fatalf("schema: %v", err)
		}
		testDB = db

		if err := testArtifact(dir, "diabetes.json", "diabetes", inference.DiabetesFeatures); err != nil {
			t.Fatalf("artifact: %v", err)
		}
		if err := testArtifact(dir, "parkinsons.json", "parkinsons", inference.ParkinsonsFeatures); err != nil {
			t.Fatalf("artifact: %v", err)
		}
		if err := testArtifact(dir, "pneumonia.json", "pneumonia", inference.PneumoniaFeatures); err != nil {
			t.Fatalf("artifact: %v", err)
		}
		registry, failures := inference.LoadRegistry(dir)
		if len(failures) != 0 {
			t.Fatalf("unexpected load failures: %v", failures)
		}

		cache.InitCaches()
		handlers.Setup(db)
		handlers.SetModelRegistry(registry)

		testApp = fiber.New()
		routes.Register(testApp, db)
	})
	return testApp
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp := doJSON(t, app, "POST", "/api/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "supersecret1",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp, &out)
	if out.Token == "" {
		t.Fatal("expected token on register")
	}
	return out.Token
}

func diabetesPayload() fiber.Map {
	return fiber.Map{
		"age": 7, "bmi": 28.4, "high_bp": 0, "high_chol": 0, "chol_check": 1,
		"smoker": 0, "stroke": 0, "heart_disease": 0, "phys_activity": 1,
		"fruits": 1, "veggies": 1, "hvy_alcohol": 0, "any_healthcare": 1,
		"no_doc_cost": 0, "gen_health": 3, "ment_health": 2, "phys_health": 0,
		"diff_walk": 0, "sex": 1, "education": 4, "income": 5,
	}
}

func TestRegisterValidationAndDuplicates(t *testing.T) {
	app := setupApp(t)

	registerUser(t, app, "reg_user")

	resp := doJSON(t, app, "POST", "/api/register", "", fiber.Map{
		"username": "reg_user",
		"email":    "other@example.com",
		"password": "supersecret1",
	})
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("duplicate username: expected 409, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/api/register", "", fiber.Map{
		"username": "reg_user2",
		"email":    "not-an-email",
		"password": "supersecret1",
	})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("bad email: expected 422, got %d", resp.StatusCode)
	}
}

func TestLoginFlow(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "login_user")

	resp := doJSON(t, app, "POST", "/api/login", "", fiber.Map{
		"username": "login_user",
		"password": "wrongpassword",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/api/login", "", fiber.Map{
		"username": "login_user",
		"password": "supersecret1",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Theme    string `json:"theme"`
		} `json:"user"`
	}
	decode(t, resp, &out)
	if out.Token == "" || out.User.Username != "login_user" {
		t.Errorf("unexpected login response: %+v", out)
	}
}

func TestProtectedRequiresSession(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, "GET", "/api/records", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/records", "garbage-token", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "logout_user")

	resp := doJSON(t, app, "GET", "/api/profile", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("profile before logout: expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/api/logout", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}

	// El JWT sigue siendo válido criptográficamente, pero la sesión ya no existe
	resp = doJSON(t, app, "GET", "/api/profile", token, nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("profile after logout: expected 401, got %d", resp.StatusCode)
	}
}

func TestTwoFactorBlocksLogin(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "totp_user")

	resp := doJSON(t, app, "POST", "/api/profile/2fa/setup", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("2fa setup: expected 200, got %d", resp.StatusCode)
	}
	var setup struct {
		Secret string `json:"secret"`
	}
	decode(t, resp, &setup)
	if setup.Secret == "" {
		t.Fatal("expected totp secret")
	}

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	resp = doJSON(t, app, "POST", "/api/profile/2fa/enable", token, fiber.Map{"code": code})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("2fa enable: expected 200, got %d", resp.StatusCode)
	}

	// Sin código: login bloqueado
	resp = doJSON(t, app, "POST", "/api/login", "", fiber.Map{
		"username": "totp_user",
		"password": "supersecret1",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("login without code: expected 401, got %d", resp.StatusCode)
	}

	// Código inválido: login bloqueado
	resp = doJSON(t, app, "POST", "/api/login", "", fiber.Map{
		"username":  "totp_user",
		"password":  "supersecret1",
		"totp_code": "000000",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("login with wrong code: expected 401, got %d", resp.StatusCode)
	}

	// Código correcto: login permitido
	code, _ = totp.GenerateCode(setup.Secret, time.Now())
	resp = doJSON(t, app, "POST", "/api/login", "", fiber.Map{
		"username":  "totp_user",
		"password":  "supersecret1",
		"totp_code": code,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("login with valid code: expected 200, got %d", resp.StatusCode)
	}
}

func TestPredictDiabetesStoresRecord(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "diabetes_user")

	resp := doJSON(t, app, "POST", "/api/predict/diabetes", token, diabetesPayload())
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("predict: expected 200, got %d", resp.StatusCode)
	}
	var res struct {
		PredictionType string  `json:"prediction_type"`
		Outcome        string  `json:"outcome"`
		Positive       bool    `json:"positive"`
		Probability    float64 `json:"probability"`
		Confidence     float64 `json:"confidence"`
	}
	decode(t, resp, &res)
	// Pesos cero: probabilidad exacta de 50, veredicto negativo
	if res.Outcome != "No Diabetes" || res.Positive {
		t.Errorf("expected negative verdict, got %+v", res)
	}
	if res.Probability != 50 || res.Confidence != 50 {
		t.Errorf("expected probability/confidence 50, got %+v", res)
	}

	// El registro queda disponible en el historial
	resp = doJSON(t, app, "GET", "/api/records?page=1&page_size=10", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("records: expected 200, got %d", resp.StatusCode)
	}
	var hist struct {
		TotalCount int `json:"total_count"`
		Records    []struct {
			BMI float64 `json:"bmi"`
		} `json:"records"`
	}
	decode(t, resp, &hist)
	if hist.TotalCount != 1 || len(hist.Records) != 1 {
		t.Fatalf("expected 1 stored record, got %+v", hist)
	}
	if hist.Records[0].BMI != 28.4 {
		t.Errorf("expected bmi 28.4, got %v", hist.Records[0].BMI)
	}

	// Y en el log de predicciones
	resp = doJSON(t, app, "GET", "/api/predictions?type=Diabetes", token, nil)
	var preds struct {
		Count int `json:"count"`
	}
	decode(t, resp, &preds)
	if preds.Count != 1 {
		t.Errorf("expected 1 prediction, got %d", preds.Count)
	}
}

func TestPredictDiabetesRejectsOutOfRange(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "diabetes_bad")

	payload := diabetesPayload()
	payload["age"] = -3
	resp := doJSON(t, app, "POST", "/api/predict/diabetes", token, payload)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("negative age: expected 422, got %d", resp.StatusCode)
	}

	// Nada quedó guardado
	resp = doJSON(t, app, "GET", "/api/records", token, nil)
	var hist struct {
		TotalCount int `json:"total_count"`
	}
	decode(t, resp, &hist)
	if hist.TotalCount != 0 {
		t.Errorf("expected no stored records, got %d", hist.TotalCount)
	}
}

func TestPredictParkinsonsDimensions(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "parkinsons_user")

	resp := doJSON(t, app, "POST", "/api/predict/parkinsons", token, fiber.Map{
		"features": []float64{1, 2, 3},
	})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("short vector: expected 422, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/api/predict/parkinsons", token, fiber.Map{
		"features": make([]float64, inference.ParkinsonsFeatures),
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("valid vector: expected 200, got %d", resp.StatusCode)
	}
	var res struct {
		Outcome string `json:"outcome"`
	}
	decode(t, resp, &res)
	if res.Outcome != "No Parkinson's" {
		t.Errorf("expected negative verdict, got %q", res.Outcome)
	}
}

func TestPredictPneumoniaImageUpload(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "pneumonia_user")

	var imgBuf bytes.Buffer
	if err := png.Encode(&imgBuf, image.NewRGBA(image.Rect(0, 0, 64, 64))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "xray.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := io.Copy(part, &imgBuf); err != nil {
		t.Fatalf("copy image: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/predict/pneumonia", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, 20000)
	if err != nil {
		t.Fatalf("pneumonia request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var res struct {
		Outcome string `json:"outcome"`
	}
	decode(t, resp, &res)
	if res.Outcome != "No Pneumonia" {
		t.Errorf("expected negative verdict, got %q", res.Outcome)
	}

	// Sin archivo la petición es rechazada
	resp = doJSON(t, app, "POST", "/api/predict/pneumonia", token, fiber.Map{})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("missing image: expected 422, got %d", resp.StatusCode)
	}
}

func TestHistoryPaginationAndExport(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "history_user")

	for i := 0; i < 12; i++ {
		resp := doJSON(t, app, "POST", "/api/predict/diabetes", token, diabetesPayload())
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("seed predict %d: status %d", i, resp.StatusCode)
		}
	}

	resp := doJSON(t, app, "GET", "/api/records?page=2&page_size=10", token, nil)
	var hist struct {
		Page       int `json:"page"`
		TotalCount int `json:"total_count"`
		TotalPages int `json:"total_pages"`
		Records    []struct {
			ID int64 `json:"id"`
		} `json:"records"`
	}
	decode(t, resp, &hist)
	if hist.TotalCount != 12 || hist.TotalPages != 2 || hist.Page != 2 || len(hist.Records) != 2 {
		t.Errorf("unexpected page 2: %+v", hist)
	}

	// page_size fuera de rango
	resp = doJSON(t, app, "GET", "/api/records?page=1&page_size=1000", token, nil)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("oversized page_size: expected 422, got %d", resp.StatusCode)
	}

	// Export CSV: encabezado + 12 filas
	resp = doJSON(t, app, "GET", "/api/records/export", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("export: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv, got %q", ct)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 13 {
		t.Errorf("expected 13 csv lines, got %d", len(lines))
	}
}

func TestDashboardSummary(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "dash_user")

	resp := doJSON(t, app, "POST", "/api/predict/diabetes", token, diabetesPayload())
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("seed predict: status %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/dashboard", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", resp.StatusCode)
	}
	var dash struct {
		TotalPredictions int            `json:"total_predictions"`
		ByType           map[string]int `json:"by_type"`
		LatestBMI        *float64       `json:"latest_bmi"`
	}
	decode(t, resp, &dash)
	if dash.TotalPredictions != 1 || dash.ByType["Diabetes"] != 1 {
		t.Errorf("unexpected dashboard: %+v", dash)
	}
	if dash.LatestBMI == nil || *dash.LatestBMI != 28.4 {
		t.Errorf("expected latest bmi 28.4, got %v", dash.LatestBMI)
	}
}

func TestContactForm(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, "POST", "/api/contact", "", fiber.Map{
		"name":    "Visitor",
		"email":   "visitor@example.com",
		"subject": "Question",
		"message": "How accurate are the predictions?",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("contact: expected 201, got %d", resp.StatusCode)
	}
	var out struct {
		Reference string `json:"reference"`
	}
	decode(t, resp, &out)
	if out.Reference == "" {
		t.Error("expected ticket reference")
	}

	var count int
	if err := testDB.QueryRow(`SELECT COUNT(*) FROM contact_submissions WHERE reference = ?`, out.Reference).Scan(&count); err != nil {
		t.Fatalf("count submissions: %v", err)
	}
	if count != 1 {
		t.Errorf("expected stored submission, got %d", count)
	}

	// Campos faltantes
	resp = doJSON(t, app, "POST", "/api/contact", "", fiber.Map{"name": "X"})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("incomplete form: expected 422, got %d", resp.StatusCode)
	}
}

func TestForgotPasswordIsGeneric(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "forgot_user")

	known := doJSON(t, app, "POST", "/api/forgot-password", "", fiber.Map{
		"email": "forgot_user@example.com",
	})
	unknown := doJSON(t, app, "POST", "/api/forgot-password", "", fiber.Map{
		"email": "nobody@example.com",
	})
	if known.StatusCode != fiber.StatusOK || unknown.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for both, got %d and %d", known.StatusCode, unknown.StatusCode)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "delete_user")

	resp := doJSON(t, app, "POST", "/api/predict/diabetes", token, diabetesPayload())
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("seed predict: status %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "DELETE", "/api/profile", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}

	var count int
	if err := testDB.QueryRow(`SELECT COUNT(*) FROM users WHERE username = 'delete_user'`).Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Error("expected user row to be gone")
	}

	// El token ya no sirve
	resp = doJSON(t, app, "GET", "/api/profile", token, nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 after deletion, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, "GET", "/api/health", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.StatusCode)
	}
	var out struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	decode(t, resp, &out)
	if out.Status != "healthy" {
		t.Errorf("expected healthy, got %q (%v)", out.Status, out.Services)
	}
	for _, svc := range []string{"database", "model_diabetes", "model_parkinsons", "model_pneumonia"} {
		if _, ok := out.Services[svc]; !ok {
			t.Errorf("expected %s in services map", svc)
		}
	}
}

func TestThemeUpdate(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "theme_user")

	resp := doJSON(t, app, "PUT", "/api/profile/theme", token, fiber.Map{"theme": "dark"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("theme update: expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "PUT", "/api/profile/theme", token, fiber.Map{"theme": "neon"})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("invalid theme: expected 422, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/profile", token, nil)
	var profile struct {
		Theme string `json:"theme"`
	}
	decode(t, resp, &profile)
	if profile.Theme != "dark" {
		t.Errorf("expected theme dark, got %q", profile.Theme)
	}
}

func TestResetPasswordFlow(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "reset_user")

	// Pedir el reseteo y sacar el token directo de la base
	resp := doJSON(t, app, "POST", "/api/forgot-password", "", fiber.Map{
		"email": "reset_user@example.com",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("forgot: expected 200, got %d", resp.StatusCode)
	}
	var token string
	err := testDB.QueryRow(
		`SELECT pr.token FROM password_resets pr
		 JOIN users u ON u.id = pr.user_id WHERE u.username = 'reset_user'`,
	).Scan(&token)
	if err != nil {
		t.Fatalf("read reset token: %v", err)
	}

	resp = doJSON(t, app, "POST", "/api/reset-password", "", fiber.Map{
		"token":        token,
		"new_password": "brandnewsecret1",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("reset: expected 200, got %d", resp.StatusCode)
	}

	// El password anterior ya no sirve, el nuevo sí
	resp = doJSON(t, app, "POST", "/api/login", "", fiber.Map{
		"username": "reset_user",
		"password": "supersecret1",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("old password: expected 401, got %d", resp.StatusCode)
	}
	resp = doJSON(t, app, "POST", "/api/login", "", fiber.Map{
		"username": "reset_user",
		"password": "brandnewsecret1",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("new password: expected 200, got %d", resp.StatusCode)
	}

	// El token es de un solo uso
	resp = doJSON(t, app, "POST", "/api/reset-password", "", fiber.Map{
		"token":        token,
		"new_password": "anotherone123",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("token reuse: expected 401, got %d", resp.StatusCode)
	}
}
