package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"secureshare/file-api/model"
	"secureshare/file-api/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	viper.Set("db.path", filepath.Join(dir, "test.db"))
	viper.Set("storage.path", filepath.Join(dir, "vault"))
	viper.Set("jwt.secret", "test-secret")
	viper.Set("host.frontend_url", "http://localhost:3000")
	viper.Set("upload.max_size", int64(10<<20))
	viper.Set("mail.enabled", false)

	a, err := NewRouter()
	require.NoError(t, err)

	// single connection avoids sqlite write contention with the
	// detached notification task
	sqlDB, err := a.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return a
}

func doJSON(a *API, method, path, cookie string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func authCookie(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			return "auth_token=" + c.Value
		}
	}

	t.Fatal("no auth_token cookie in response")
	return ""
}

func uploadFiles(t *testing.T, a *API, cookie string, real, decoy []byte) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("real_file", "report.pdf")
	require.NoError(t, err)
	fw.Write(real)

	fw, err = mw.CreateFormFile("decoy_file", "notes.pdf")
	require.NoError(t, err)
	fw.Write(decoy)

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Cookie", cookie)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reply struct {
		FileID string `json:"file_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))

	return reply.FileID
}

func liveCode(t *testing.T, a *API, token string) string {
	t.Helper()

	code, err := a.Codes.Issue(service.PurposeFileAccess, token)
	require.NoError(t, err)

	return code.Code
}

func TestRouter_Heartbeat(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodHead, "/api/heartbeat", nil)
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_FullShareFlow(t *testing.T) {
	a := newTestAPI(t)

	realContent := []byte("quarterly numbers, for real")
	decoyContent := []byte("grocery list")

	// register the owner
	w := doJSON(a, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "owner@example.com",
		"password": "ownerpass1",
		"name":     "Owner",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := authCookie(t, w)

	// upload real + decoy
	fileID := uploadFiles(t, a, cookie, realContent, decoyContent)

	// create the share link
	w = doJSON(a, http.MethodPost, "/api/share/create", cookie, gin.H{
		"file_id":        fileID,
		"password":       "link-pw",
		"expiry_hours":   24,
		"download_limit": 5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created struct {
		LinkToken string `json:"link_token"`
		ShareURL  string `json:"share_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Contains(t, created.ShareURL, created.LinkToken)

	// a requester asks for a code, only a masked hint comes back
	w = doJSON(a, http.MethodPost, "/api/access/request-code", "", gin.H{
		"link_token": created.LinkToken,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "own***@example.com")
	assert.NotContains(t, w.Body.String(), "owner@example.com")

	// correct password releases the real file
	w = doJSON(a, http.MethodPost, "/api/access/verify", "", gin.H{
		"link_token": created.LinkToken,
		"otp":        liveCode(t, a, created.LinkToken),
		"password":   "link-pw",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, realContent, w.Body.Bytes())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "report.pdf")

	// wrong password releases the decoy with the same response shape
	w = doJSON(a, http.MethodPost, "/api/access/verify", "", gin.H{
		"link_token": created.LinkToken,
		"otp":        liveCode(t, a, created.LinkToken),
		"password":   "wrong-pw",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, decoyContent, w.Body.Bytes())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "notes.pdf")

	// the owner sees both attempts, newest first
	var attempts struct {
		Attempts []struct {
			ID              string `json:"id"`
			PasswordCorrect bool   `json:"password_correct"`
			Served          string `json:"file_type_served"`
		} `json:"attempts"`
	}
	require.Eventually(t, func() bool {
		w = doJSON(a, http.MethodGet, "/api/access/attempts", cookie, nil)
		if w.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(w.Body.Bytes(), &attempts); err != nil {
			return false
		}
		return len(attempts.Attempts) == 2
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, model.ServedDecoy, attempts.Attempts[0].Served)
	assert.False(t, attempts.Attempts[0].PasswordCorrect)
	assert.Equal(t, model.ServedReal, attempts.Attempts[1].Served)

	// the owner blocks the link off the intrusion attempt
	w = doJSON(a, http.MethodPost, "/api/owner/block", cookie, gin.H{
		"attempt_id": attempts.Attempts[0].ID,
		"action":     "block",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// all further access dies at the gate
	w = doJSON(a, http.MethodPost, "/api/access/verify", "", gin.H{
		"link_token": created.LinkToken,
		"otp":        liveCode(t, a, created.LinkToken),
		"password":   "link-pw",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "link disabled")
}

func TestRouter_UnknownTokenIsFlat404(t *testing.T) {
	a := newTestAPI(t)

	w1 := doJSON(a, http.MethodPost, "/api/access/request-code", "", gin.H{
		"link_token": strings.Repeat("a", 64),
	})
	w2 := doJSON(a, http.MethodPost, "/api/access/verify", "", gin.H{
		"link_token": strings.Repeat("b", 64),
		"otp":        "123456",
		"password":   "whatever",
	})

	assert.Equal(t, http.StatusNotFound, w1.Code)
	assert.Equal(t, http.StatusNotFound, w2.Code)

	// identical wording on both, nothing to enumerate
	assert.Contains(t, w1.Body.String(), "Invalid link")
	assert.Contains(t, w2.Body.String(), "Invalid link")
}

func TestRouter_ProtectedRoutesNeedAuth(t *testing.T) {
	a := newTestAPI(t)

	w := doJSON(a, http.MethodGet, "/api/files", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(a, http.MethodGet, "/api/access/attempts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(a, http.MethodGet, "/api/auth/me", "auth_token=garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
