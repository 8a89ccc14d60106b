package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/circuit-dev/circuit/db"
	"github.com/circuit-dev/circuit/internal/auth"
	"github.com/circuit-dev/circuit/internal/models"
	"github.com/circuit-dev/circuit/internal/types"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialProjectFeed(t *testing.T, srv *httptest.Server, projectID uint, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + fmt.Sprintf("/api/ws/%d", projectID)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Origin", "http://localhost:3000")

	return websocket.DefaultDialer.Dial(url, header)
}

func TestWebSocketRequiresMembership(t *testing.T) {
	r := setupTestServer(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	alice := models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, db.DB.Create(&alice).Error)

	carol := models.User{Username: "carol", PasswordHash: "x"}
	require.NoError(t, db.DB.Create(&carol).Error)

	project := models.Project{Name: "P"}
	require.NoError(t, db.DB.Create(&project).Error)
	require.NoError(t, db.DB.Create(&models.ProjectMembership{
		UserID:    alice.ID,
		ProjectID: project.ID,
		Role:      types.RoleAdmin,
	}).Error)

	token, err := auth.GenerateJWT(carol.ID, carol.Username)
	require.NoError(t, err)

	_, resp, err := dialProjectFeed(t, srv, project.ID, token)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestWebSocketCloseReleasesGoroutines(t *testing.T) {
	r := setupTestServer(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	alice := models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, db.DB.Create(&alice).Error)

	project := models.Project{Name: "P"}
	require.NoError(t, db.DB.Create(&project).Error)
	require.NoError(t, db.DB.Create(&models.ProjectMembership{
		UserID:    alice.ID,
		ProjectID: project.ID,
		Role:      types.RoleAdmin,
	}).Error)

	token, err := auth.GenerateJWT(alice.ID, alice.Username)
	require.NoError(t, err)

	before := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		conn, resp, err := dialProjectFeed(t, srv, project.ID, token)
		require.NoError(t, err)
		resp.Body.Close()

		// Wait for the welcome event so the server side is fully set up.
		var event struct {
			Type string `json:"type"`
		}
		require.NoError(t, conn.ReadJSON(&event))
		require.Equal(t, "connected", event.Type)

		require.NoError(t, conn.Close())
	}

	// Every per-connection goroutine must wind down once the connections
	// are gone.
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 5*time.Second, 50*time.Millisecond)
}
