package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PokerRooms/config"
	"PokerRooms/internal/auth"
	"PokerRooms/internal/game/manager"
	"PokerRooms/internal/game/table"
	"PokerRooms/internal/matchmaker"
	"PokerRooms/internal/websocket"
)

type testServer struct {
	router *gin.Engine
	mgr    *manager.GameManager
	auth   *auth.Handler
}

func newTestServer(t *testing.T, required bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var cfg config.Config
	cfg.Auth.Required = required
	cfg.JWT.Secret = "router-secret"

	hub := websocket.NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Close)

	mgr := manager.NewGameManager(hub, manager.Options{})
	t.Cleanup(mgr.Close)
	mm := matchmaker.NewService(matchmaker.NewMemoryRepo(), hub, mgr, matchmaker.Options{})
	authH := auth.NewHandler(cfg.JWT.Secret, auth.Options{})

	return &testServer{router: newRouter(&cfg, hub, mgr, mm, authH), mgr: mgr, auth: authH}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, true)
	w := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, true)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/ws"},
		{http.MethodGet, "/rooms/x"},
		{http.MethodDelete, "/rooms/x"},
		{http.MethodPost, "/match/join"},
		{http.MethodPost, "/match/cancel"},
	} {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, r.method, r.path, "", "").Code, r.path)
	}
	// 认证开启时 ?userId= 不生效
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodDelete, "/rooms/x?userId=0xA", "", "").Code)
}

func TestMatchSeatsPlayersIntoRoom(t *testing.T) {
	s := newTestServer(t, true)
	tokA, err := s.auth.IssueToken("0xA")
	require.NoError(t, err)
	tokB, err := s.auth.IssueToken("0xB")
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/match/join", tokA, `{"tableSize":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/match/join", tokB, `{"tableSize":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp matchmaker.JoinResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Queued)

	w = s.do(t, http.MethodGet, "/rooms/"+resp.RoomID, tokA, "")
	require.Equal(t, http.StatusOK, w.Code)
	var v table.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Len(t, v.Players, 2)
	assert.Equal(t, table.PhasePreflop, v.Phase)

	// 只有房主能关闭
	owner := v.Owner
	other := "0xA"
	if owner == "0xA" {
		other = "0xB"
	}
	tokOther, _ := s.auth.IssueToken(other)
	tokOwner, _ := s.auth.IssueToken(owner)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/rooms/"+resp.RoomID, tokOther, "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/rooms/"+resp.RoomID, tokOwner, "").Code)
	assert.Equal(t, 0, s.mgr.Rooms())
}

func TestOpenModeUsesQueryIdentity(t *testing.T) {
	s := newTestServer(t, false)
	_, err := s.mgr.Join(context.Background(), manager.JoinRequest{RoomID: "t1", UserID: "0xA"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodDelete, "/rooms/t1", "", "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/rooms/t1?userId=0xB", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/rooms/t1?userId=0xA", "", "").Code)
}
