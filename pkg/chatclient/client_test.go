package chatclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"Homemade/pkg/config"
	"Homemade/pkg/database"
	"Homemade/pkg/messaging"
	"Homemade/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.JWTSecret = "client-test-secret"
	config.TokenTTLHours = 1

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "client.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		DB:        db,
		Messaging: messaging.NewService(messaging.NewStore(db, nil), nil),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func register(t *testing.T, c *Client, username string) *Session {
	t.Helper()
	ctx := context.Background()
	err := c.do(ctx, http.MethodPost, "/api/register", "", map[string]string{
		"username": username, "password": "password123",
	}, nil)
	require.NoError(t, err)
	s, err := c.Login(ctx, username, "password123")
	require.NoError(t, err)
	require.NotZero(t, s.UserID)
	require.NotEmpty(t, s.Token)
	return s
}

func TestClientSendAndRead(t *testing.T) {
	req := require.New(t)
	srv := startServer(t)
	c := New(srv.URL, nil)
	ctx := context.Background()

	alice := register(t, c, "alice")
	bob := register(t, c, "bob")

	empty, err := c.Conversation(ctx, alice, bob.UserID)
	req.NoError(err)
	req.NotNil(empty)
	req.Empty(empty)

	sent, err := c.Send(ctx, alice, bob.UserID, "hello")
	req.NoError(err)
	req.NotZero(sent.ID)
	req.Equal("hello", sent.Content)

	_, err = c.Send(ctx, bob, alice.UserID, "hi back")
	req.NoError(err)

	fromAlice, err := c.Conversation(ctx, alice, bob.UserID)
	req.NoError(err)
	fromBob, err := c.Conversation(ctx, bob, alice.UserID)
	req.NoError(err)
	req.Len(fromAlice, 2)
	req.Equal(sent.ID, fromAlice[0].ID)
	req.Equal("hi back", fromAlice[1].Content)
	req.Equal(fromAlice, fromBob)
}

func TestClientReportsAPIErrors(t *testing.T) {
	srv := startServer(t)
	c := New(srv.URL, nil)
	alice := register(t, c, "alice")

	_, err := c.Send(context.Background(), alice, 42, "   ")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.NotEmpty(t, apiErr.Message)

	_, err = c.Login(context.Background(), "alice", "wrong-password1")
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Invalid password", apiErr.Message)
}

func TestClientReportsNetworkErrors(t *testing.T) {
	srv := startServer(t)
	url := srv.URL
	srv.Close()

	c := New(url, &http.Client{Timeout: time.Second})
	_, err := c.Conversation(context.Background(), &Session{UserID: 1, Token: "x"}, 2)
	require.ErrorIs(t, err, ErrNetwork)
}
