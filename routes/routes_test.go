package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"Homemade/middleware"
	"Homemade/pkg/cache"
	"Homemade/pkg/config"
	"Homemade/pkg/database"
	"Homemade/pkg/messaging"
	"Homemade/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t *testing.T
	r *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.JWTSecret = "test-secret"
	config.TokenTTLHours = 1

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "app.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store := messaging.NewCachedStore(messaging.NewStore(db, nil), cache.New(100), time.Minute)
	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		DB:          db,
		Messaging:   messaging.NewService(store, nil),
		SendLimiter: middleware.NewRateLimiter(time.Minute, 100),
	})
	return &testServer{t: t, r: r}
}

func (s *testServer) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

// signup registers and logs in a user, returning its id and token.
func (s *testServer) signup(username, role string) (uint, string) {
	s.t.Helper()
	code, out := s.do(http.MethodPost, "/api/register", "", gin.H{
		"username": username, "password": "password123", "role": role,
	})
	require.Equal(s.t, http.StatusCreated, code, out)

	code, out = s.do(http.MethodPost, "/api/login", "", gin.H{
		"username": username, "password": "password123",
	})
	require.Equal(s.t, http.StatusOK, code, out)
	user := out["user"].(map[string]any)
	return uint(user["id"].(float64)), out["token"].(string)
}

func messagesOf(t *testing.T, out map[string]any) []map[string]any {
	t.Helper()
	raw, ok := out["data"].([]any)
	require.True(t, ok, "data must be an array: %v", out)
	msgs := make([]map[string]any, 0, len(raw))
	for _, m := range raw {
		msgs = append(msgs, m.(map[string]any))
	}
	return msgs
}

func TestConversationEndToEnd(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	alice, aliceTok := s.signup("alice", "buyer")
	bob, bobTok := s.signup("bob", "seller")

	code, out := s.do(http.MethodPost, "/api/messages", aliceTok, gin.H{
		"sender_id": alice, "receiver_id": bob, "content": "hello",
	})
	req.Equal(http.StatusOK, code, out)
	req.Equal("Message sent", out["message"])
	req.NotZero(out["id"])

	path := "/api/messages/" + itoa(alice) + "/" + itoa(bob)
	code, out = s.do(http.MethodGet, path, aliceTok, nil)
	req.Equal(http.StatusOK, code)
	req.Equal("success", out["message"])
	msgs := messagesOf(t, out)
	req.Len(msgs, 1)
	req.Equal(float64(alice), msgs[0]["sender_id"])
	req.Equal(float64(bob), msgs[0]["receiver_id"])
	req.Equal("hello", msgs[0]["content"])
	for _, k := range []string{"id", "timestamp"} {
		req.Contains(msgs[0], k)
	}

	code, out = s.do(http.MethodPost, "/api/messages", bobTok, gin.H{
		"sender_id": bob, "receiver_id": alice, "content": "hi back",
	})
	req.Equal(http.StatusOK, code, out)

	_, forward := s.do(http.MethodGet, path, aliceTok, nil)
	_, backward := s.do(http.MethodGet, "/api/messages/"+itoa(bob)+"/"+itoa(alice), bobTok, nil)
	fm := messagesOf(t, forward)
	req.Len(fm, 2)
	req.Equal("hello", fm[0]["content"])
	req.Equal("hi back", fm[1]["content"])
	req.Equal(fm, messagesOf(t, backward))
}

func TestEmptyConversationIsEmptyList(t *testing.T) {
	s := newTestServer(t)
	alice, tok := s.signup("alice", "buyer")

	code, out := s.do(http.MethodGet, "/api/messages/"+itoa(alice)+"/999", tok, nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, messagesOf(t, out))
}

func TestSendRejections(t *testing.T) {
	s := newTestServer(t)
	alice, aliceTok := s.signup("alice", "buyer")
	bob, _ := s.signup("bob", "seller")

	cases := []struct {
		name  string
		token string
		body  any
		want  int
	}{
		{"blank content", aliceTok, gin.H{"sender_id": alice, "receiver_id": bob, "content": "   "}, http.StatusBadRequest},
		{"self message", aliceTok, gin.H{"sender_id": alice, "receiver_id": alice, "content": "me"}, http.StatusBadRequest},
		{"missing sender", aliceTok, gin.H{"receiver_id": bob, "content": "hi"}, http.StatusBadRequest},
		{"missing receiver", aliceTok, gin.H{"sender_id": alice, "content": "hi"}, http.StatusBadRequest},
		{"malformed id", aliceTok, gin.H{"sender_id": alice, "receiver_id": -3, "content": "x"}, http.StatusBadRequest},
		{"impersonation", aliceTok, gin.H{"sender_id": bob, "receiver_id": alice, "content": "x"}, http.StatusForbidden},
		{"no token", "", gin.H{"sender_id": alice, "receiver_id": bob, "content": "x"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, out := s.do(http.MethodPost, "/api/messages", tc.token, tc.body)
			require.Equal(t, tc.want, code, out)
			require.NotEmpty(t, out["error"])
		})
	}

	_, out := s.do(http.MethodGet, "/api/messages/"+itoa(alice)+"/"+itoa(bob), aliceTok, nil)
	require.Empty(t, messagesOf(t, out))
}

func TestReadRequiresParticipant(t *testing.T) {
	s := newTestServer(t)
	alice, aliceTok := s.signup("alice", "buyer")
	bob, _ := s.signup("bob", "seller")
	_, carolTok := s.signup("carol", "buyer")

	code, _ := s.do(http.MethodPost, "/api/messages", aliceTok, gin.H{"sender_id": alice, "receiver_id": bob, "content": "secret"})
	require.Equal(t, http.StatusOK, code)

	code, out := s.do(http.MethodGet, "/api/messages/"+itoa(alice)+"/"+itoa(bob), carolTok, nil)
	require.Equal(t, http.StatusForbidden, code)
	require.NotEmpty(t, out["error"])

	code, _ = s.do(http.MethodGet, "/api/messages/abc/"+itoa(bob), aliceTok, nil)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestRegisterLoginLogout(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	_, tok := s.signup("dave", "")

	code, out := s.do(http.MethodPost, "/api/register", "", gin.H{"username": "dave", "password": "password123"})
	req.Equal(http.StatusBadRequest, code)
	req.Equal("Username already exists", out["error"])

	code, out = s.do(http.MethodPost, "/api/register", "", gin.H{"username": "", "password": ""})
	req.Equal(http.StatusBadRequest, code)
	req.Equal("Username and password required", out["error"])

	code, out = s.do(http.MethodPost, "/api/login", "", gin.H{"username": "dave", "password": "wrong-pass1"})
	req.Equal(http.StatusBadRequest, code)
	req.Equal("Invalid password", out["error"])

	code, out = s.do(http.MethodPost, "/api/login", "", gin.H{"username": "nobody", "password": "password123"})
	req.Equal(http.StatusBadRequest, code)
	req.Equal("User not found", out["error"])

	code, _ = s.do(http.MethodPost, "/api/logout", tok, nil)
	req.Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/messages/1/2", tok, nil)
	req.Equal(http.StatusUnauthorized, code)
}

func TestProfileDefaultsAndUpdate(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	id, tok := s.signup("erin", "seller")
	other, _ := s.signup("frank", "buyer")

	code, out := s.do(http.MethodGet, "/api/users/"+itoa(id), tok, nil)
	req.Equal(http.StatusOK, code)
	data := out["data"].(map[string]any)
	req.Equal(40.7829, data["latitude"])
	req.Equal(-73.9654, data["longitude"])

	code, out = s.do(http.MethodPut, "/api/users/"+itoa(id), tok, gin.H{})
	req.Equal(http.StatusBadRequest, code)
	req.Equal("No fields to update", out["error"])

	code, _ = s.do(http.MethodPut, "/api/users/"+itoa(other), tok, gin.H{"bio": "hi"})
	req.Equal(http.StatusForbidden, code)

	code, out = s.do(http.MethodPut, "/api/users/"+itoa(id), tok, gin.H{"bio": "Home baker", "latitude": 40.78})
	req.Equal(http.StatusOK, code, out)
	_, out = s.do(http.MethodGet, "/api/users/"+itoa(id), tok, nil)
	data = out["data"].(map[string]any)
	req.Equal("Home baker", data["bio"])
	req.Equal(40.78, data["latitude"])
}

func TestSellersAndProducts(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	seller, sellerTok := s.signup("alice_baker", "seller")
	_, buyerTok := s.signup("bob_buyer", "buyer")

	code, out := s.do(http.MethodPost, "/api/products", sellerTok, gin.H{"name": "Sourdough Bread", "price": 8.5})
	req.Equal(http.StatusCreated, code, out)
	code, out = s.do(http.MethodPost, "/api/products", sellerTok, gin.H{"name": "Rye Loaf", "price": 6})
	req.Equal(http.StatusCreated, code, out)

	code, _ = s.do(http.MethodPost, "/api/products", buyerTok, gin.H{"name": "Nope", "price": 1})
	req.Equal(http.StatusForbidden, code)
	code, _ = s.do(http.MethodPost, "/api/products", sellerTok, gin.H{"name": "Bad", "price": -1})
	req.Equal(http.StatusBadRequest, code)

	code, out = s.do(http.MethodGet, "/api/sellers", "", nil)
	req.Equal(http.StatusOK, code)
	sellers := out["data"].([]any)
	req.Len(sellers, 1)
	first := sellers[0].(map[string]any)
	req.Equal(float64(seller), first["id"])
	req.Equal("Sourdough Bread,Rye Loaf", first["products"])

	code, out = s.do(http.MethodGet, "/api/products", "", nil)
	req.Equal(http.StatusOK, code)
	req.Len(out["data"].([]any), 2)
}

func TestRecommendWithoutKey(t *testing.T) {
	s := newTestServer(t)
	code, out := s.do(http.MethodPost, "/api/ai/recommend", "", gin.H{"products": []any{}, "userHistory": []string{}})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "AI service unavailable (Missing API Key)", out["message"])
	require.Equal(t, "Try our Sourdough Bread! (Default Recommendation)", out["recommendation"])
}

func itoa(v uint) string {
	b, _ := json.Marshal(v)
	return string(b)
}
