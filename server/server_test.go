package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scamlux/smm-league/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type testServer struct {
	srv *Server
	r   *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Sandbox(t.TempDir() + "/")
	r := gin.New()
	srv, err := New(cfg, r)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return &testServer{srv: srv, r: r}
}

// do runs a request against the router and decodes the response envelope.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.r.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	}
	return w.Code, out
}

func data(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	require.Equal(t, true, resp["success"], "resp: %v", resp)
	d, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "data is %T", resp["data"])
	return d
}

func dataList(t *testing.T, resp map[string]interface{}) []interface{} {
	t.Helper()
	require.Equal(t, true, resp["success"], "resp: %v", resp)
	l, ok := resp["data"].([]interface{})
	require.True(t, ok, "data is %T", resp["data"])
	return l
}

func errCode(t *testing.T, resp map[string]interface{}) string {
	t.Helper()
	require.Equal(t, false, resp["success"], "resp: %v", resp)
	e, ok := resp["error"].(map[string]interface{})
	require.True(t, ok, "error is %T", resp["error"])
	code, _ := e["code"].(string)
	return code
}

func (ts *testServer) register(t *testing.T, name, email, role string) (string, map[string]interface{}) {
	t.Helper()
	code, resp := ts.do(t, "POST", "/auth/register", "", gin.H{
		"email": email, "password": "password123", "name": name, "role": role,
	})
	require.Equal(t, http.StatusOK, code, "resp: %v", resp)
	d := data(t, resp)
	tok, _ := d["token"].(string)
	require.NotEmpty(t, tok)
	user, _ := d["user"].(map[string]interface{})
	require.NotNil(t, user)
	return tok, user
}

func (ts *testServer) login(t *testing.T, email, pass string) string {
	t.Helper()
	code, resp := ts.do(t, "POST", "/auth/login", "", gin.H{"email": email, "password": pass})
	require.Equal(t, http.StatusOK, code, "resp: %v", resp)
	tok, _ := data(t, resp)["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	tok, user := ts.register(t, "Acme Inc", "brand@acme.test", "BRAND")
	assert.Equal(t, "BRAND", user["role"])
	require.NotNil(t, user["brand"], "brand profile should ride along")
	assert.Nil(t, user["influencer"])

	// duplicate email
	code, resp := ts.do(t, "POST", "/auth/register", "", gin.H{
		"email": "brand@acme.test", "password": "password123", "name": "Clone", "role": "BRAND",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", errCode(t, resp))

	// admins cannot self-register
	code, resp = ts.do(t, "POST", "/auth/register", "", gin.H{
		"email": "evil@acme.test", "password": "password123", "name": "Evil", "role": "ADMIN",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", errCode(t, resp))

	code, resp = ts.do(t, "POST", "/auth/login", "", gin.H{"email": "brand@acme.test", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHENTICATED", errCode(t, resp))

	code, resp = ts.do(t, "GET", "/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "brand@acme.test", data(t, resp)["email"])

	code, _ = ts.do(t, "GET", "/auth/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = ts.do(t, "GET", "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

// TestMarketplaceFlow walks the whole happy path: campaign, competing bids,
// acceptance, content, approval, completion, with the authorization failures
// checked at each step.
func TestMarketplaceFlow(t *testing.T) {
	ts := newTestServer(t)

	brandTok, _ := ts.register(t, "Acme Inc", "brand@acme.test", "BRAND")
	infTok, _ := ts.register(t, "Jane Doe", "jane@creators.test", "INFLUENCER")
	rivalTok, _ := ts.register(t, "John Roe", "john@creators.test", "INFLUENCER")

	// unauthenticated writes bounce
	code, _ := ts.do(t, "POST", "/campaigns", "", gin.H{})
	require.Equal(t, http.StatusUnauthorized, code)

	deadline := time.Now().Add(30 * 24 * time.Hour).Unix()
	code, resp := ts.do(t, "POST", "/campaigns", brandTok, gin.H{
		"title":       "Summer push",
		"description": "Short form videos for the summer line",
		"budget":      5000,
		"platform":    "INSTAGRAM",
		"deadline":    deadline,
	})
	require.Equal(t, http.StatusOK, code, "resp: %v", resp)
	cmp := data(t, resp)
	cmpId, _ := cmp["id"].(string)
	require.NotEmpty(t, cmpId)
	assert.Equal(t, "OPEN", cmp["status"])
	assert.Equal(t, float64(5000), cmp["budget"])

	// influencers cannot create campaigns
	code, resp = ts.do(t, "POST", "/campaigns", infTok, gin.H{
		"title": "x", "description": "y", "budget": 1, "platform": "TIKTOK", "deadline": deadline,
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "PERMISSION_DENIED", errCode(t, resp))

	// the campaign list is public
	code, resp = ts.do(t, "GET", "/campaigns", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, dataList(t, resp), 1)

	code, resp = ts.do(t, "GET", "/campaigns?status=BOGUS", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", errCode(t, resp))

	// two competing bids
	code, resp = ts.do(t, "POST", "/campaigns/"+cmpId+"/bids", infTok, gin.H{
		"price": 1200, "proposal": "Three reels and a story", "deliveryTime": deadline,
	})
	require.Equal(t, http.StatusOK, code, "resp: %v", resp)
	winnerId, _ := data(t, resp)["id"].(string)

	code, resp = ts.do(t, "POST", "/campaigns/"+cmpId+"/bids", rivalTok, gin.H{
		"price": 900, "proposal": "One video", "deliveryTime": deadline,
	})
	require.Equal(t, http.StatusOK, code)
	loserId, _ := data(t, resp)["id"].(string)

	code, resp = ts.do(t, "POST", "/campaigns/"+cmpId+"/bids", infTok, gin.H{
		"price": -5, "proposal": "x", "deliveryTime": deadline,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", errCode(t, resp))

	// bid listing is owner-only
	code, _ = ts.do(t, "GET", "/campaigns/"+cmpId+"/bids", infTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, resp = ts.do(t, "GET", "/campaigns/"+cmpId+"/bids", brandTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, dataList(t, resp), 2)

	// acceptance is owner-only too
	code, _ = ts.do(t, "POST", "/campaigns/bids/"+winnerId+"/accept", infTok, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = ts.do(t, "POST", "/campaigns/bids/"+winnerId+"/accept", brandTok, nil)
	require.Equal(t, http.StatusOK, code, "resp: %v", resp)
	deal := data(t, resp)
	dealId, _ := deal["id"].(string)
	require.NotEmpty(t, dealId)
	assert.Equal(t, "ACTIVE", deal["status"])
	assert.Equal(t, float64(1200), deal["price"])

	// the competing bid got rejected, the campaign itself stays OPEN
	code, resp = ts.do(t, "GET", "/campaigns/"+cmpId, "", nil)
	require.Equal(t, http.StatusOK, code)
	cmp = data(t, resp)
	assert.Equal(t, "OPEN", cmp["status"])
	for _, raw := range cmp["bids"].([]interface{}) {
		bid := raw.(map[string]interface{})
		switch bid["id"] {
		case winnerId:
			assert.Equal(t, "ACCEPTED", bid["status"])
		case loserId:
			assert.Equal(t, "REJECTED", bid["status"])
		}
	}

	// accepting again conflicts
	code, resp = ts.do(t, "POST", "/campaigns/bids/"+winnerId+"/accept", brandTok, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE", errCode(t, resp))

	// deal visibility: participants only
	code, _ = ts.do(t, "GET", "/deals/"+dealId, rivalTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, resp = ts.do(t, "GET", "/deals/"+dealId, infTok, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, data(t, resp)["campaign"])

	code, resp = ts.do(t, "GET", "/deals", infTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, dataList(t, resp), 1)
	code, resp = ts.do(t, "GET", "/deals", rivalTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, dataList(t, resp), 0)

	// approval before content is out of order
	code, resp = ts.do(t, "POST", "/deals/"+dealId+"/approve", brandTok, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE", errCode(t, resp))

	// only the influencer submits content
	code, _ = ts.do(t, "POST", "/deals/"+dealId+"/content", brandTok, gin.H{"contentUrl": "https://ig.test/p/1"})
	assert.Equal(t, http.StatusForbidden, code)
	code, resp = ts.do(t, "POST", "/deals/"+dealId+"/content", infTok, gin.H{"contentUrl": "https://ig.test/p/1"})
	require.Equal(t, http.StatusOK, code, "resp: %v", resp)
	deal = data(t, resp)
	assert.Equal(t, "CONTENT_SUBMITTED", deal["status"])
	assert.Equal(t, "https://ig.test/p/1", deal["contentUrl"])

	// only the brand approves and completes
	code, _ = ts.do(t, "POST", "/deals/"+dealId+"/approve", infTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, resp = ts.do(t, "POST", "/deals/"+dealId+"/approve", brandTok, nil)
	require.Equal(t, http.StatusOK, code)
	deal = data(t, resp)
	assert.Equal(t, "APPROVED", deal["status"])
	assert.NotZero(t, deal["approvedAt"])

	code, resp = ts.do(t, "POST", "/deals/"+dealId+"/complete", brandTok, nil)
	require.Equal(t, http.StatusOK, code)
	deal = data(t, resp)
	assert.Equal(t, "COMPLETED", deal["status"])
	assert.NotZero(t, deal["completedAt"])

	// terminal means terminal
	code, resp = ts.do(t, "POST", "/deals/"+dealId+"/cancel", brandTok, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE", errCode(t, resp))
}

// TestEnumBinding pins the request-level enum validation: bad enum values die
// at binding, before any handler logic (role checks, lookups) can run.
func TestEnumBinding(t *testing.T) {
	ts := newTestServer(t)

	infTok, _ := ts.register(t, "Jane Doe", "jane@creators.test", "INFLUENCER")

	// a 403 here would mean the role check ran first, i.e. binding let the
	// bogus platform through
	deadline := time.Now().Add(30 * 24 * time.Hour).Unix()
	code, resp := ts.do(t, "POST", "/campaigns", infTok, gin.H{
		"title": "x", "description": "y", "budget": 1, "platform": "MYSPACE", "deadline": deadline,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", errCode(t, resp))

	// likewise a 404 here would mean the deal lookup ran first
	code, resp = ts.do(t, "PUT", "/deals/999/status", infTok, gin.H{"status": "PAUSED"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", errCode(t, resp))
}

func TestDealChat(t *testing.T) {
	ts := newTestServer(t)

	brandTok, _ := ts.register(t, "Acme Inc", "brand@acme.test", "BRAND")
	infTok, _ := ts.register(t, "Jane Doe", "jane@creators.test", "INFLUENCER")
	rivalTok, _ := ts.register(t, "John Roe", "john@creators.test", "INFLUENCER")

	deadline := time.Now().Add(30 * 24 * time.Hour).Unix()
	_, resp := ts.do(t, "POST", "/campaigns", brandTok, gin.H{
		"title": "Summer push", "description": "d", "budget": 5000, "platform": "INSTAGRAM", "deadline": deadline,
	})
	cmpId := data(t, resp)["id"].(string)
	_, resp = ts.do(t, "POST", "/campaigns/"+cmpId+"/bids", infTok, gin.H{
		"price": 1200, "proposal": "p", "deliveryTime": deadline,
	})
	bidId := data(t, resp)["id"].(string)
	_, resp = ts.do(t, "POST", "/campaigns/bids/"+bidId+"/accept", brandTok, nil)
	dealId := data(t, resp)["id"].(string)

	code, resp := ts.do(t, "POST", "/deals/"+dealId+"/messages", brandTok, gin.H{"content": "when can you start?"})
	require.Equal(t, http.StatusOK, code, "resp: %v", resp)
	code, _ = ts.do(t, "POST", "/deals/"+dealId+"/messages", infTok, gin.H{"content": "tomorrow"})
	require.Equal(t, http.StatusOK, code)

	code, resp = ts.do(t, "POST", "/deals/"+dealId+"/messages", brandTok, gin.H{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", errCode(t, resp))

	code, _ = ts.do(t, "POST", "/deals/"+dealId+"/messages", rivalTok, gin.H{"content": "let me in"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = ts.do(t, "GET", "/deals/"+dealId+"/messages", rivalTok, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = ts.do(t, "GET", "/deals/"+dealId+"/messages", infTok, nil)
	require.Equal(t, http.StatusOK, code)
	msgs := dataList(t, resp)
	require.Len(t, msgs, 2)
	assert.Equal(t, "when can you start?", msgs[0].(map[string]interface{})["content"])
	assert.Equal(t, "tomorrow", msgs[1].(map[string]interface{})["content"])
}

func TestAdminSurface(t *testing.T) {
	ts := newTestServer(t)
	cfg := ts.srv.Cfg

	adminTok := ts.login(t, cfg.AdminEmail, cfg.AdminPass)
	brandTok, brandUser := ts.register(t, "Acme Inc", "brand@acme.test", "BRAND")
	brandId := brandUser["id"].(string)

	// the admin group is closed to everyone else
	code, _ := ts.do(t, "GET", "/admin/users", brandTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = ts.do(t, "GET", "/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp := ts.do(t, "GET", "/admin/users", adminTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, dataList(t, resp), 2)

	code, resp = ts.do(t, "GET", "/admin/users/"+brandId, adminTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "brand@acme.test", data(t, resp)["email"])
	code, _ = ts.do(t, "GET", "/admin/users/999", adminTok, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// admin-created users may carry any role
	code, resp = ts.do(t, "POST", "/admin/users", adminTok, gin.H{
		"email": "ops@smm-league.io", "password": "password123", "name": "Ops Admin", "role": "ADMIN",
	})
	require.Equal(t, http.StatusOK, code, "resp: %v", resp)
	assert.Equal(t, "ADMIN", data(t, resp)["role"])

	code, resp = ts.do(t, "PUT", "/admin/users/"+brandId, adminTok, gin.H{
		"name": "Acme Corp", "companyName": "Acme Corporation",
	})
	require.Equal(t, http.StatusOK, code)
	u := data(t, resp)
	assert.Equal(t, "Acme Corp", u["name"])
	assert.Equal(t, "Acme Corporation", u["brand"].(map[string]interface{})["companyName"])

	// unknown patch fields are rejected outright
	code, resp = ts.do(t, "PUT", "/admin/users/"+brandId, adminTok, gin.H{"email": "new@acme.test"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", errCode(t, resp))

	code, _ = ts.do(t, "DELETE", "/admin/users/"+brandId, adminTok, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = ts.do(t, "GET", "/auth/me", brandTok, nil)
	assert.Equal(t, http.StatusUnauthorized, code, "deleted users lose access")
}

func TestAuditTrail(t *testing.T) {
	ts := newTestServer(t)
	cfg := ts.srv.Cfg

	adminTok := ts.login(t, cfg.AdminEmail, cfg.AdminPass)
	brandTok, _ := ts.register(t, "Acme Inc", "brand@acme.test", "BRAND")

	deadline := time.Now().Add(30 * 24 * time.Hour).Unix()
	code, _ := ts.do(t, "POST", "/campaigns", brandTok, gin.H{
		"title": "Summer push", "description": "d", "budget": 5000, "platform": "INSTAGRAM", "deadline": deadline,
	})
	require.Equal(t, http.StatusOK, code)

	// records land asynchronously
	assert.Eventually(t, func() bool {
		code, resp := ts.do(t, "GET", "/admin/actions", adminTok, nil)
		if code != http.StatusOK {
			return false
		}
		for _, raw := range dataList(t, resp) {
			if raw.(map[string]interface{})["action"] == "CREATE_CAMPAIGN" {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)

	code, _ = ts.do(t, "GET", "/admin/actions", brandTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
}
