package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ewhamarket/backend/internal/common"
	"github.com/ewhamarket/backend/internal/handler"
	"github.com/ewhamarket/backend/internal/middleware"
	"github.com/ewhamarket/backend/internal/routes"
	"github.com/ewhamarket/backend/internal/service"
	"github.com/ewhamarket/backend/internal/store"
	"github.com/ewhamarket/backend/pkg/jwt"
	"github.com/ewhamarket/backend/pkg/kvtree"
	"github.com/ewhamarket/backend/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type apiResponse struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Meta    *common.PageMeta  `json:"meta"`
	Message string            `json:"message"`
	Error   *common.ErrorInfo `json:"error"`
}

// MarketAPITestSuite drives the full router against an in-memory store
type MarketAPITestSuite struct {
	suite.Suite
	router    *gin.Engine
	uploadDir string
}

func newRouter(t *testing.T, st *store.Store, uploadDir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	sessions := jwt.NewManager("test-secret", time.Hour)
	images, err := storage.NewLocalStorage(uploadDir)
	if err != nil {
		t.Fatal(err)
	}

	router := gin.New()
	routes.Setup(router,
		handler.NewAuthHandler(service.NewAuthService(st), sessions, images),
		handler.NewItemHandler(service.NewItemService(st), images),
		handler.NewReviewHandler(service.NewReviewService(st), images),
		handler.NewWishHandler(service.NewWishService(st)),
		handler.NewHealthHandler(st),
		sessions,
		uploadDir,
	)
	return router
}

func (s *MarketAPITestSuite) SetupTest() {
	nop := zerolog.Nop()
	s.uploadDir = s.T().TempDir()
	s.router = newRouter(s.T(), store.New(kvtree.NewMemoryTree(), &nop), s.uploadDir)
}

func (s *MarketAPITestSuite) do(method, path string, body interface{}, cookie *http.Cookie) (*httptest.ResponseRecorder, apiResponse) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return s.serve(req)
}

func (s *MarketAPITestSuite) serve(req *http.Request) (*httptest.ResponseRecorder, apiResponse) {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

// signupAndLogin returns the session cookie of a fresh user
func (s *MarketAPITestSuite) signupAndLogin(id string) *http.Cookie {
	w, _ := s.do(http.MethodPost, "/api/signup", gin.H{"id": id, "pw": "secret1", "email": id + "@ewha.ac.kr"}, nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	w, _ = s.do(http.MethodPost, "/api/login", gin.H{"id": id, "pw": "secret1"}, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	s.FailNow("session cookie not set")
	return nil
}

func (s *MarketAPITestSuite) createItem(cookie *http.Cookie, title string) {
	w, _ := s.do(http.MethodPost, "/api/items", gin.H{
		"title":    title,
		"price":    "15000",
		"region":   "신촌",
		"status":   "판매중",
		"desc":     "깨끗해요",
		"category": "book",
	}, cookie)
	s.Require().Equal(http.StatusCreated, w.Code)
}

func (s *MarketAPITestSuite) TestSignupAndCheckID() {
	w, resp := s.do(http.MethodGet, "/api/check_userid?id=alice", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"available":true}`, string(resp.Data))

	s.signupAndLogin("alice")

	_, resp = s.do(http.MethodGet, "/api/check_userid?id=alice", nil, nil)
	s.JSONEq(`{"available":false}`, string(resp.Data))

	w, resp = s.do(http.MethodPost, "/api/signup", gin.H{"id": "alice", "pw": "other1", "email": "x@ewha.ac.kr"}, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.False(resp.Success)

	w, _ = s.do(http.MethodPost, "/api/signup", gin.H{"id": "bad.id", "pw": "secret1", "email": "x@ewha.ac.kr"}, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodGet, "/api/check_userid", nil, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *MarketAPITestSuite) TestLoginAndMe() {
	w, _ := s.do(http.MethodGet, "/api/me", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	cookie := s.signupAndLogin("alice")

	w, _ = s.do(http.MethodPost, "/api/login", gin.H{"id": "alice", "pw": "wrong"}, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, resp := s.do(http.MethodGet, "/api/me", nil, cookie)
	s.Equal(http.StatusOK, w.Code)
	var me map[string]interface{}
	s.Require().NoError(json.Unmarshal(resp.Data, &me))
	s.Equal("alice", me["id"])
	s.NotContains(me, "pw")

	w, _ = s.do(http.MethodPut, "/api/me", gin.H{"email": "new@ewha.ac.kr", "phone": "010-1234"}, cookie)
	s.Equal(http.StatusOK, w.Code)
	_, resp = s.do(http.MethodGet, "/api/me", nil, cookie)
	s.Contains(string(resp.Data), "new@ewha.ac.kr")

	w, _ = s.do(http.MethodPost, "/api/logout", nil, cookie)
	s.Equal(http.StatusOK, w.Code)
}

func (s *MarketAPITestSuite) TestItemLifecycle() {
	seller := s.signupAndLogin("seller")
	buyer := s.signupAndLogin("buyer")

	w, _ := s.do(http.MethodPost, "/api/items", gin.H{"title": "lamp", "price": "100"}, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	s.createItem(seller, "lamp")
	s.createItem(seller, "desk")

	w, resp := s.do(http.MethodGet, "/api/items?per_page=1", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Require().NotNil(resp.Meta)
	s.Equal(2, resp.Meta.Total)
	s.Equal(2, resp.Meta.TotalPages)
	s.Contains(string(resp.Data), `"key":"lamp"`)

	w, resp = s.do(http.MethodGet, "/api/items/lamp", nil, buyer)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(string(resp.Data), `"trade_text":"직거래"`)

	w, _ = s.do(http.MethodGet, "/api/items/nothing", nil, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPut, "/api/items/lamp", gin.H{"title": "lamp", "price": "1"}, buyer)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPost, "/api/items/lamp/purchase", nil, seller)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPost, "/api/items/lamp/purchase", nil, buyer)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/api/items/lamp/purchase", nil, buyer)
	s.Equal(http.StatusConflict, w.Code)

	_, resp = s.do(http.MethodGet, "/api/my/purchases", nil, buyer)
	s.Contains(string(resp.Data), `"buyer":"buyer"`)

	_, resp = s.do(http.MethodGet, "/api/my/items", nil, seller)
	var mine []map[string]interface{}
	s.Require().NoError(json.Unmarshal(resp.Data, &mine))
	s.Len(mine, 2)

	w, _ = s.do(http.MethodPut, "/api/items/desk", gin.H{"title": "big desk", "price": "20000"}, seller)
	s.Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/items/big%20desk", nil, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/items/big%20desk", nil, seller)
	s.Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/items/big%20desk", nil, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *MarketAPITestSuite) TestCreateItemWithUpload() {
	seller := s.signupAndLogin("seller")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	s.Require().NoError(mw.WriteField("title", "camera"))
	s.Require().NoError(mw.WriteField("price", "300000"))
	s.Require().NoError(mw.WriteField("trade_method", "delivery"))
	part, err := mw.CreateFormFile("file", "camera.png")
	s.Require().NoError(err)
	_, err = part.Write([]byte("png-bytes"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/items", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(seller)
	w, resp := s.serve(req)
	s.Require().Equal(http.StatusCreated, w.Code)
	s.Contains(string(resp.Data), `"img_path":"static/images/camera.png"`)

	saved, err := os.ReadFile(filepath.Join(s.uploadDir, "camera.png"))
	s.Require().NoError(err)
	s.Equal("png-bytes", string(saved))

	_, resp = s.do(http.MethodGet, "/api/items/camera", nil, nil)
	s.Contains(string(resp.Data), `"trade_method":"delivery"`)
}

func (s *MarketAPITestSuite) TestWishes() {
	seller := s.signupAndLogin("seller")
	fan := s.signupAndLogin("fan")
	s.createItem(seller, "radio")

	w, resp := s.do(http.MethodPost, "/api/items/radio/like", nil, fan)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"liked":true,"like_count":1}`, string(resp.Data))

	_, resp = s.do(http.MethodGet, "/api/items/radio/like", nil, fan)
	s.JSONEq(`{"liked":true,"like_count":1}`, string(resp.Data))

	_, resp = s.do(http.MethodGet, "/api/my/likes", nil, fan)
	s.Contains(string(resp.Data), `"key":"radio"`)

	w, resp = s.do(http.MethodPut, "/api/items/radio/like", gin.H{"liked": false}, fan)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"liked":false,"like_count":0}`, string(resp.Data))

	w, _ = s.do(http.MethodPut, "/api/items/radio/like", gin.H{}, fan)
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/items/ghost/like", nil, fan)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *MarketAPITestSuite) TestReviews() {
	seller := s.signupAndLogin("seller")
	buyer := s.signupAndLogin("buyer")
	s.createItem(seller, "bike")

	review := gin.H{"title": "만족", "rate": "5", "content": "잘 쓰고 있어요"}

	w, _ := s.do(http.MethodPost, "/api/items/bike/reviews", review, buyer)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPost, "/api/items/bike/purchase", nil, buyer)
	s.Require().Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/api/items/bike/reviews", gin.H{"title": "x", "rate": "9", "content": "y"}, buyer)
	s.Equal(http.StatusBadRequest, w.Code)

	w, resp := s.do(http.MethodPost, "/api/items/bike/reviews", review, buyer)
	s.Equal(http.StatusCreated, w.Code)
	s.JSONEq(`{"key":"bike_buyer"}`, string(resp.Data))

	w, resp = s.do(http.MethodGet, "/api/reviews/bike_buyer", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(string(resp.Data), `"writer_id":"buyer"`)

	_, resp = s.do(http.MethodGet, "/api/reviews", nil, nil)
	s.Require().NotNil(resp.Meta)
	s.Equal(1, resp.Meta.Total)

	_, resp = s.do(http.MethodGet, "/api/items/bike/reviews", nil, nil)
	s.Contains(string(resp.Data), `"key":"bike_buyer"`)

	_, resp = s.do(http.MethodGet, "/api/my/reviews", nil, buyer)
	s.Contains(string(resp.Data), `"item_name":"bike"`)

	w, _ = s.do(http.MethodGet, "/api/reviews/none", nil, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *MarketAPITestSuite) TestHealth() {
	w, _ := s.do(http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"store":"ok"`)
}

func (s *MarketAPITestSuite) TestDisabledStore() {
	nop := zerolog.Nop()
	s.router = newRouter(s.T(), store.New(nil, &nop), s.uploadDir)

	w, _ := s.do(http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"store":"disabled"`)

	// fail-open duplicate check, then the write itself fails
	_, resp := s.do(http.MethodGet, "/api/check_userid?id=alice", nil, nil)
	s.JSONEq(`{"available":true}`, string(resp.Data))

	w, resp = s.do(http.MethodPost, "/api/signup", gin.H{"id": "alice", "pw": "secret1", "email": "a@ewha.ac.kr"}, nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal("SERVICE_UNAVAILABLE", resp.Error.Code)

	w, resp = s.do(http.MethodGet, "/api/items", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, string(resp.Data))
}

func (s *MarketAPITestSuite) TestCreateItemInvalidTitle() {
	cookie := s.signupAndLogin("alice")

	w, resp := s.do(http.MethodPost, "/api/items", gin.H{
		"title":  "책/노트",
		"price":  "3000",
		"region": "신촌",
		"status": "판매중",
		"desc":   "묶음",
	}, cookie)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("BAD_REQUEST", resp.Error.Code)
}

func (s *MarketAPITestSuite) TestListHugePageNumber() {
	cookie := s.signupAndLogin("alice")
	s.createItem(cookie, "lamp")

	for _, path := range []string{
		"/api/items?page=9223372036854775807",
		"/api/reviews?page=4611686018427387904&per_page=100",
	} {
		w, resp := s.do(http.MethodGet, path, nil, nil)
		s.Equal(http.StatusOK, w.Code, path)
		s.JSONEq(`[]`, string(resp.Data), path)
	}
}

func TestMarketAPITestSuite(t *testing.T) {
	suite.Run(t, new(MarketAPITestSuite))
}
