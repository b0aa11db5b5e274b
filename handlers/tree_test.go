package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ammiranda/forest_service/cache"
	"github.com/ammiranda/forest_service/middleware"
	"github.com/ammiranda/forest_service/models"
	"github.com/ammiranda/forest_service/repository"
	"github.com/ammiranda/forest_service/tree"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	repo   *repository.MockRepository
	cache  *cache.MockCache
}

func setupTestRouter(t *testing.T) *testServer {
	t.Helper()
	repo := repository.NewMockRepository()
	require.NoError(t, repo.Initialize(context.Background()))
	mockCache := cache.NewMockCache()

	h := NewTreeHandler(tree.NewEngine(repo, nil), mockCache, nil)
	return &testServer{
		router: NewRouter(h, RouterOptions{Metrics: middleware.NewMetrics()}),
		repo:   repo,
		cache:  mockCache,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// seedAnimals creates root(1) -> bear(2) -> cat(3) and root(1) -> frog(4)
func (s *testServer) seedAnimals(t *testing.T) {
	t.Helper()
	for _, body := range []string{
		`{"label":"root"}`,
		`{"label":"bear","parentId":1}`,
		`{"label":"cat","parentId":2}`,
		`{"label":"frog","parentId":1}`,
	} {
		w := s.do(t, http.MethodPost, "/api/tree", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
}

const animalsJSON = `[{"id":1,"label":"root","children":[{"id":2,"label":"bear","children":[{"id":3,"label":"cat","children":[]}]},{"id":4,"label":"frog","children":[]}]}]`

func TestGetForestEmpty(t *testing.T) {
	s := setupTestRouter(t)
	w := s.do(t, http.MethodGet, "/api/tree", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateAndGetForest(t *testing.T) {
	s := setupTestRouter(t)
	s.seedAnimals(t)

	w := s.do(t, http.MethodGet, "/api/tree", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, animalsJSON, w.Body.String())
}

func TestCreateNodeResponse(t *testing.T) {
	s := setupTestRouter(t)
	w := s.do(t, http.MethodPost, "/api/tree", `{"label":"root"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var node models.NodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &node))
	assert.Equal(t, int64(1), node.ID)
	assert.Equal(t, "root", node.Label)
	assert.Nil(t, node.ParentID)
	assert.False(t, node.CreatedAt.IsZero())
}

func TestCreateNodeErrors(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		status int
	}{
		{name: "Missing parent", body: `{"label":"x","parentId":999}`, status: http.StatusNotFound},
		{name: "Empty label", body: `{"label":""}`, status: http.StatusBadRequest},
		{name: "Blank label", body: `{"label":"   "}`, status: http.StatusBadRequest},
		{name: "Long label", body: fmt.Sprintf(`{"label":%q}`, strings.Repeat("a", 256)), status: http.StatusBadRequest},
		{name: "Zero parent", body: `{"label":"x","parentId":0}`, status: http.StatusBadRequest},
		{name: "Malformed body", body: `{"label":`, status: http.StatusBadRequest},
		{name: "Wrong type", body: `{"label":"x","parentId":"one"}`, status: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := setupTestRouter(t)
			w := s.do(t, http.MethodPost, "/api/tree", tc.body)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
			assert.Equal(t, 0, s.repo.Len())
		})
	}
}

func TestBatchCreate(t *testing.T) {
	s := setupTestRouter(t)
	w := s.do(t, http.MethodPost, "/api/tree/batch",
		`{"nodes":[{"label":"root"},{"label":"child","parentId":1}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var nodes []models.NodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nodes))
	require.Len(t, nodes, 2)
	assert.Equal(t, int64(1), *nodes[1].ParentID)

	w = s.do(t, http.MethodPost, "/api/tree/batch",
		`{"nodes":[{"label":"ok"},{"label":"bad","parentId":77}]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 2, s.repo.Len(), "failed batch is rolled back")

	w = s.do(t, http.MethodPost, "/api/tree/batch", `{"nodes":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSubtreeAndPath(t *testing.T) {
	s := setupTestRouter(t)
	s.seedAnimals(t)

	w := s.do(t, http.MethodGet, "/api/tree/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"label":"bear","children":[{"id":3,"label":"cat","children":[]}]}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/tree/3/path", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"nodeId":3,"path":[{"id":1,"label":"root"},{"id":2,"label":"bear"},{"id":3,"label":"cat"}],"depth":3}`,
		w.Body.String())

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/tree/99", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/tree/99/path", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/tree/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/tree/-1/path", "").Code)
}

func TestGetDescendants(t *testing.T) {
	s := setupTestRouter(t)
	s.seedAnimals(t)

	w := s.do(t, http.MethodGet, "/api/tree/1/descendants", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DescendantsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.NodeID)
	assert.Equal(t, 3, resp.SubtreeSize)
	ids := make([]int64, len(resp.Descendants))
	for i, d := range resp.Descendants {
		ids[i] = d.ID
	}
	assert.Equal(t, []int64{2, 3, 4}, ids)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/tree/50/descendants", "").Code)
}

func TestMoveNode(t *testing.T) {
	s := setupTestRouter(t)
	s.seedAnimals(t)

	w := s.do(t, http.MethodPost, "/api/tree/2/move", `{"newParentId":4}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/tree", "")
	assert.JSONEq(t,
		`[{"id":1,"label":"root","children":[{"id":4,"label":"frog","children":[{"id":2,"label":"bear","children":[{"id":3,"label":"cat","children":[]}]}]}]}]`,
		w.Body.String())
}

func TestMoveNodeErrors(t *testing.T) {
	testCases := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{name: "Self move", path: "/api/tree/2/move", body: `{"newParentId":2}`, status: http.StatusBadRequest},
		{name: "Under descendant", path: "/api/tree/1/move", body: `{"newParentId":3}`, status: http.StatusBadRequest},
		{name: "No-op", path: "/api/tree/3/move", body: `{"newParentId":2}`, status: http.StatusConflict},
		{name: "Root already root", path: "/api/tree/1/move", body: `{"newParentId":null}`, status: http.StatusConflict},
		{name: "Missing source", path: "/api/tree/55/move", body: `{"newParentId":1}`, status: http.StatusNotFound},
		{name: "Missing parent", path: "/api/tree/3/move", body: `{"newParentId":55}`, status: http.StatusNotFound},
		{name: "Invalid parent", path: "/api/tree/3/move", body: `{"newParentId":-2}`, status: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := setupTestRouter(t)
			s.seedAnimals(t)
			w := s.do(t, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestMoveToRoot(t *testing.T) {
	s := setupTestRouter(t)
	s.seedAnimals(t)

	w := s.do(t, http.MethodPost, "/api/tree/2/move", `{}`)
	require.Equal(t, http.StatusOK, w.Code)

	var node models.NodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &node))
	assert.Nil(t, node.ParentID)
}

func TestRelabelAndDelete(t *testing.T) {
	s := setupTestRouter(t)
	s.seedAnimals(t)

	w := s.do(t, http.MethodPut, "/api/tree/4", `{"label":"toad"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"label":"toad"`)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/api/tree/40", `{"label":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/tree/4", `{"label":""}`).Code)

	w = s.do(t, http.MethodDelete, "/api/tree/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":2}`, w.Body.String())
	assert.Equal(t, 2, s.repo.Len())

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/tree/2", "").Code)
}

func TestNodesAtDepthStatsAndValidate(t *testing.T) {
	s := setupTestRouter(t)
	s.seedAnimals(t)

	w := s.do(t, http.MethodGet, "/api/nodes?depth=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var nodes []models.NodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nodes))
	require.Len(t, nodes, 2)
	assert.Equal(t, "bear", nodes[0].Label)
	assert.Equal(t, "frog", nodes[1].Label)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/nodes?depth=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/nodes", "").Code)

	w = s.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalNodes":4,"totalTrees":1,"leafNodes":2,"maxDepth":2}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/validate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isValid":true,"issues":[],"totalNodes":4,"rootNodes":1}`, w.Body.String())
}

func TestCachingInTreeAPI(t *testing.T) {
	s := setupTestRouter(t)
	s.seedAnimals(t)
	s.cache.Reset()

	// First request misses and fills the cache
	first := s.do(t, http.MethodGet, "/api/tree", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, s.cache.Calls().Set)

	// Second request is served from cache
	second := s.do(t, http.MethodGet, "/api/tree", "")
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, s.cache.Calls().Set)
	assert.Equal(t, 2, s.cache.Calls().Get)

	// Every write invalidates
	s.do(t, http.MethodPost, "/api/tree", `{"label":"new root"}`)
	s.do(t, http.MethodPut, "/api/tree/5", `{"label":"renamed"}`)
	s.do(t, http.MethodPost, "/api/tree/5/move", `{"newParentId":1}`)
	s.do(t, http.MethodDelete, "/api/tree/5", "")
	s.do(t, http.MethodPost, "/api/tree/batch", `{"nodes":[{"label":"b"}]}`)
	assert.Equal(t, 5, s.cache.Calls().Invalidate)

	// Failed writes leave the cache alone
	s.do(t, http.MethodPost, "/api/tree", `{"label":"x","parentId":999}`)
	assert.Equal(t, 5, s.cache.Calls().Invalidate)

	third := s.do(t, http.MethodGet, "/api/tree", "")
	assert.Contains(t, third.Body.String(), `"label":"b"`)
}

func TestHealthAndMetrics(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/health"`)
}

func TestErrorStatus(t *testing.T) {
	testCases := []struct {
		err    error
		status int
	}{
		{tree.ErrInvalidLabel, http.StatusBadRequest},
		{tree.ErrInvalidParent, http.StatusBadRequest},
		{tree.ErrInvalidDepth, http.StatusBadRequest},
		{tree.ErrSelfMove, http.StatusBadRequest},
		{tree.ErrDescendantMove, http.StatusBadRequest},
		{ErrInvalidID, http.StatusBadRequest},
		{tree.ErrNodeNotFound, http.StatusNotFound},
		{tree.ErrParentNotFound, http.StatusNotFound},
		{tree.ErrSourceNotFound, http.StatusNotFound},
		{fmt.Errorf("node 3: %w", tree.ErrParentNotFound), http.StatusNotFound},
		{tree.ErrNoOpMove, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.status, ErrorStatus(tc.err), tc.err.Error())
	}
	assert.Equal(t, "internal server error", ErrorMessage(errors.New("disk on fire")))
	assert.Equal(t, tree.ErrNoOpMove.Error(), ErrorMessage(tree.ErrNoOpMove))
}
