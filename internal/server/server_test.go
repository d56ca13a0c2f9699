package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hep-ml/deeptau-serve/internal/deeptau"
	"github.com/hep-ml/deeptau-serve/internal/modelconfig"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg, err := modelconfig.Parse([]byte(`{
		"name": "deeptau_postproc",
		"backend": "deeptau",
		"input": [
			{"name": "input_tau", "data_type": "TYPE_FP32", "dims": [-1, 1]},
			{"name": "input_inner_forconv", "data_type": "TYPE_FP32", "dims": [-1, 1, 1, 2]},
			{"name": "input_outer_forconv", "data_type": "TYPE_FP32", "dims": [-1, 1, 1, 2]},
			{"name": "input_inner_pos", "data_type": "TYPE_INT32", "dims": [-1, 3]},
			{"name": "input_outer_pos", "data_type": "TYPE_INT32", "dims": [-1, 3]}
		],
		"output": [
			{"name": "output_tau", "data_type": "TYPE_FP32", "dims": [-1, 1]},
			{"name": "output_inner", "data_type": "TYPE_FP32", "dims": [-1, 11, 11, 2]},
			{"name": "output_outer", "data_type": "TYPE_FP32", "dims": [-1, 21, 21, 2]}
		]
	}`))
	require.NoError(t, err)

	b := deeptau.New()
	require.NoError(t, b.Initialize(cfg))
	return New(cfg, b, "")
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := testServer(t)
	assert.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/v2/health/live", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/v2/health/ready", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/v2/models/deeptau_postproc/ready", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, s, http.MethodGet, "/v2/models/other/ready", "").Code)
}

func TestMetadata(t *testing.T) {
	s := testServer(t)
	w := doRequest(t, s, http.MethodGet, "/v2/models/deeptau_postproc", "")
	require.Equal(t, http.StatusOK, w.Code)

	var meta metadataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "deeptau_postproc", meta.Name)
	assert.Equal(t, "deeptau", meta.Backend)
	require.Len(t, meta.Outputs, 3)
	assert.Equal(t, "FP32", meta.Outputs[0].Datatype)
	assert.Equal(t, []int64{-1, 11, 11, 2}, meta.Outputs[1].Shape)

	w = doRequest(t, s, http.MethodGet, "/v2/models/other", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

const inferBody = `{
	"id": "42",
	"inputs": [
		{"name": "input_tau", "shape": [1, 1], "datatype": "FP32", "data": [0.75]},
		{"name": "input_inner_forconv", "shape": [2, 1, 1, 2], "datatype": "FP32", "data": [1, 2, 9, 9]},
		{"name": "input_outer_forconv", "shape": [1, 1, 1, 2], "datatype": "FP32", "data": [3, 3]},
		{"name": "input_inner_pos", "shape": [1, 3], "datatype": "INT32", "data": [0, 3, 4]},
		{"name": "input_outer_pos", "shape": [0, 3], "datatype": "INT32", "data": []}
	]
}`

func TestInfer(t *testing.T) {
	s := testServer(t)
	w := doRequest(t, s, http.MethodPost, "/v2/models/deeptau_postproc/infer", inferBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp inferResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "deeptau_postproc", resp.ModelName)
	assert.Equal(t, "42", resp.ID)
	require.Len(t, resp.Outputs, 3)

	tau := resp.Outputs[0]
	assert.Equal(t, "output_tau", tau.Name)
	assert.Equal(t, []float64{0.75}, tau.Data)

	inner := resp.Outputs[1]
	assert.Equal(t, []int64{1, 11, 11, 2}, inner.Shape)
	require.Len(t, inner.Data, 11*11*2)
	at := (3*11 + 4) * 2
	assert.Equal(t, []float64{1, 2}, inner.Data[at:at+2])
	assert.Equal(t, []float64{9, 9}, inner.Data[:2])

	outer := resp.Outputs[2]
	assert.Equal(t, []int64{1, 21, 21, 2}, outer.Shape)
	assert.Equal(t, []float64{3, 3}, outer.Data[:2])
}

func TestInferBackendError(t *testing.T) {
	s := testServer(t)
	body := strings.Replace(inferBody, `"data": [0, 3, 4]`, `"data": [0, 11, 4]`, 1)
	w := doRequest(t, s, http.MethodPost, "/v2/models/deeptau_postproc/infer", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "output_inner")
}

func TestInferBadWire(t *testing.T) {
	s := testServer(t)

	w := doRequest(t, s, http.MethodPost, "/v2/models/deeptau_postproc/infer", `{"inputs": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// data length disagrees with shape
	body := strings.Replace(inferBody, `"shape": [1, 1], "datatype": "FP32", "data": [0.75]`,
		`"shape": [2, 1], "datatype": "FP32", "data": [0.75]`, 1)
	w = doRequest(t, s, http.MethodPost, "/v2/models/deeptau_postproc/infer", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = strings.Replace(inferBody, `"datatype": "INT32", "data": [0, 3, 4]`,
		`"datatype": "INT7", "data": [0, 3, 4]`, 1)
	w = doRequest(t, s, http.MethodPost, "/v2/models/deeptau_postproc/infer", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, s, http.MethodPost, "/v2/models/other/infer", inferBody)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
