package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/mhalvorsen/enrichmap/pkg/feature"
	"github.com/mhalvorsen/enrichmap/pkg/network"
	"github.com/mhalvorsen/enrichmap/pkg/pipeline"
	"github.com/mhalvorsen/enrichmap/pkg/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	return NewServer(runner, store.NewMemoryStore(), logger)
}

// ringRunBody builds a POST /runs body over a small ring graph.
func ringRunBody(t *testing.T, n int) []byte {
	t.Helper()
	g := network.New(nil)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = "n" + strconv.Itoa(i)
		if err := g.AddNode(network.Node{ID: ids[i]}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	for i := 0; i < n; i++ {
		if err := g.AddEdge(network.Edge{From: ids[i], To: ids[(i+1)%n]}); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	graphJSON, err := network.MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}

	values := make([][]float64, n)
	for i := 0; i < n; i++ {
		v := 0.0
		if i < n/2 {
			v = 10.0
		}
		values[i] = []float64{v}
	}
	m, err := feature.NewMatrix(ids, []string{"hot"}, values)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	matrixJSON, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal matrix: %v", err)
	}

	body, err := json.Marshal(map[string]any{
		"graph":  json.RawMessage(graphJSON),
		"matrix": json.RawMessage(matrixJSON),
		"options": pipeline.Options{
			Permutations:   100,
			Seed:           7,
			Workers:        1,
			SkipProjection: true,
		},
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestCreateAndGetRun(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/runs", "application/json", bytes.NewReader(ringRunBody(t, 8)))
	if err != nil {
		t.Fatalf("POST /runs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 201; body: %s", resp.StatusCode, raw)
	}
	var created runResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Run.ID == "" {
		t.Fatal("run ID should be assigned")
	}
	if created.Run.NodeCount != 8 || created.Run.FeatureCount != 1 {
		t.Errorf("summary = %+v, want 8 nodes and 1 feature", created.Run)
	}

	getResp, err := http.Get(srv.URL + "/runs/" + created.Run.ID)
	if err != nil {
		t.Fatalf("GET /runs/{id}: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", getResp.StatusCode)
	}
	var run store.Run
	if err := json.NewDecoder(getResp.Body).Decode(&run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if run.Result == nil || !run.Result.Corrected {
		t.Error("stored run should carry a corrected result")
	}
	if run.Assignment == nil {
		t.Error("stored run should carry a stratum assignment")
	}
}

func TestListRuns(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs")
	if err != nil {
		t.Fatalf("GET /runs: %v", err)
	}
	defer resp.Body.Close()
	var runs []store.Summary
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("fresh server has %d runs, want 0", len(runs))
	}

	post, err := http.Post(srv.URL+"/runs", "application/json", bytes.NewReader(ringRunBody(t, 6)))
	if err != nil {
		t.Fatalf("POST /runs: %v", err)
	}
	post.Body.Close()

	resp2, err := http.Get(srv.URL + "/runs")
	if err != nil {
		t.Fatalf("GET /runs: %v", err)
	}
	defer resp2.Body.Close()
	if err := json.NewDecoder(resp2.Body).Decode(&runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs, want 1", len(runs))
	}
}

func TestDeleteRun(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/runs", "application/json", bytes.NewReader(ringRunBody(t, 6)))
	if err != nil {
		t.Fatalf("POST /runs: %v", err)
	}
	var created runResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/runs/"+created.Run.ID, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", delResp.StatusCode)
	}

	getResp, err := http.Get(srv.URL + "/runs/" + created.Run.ID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", getResp.StatusCode)
	}
}

func TestCreateRunBadRequests(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: "{"},
		{name: "missing graph", body: `{"matrix": {"sample_ids": [], "names": [], "values": []}}`},
		{name: "missing matrix", body: `{"graph": {"nodes": [], "edges": []}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/runs", "application/json", bytes.NewReader([]byte(tt.body)))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			var body errorBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error.Code == "" {
				t.Error("error body should carry a code")
			}
		})
	}
}

func TestCreateRunInvalidGraph(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	tests := []struct {
		name string
		body string
	}{
		{
			name: "dangling edge",
			body: `{"graph": {"nodes": [{"id": "a"}], "edges": [{"source": "a", "target": "ghost"}]},
				"matrix": {"sample_ids": ["a"], "names": ["hot"], "values": [[1]]}}`,
		},
		{
			name: "duplicate node",
			body: `{"graph": {"nodes": [{"id": "a"}, {"id": "a"}], "edges": []},
				"matrix": {"sample_ids": ["a"], "names": ["hot"], "values": [[1]]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/runs", "application/json", bytes.NewReader([]byte(tt.body)))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			var body errorBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error.Code != "INVALID_GRAPH" {
				t.Errorf("error code = %q, want INVALID_GRAPH", body.Error.Code)
			}
		})
	}
}

func TestGetUnknownRun(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
