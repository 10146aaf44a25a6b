package remote

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-process stand-in for the hosted table API.
type fakeAPI struct {
	mu     sync.Mutex
	tables map[string]map[int64]map[string]any
	nextID int64

	// failNext makes the next n requests answer 503.
	failNext int
	requests int
	headers  http.Header
	rejectOn string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{tables: map[string]map[int64]map[string]any{}, nextID: 1}
}

func (f *fakeAPI) seed(table string, rec map[string]any) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	rec["Id"] = id
	if f.tables[table] == nil {
		f.tables[table] = map[int64]map[string]any{}
	}
	f.tables[table][id] = rec
	return id
}

func (f *fakeAPI) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

func (f *fakeAPI) row(table string, id int64) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tables[table][id]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests++
	f.headers = r.Header.Clone()
	if f.failNext > 0 {
		f.failNext--
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "message": "busy"})
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "tables" {
		http.NotFound(w, r)
		return
	}
	table := parts[1]
	rows := f.tables[table]
	if rows == nil {
		rows = map[int64]map[string]any{}
		f.tables[table] = rows
	}
	body, _ := io.ReadAll(r.Body)

	switch {
	case parts[2] == "fetch" && r.Method == http.MethodPost:
		var q Query
		_ = json.Unmarshal(body, &q)
		data := make([]map[string]any, 0)
		ids := make([]int64, 0, len(rows))
		for id := range rows {
			ids = append(ids, id)
		}
		sortIDs(ids)
	next:
		for _, id := range ids {
			rec := rows[id]
			for _, c := range q.Where {
				if len(c.Values) == 0 || toInt(rec[c.FieldName]) != toInt(c.Values[0]) {
					continue next
				}
			}
			data = append(data, rec)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})

	case parts[2] == "records" && len(parts) == 4 && r.Method == http.MethodGet:
		id, _ := strconv.ParseInt(parts[3], 10, 64)
		rec, ok := rows[id]
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Record does not exist"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": rec})

	case parts[2] == "records" && (r.Method == http.MethodPost || r.Method == http.MethodPatch):
		var in struct {
			Records []map[string]any `json:"records"`
		}
		_ = json.Unmarshal(body, &in)
		results := make([]map[string]any, 0, len(in.Records))
		for _, rec := range in.Records {
			if f.rejectOn != "" && strings.Contains(string(body), f.rejectOn) {
				results = append(results, map[string]any{"success": false, "message": "validation failed"})
				continue
			}
			var id int64
			if r.Method == http.MethodPost {
				id = f.nextID
				f.nextID++
				rec["Id"] = id
				rows[id] = rec
			} else {
				id = toInt(rec["Id"])
				existing, ok := rows[id]
				if !ok {
					results = append(results, map[string]any{"success": false, "message": "Record does not exist"})
					continue
				}
				for k, v := range rec {
					existing[k] = v
				}
				rec = existing
			}
			results = append(results, map[string]any{"success": true, "data": rec})
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": results})

	case parts[2] == "records" && r.Method == http.MethodDelete:
		var in struct {
			RecordIds []int64 `json:"RecordIds"`
		}
		_ = json.Unmarshal(body, &in)
		results := make([]map[string]any, 0, len(in.RecordIds))
		for _, id := range in.RecordIds {
			if _, ok := rows[id]; !ok {
				results = append(results, map[string]any{"success": false, "message": "Record does not exist"})
				continue
			}
			delete(rows, id)
			results = append(results, map[string]any{"success": true})
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": results})

	default:
		http.NotFound(w, r)
	}
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	case map[string]any:
		return toInt(n["Id"])
	}
	return 0
}

func sortIDs(ids []int64) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		URL:          srv.URL,
		ProjectID:    "proj-1",
		PublicKey:    "pk-test",
		MaxTries:     3,
		RetryInitial: time.Millisecond,
		RetryMax:     5 * time.Millisecond,
	})
	require.NoError(t, err)
	return c
}
