// Package docstoretest runs an in-memory stand-in for the Firestore REST API.
package docstoretest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/option"

	"ukm-ponja/internal/docstore"
)

const Project = "test-project"

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	docs     map[string]map[string]json.RawMessage
	seq      int
	failNext int
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{docs: map[string]map[string]json.RawMessage{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Client returns a docstore client pointed at the fake.
func (s *Server) Client(t *testing.T) *docstore.Client {
	t.Helper()
	c, err := docstore.New(context.Background(), Project, "", option.WithEndpoint(s.URL+"/"), option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("docstore client: %v", err)
	}
	return c
}

// FailNext makes the next request answer with the given status.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = status
}

// Fields returns the raw stored fields of a document path such as "settings/chart".
func (s *Server) Fields(docPath string) map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[root()+"/"+docPath]
}

func root() string {
	return "projects/" + Project + "/databases/(default)/documents"
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext != 0 {
		code := s.failNext
		s.failNext = 0
		writeError(w, code)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/v1/")
	rel := strings.TrimPrefix(strings.TrimPrefix(name, root()), "/")
	isCollection := len(strings.Split(rel, "/"))%2 == 1

	switch r.Method {
	case http.MethodGet:
		if isCollection {
			s.list(w, r, name)
			return
		}
		fields, ok := s.docs[name]
		if !ok {
			writeError(w, http.StatusNotFound)
			return
		}
		writeDoc(w, name, fields)
	case http.MethodPatch:
		var body struct {
			Fields map[string]json.RawMessage `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest)
			return
		}
		mask := r.URL.Query()["updateMask.fieldPaths"]
		cur := s.docs[name]
		if cur == nil || len(mask) == 0 {
			cur = map[string]json.RawMessage{}
		}
		if len(mask) == 0 {
			for k, v := range body.Fields {
				cur[k] = v
			}
		}
		for _, f := range mask {
			if v, ok := body.Fields[f]; ok {
				cur[f] = v
			} else {
				delete(cur, f)
			}
		}
		s.docs[name] = cur
		writeDoc(w, name, cur)
	case http.MethodPost:
		var body struct {
			Fields map[string]json.RawMessage `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest)
			return
		}
		id := r.URL.Query().Get("documentId")
		if id == "" {
			s.seq++
			id = fmt.Sprintf("auto%04d", s.seq)
		}
		docName := name + "/" + id
		s.docs[docName] = body.Fields
		writeDoc(w, docName, body.Fields)
	default:
		writeError(w, http.StatusMethodNotAllowed)
	}
}

// list honours orderBy ("field" or "field desc"), pageSize and pageToken.
// Without orderBy documents come in name order.
func (s *Server) list(w http.ResponseWriter, r *http.Request, collection string) {
	var names []string
	for n := range s.docs {
		if strings.HasPrefix(n, collection+"/") && !strings.Contains(strings.TrimPrefix(n, collection+"/"), "/") {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	q := r.URL.Query()
	if orderBy := strings.Fields(q.Get("orderBy")); len(orderBy) > 0 {
		desc := len(orderBy) > 1 && strings.EqualFold(orderBy[1], "desc")
		sort.SliceStable(names, func(i, j int) bool {
			a, b := sortKey(s.docs[names[i]][orderBy[0]]), sortKey(s.docs[names[j]][orderBy[0]])
			if desc {
				return a > b
			}
			return a < b
		})
	}

	start, _ := strconv.Atoi(q.Get("pageToken"))
	if start > len(names) {
		start = len(names)
	}
	end := len(names)
	if size, _ := strconv.Atoi(q.Get("pageSize")); size > 0 && start+size < end {
		end = start + size
	}
	docs := make([]map[string]any, 0, end-start)
	for _, n := range names[start:end] {
		docs = append(docs, map[string]any{"name": n, "fields": s.docs[n]})
	}
	resp := map[string]any{"documents": docs}
	if end < len(names) {
		resp["nextPageToken"] = strconv.Itoa(end)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// sortKey orders timestamps chronologically and strings lexically.
func sortKey(raw json.RawMessage) string {
	var v docstore.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	if v.TimestampValue != "" {
		if t, err := time.Parse(time.RFC3339Nano, v.TimestampValue); err == nil {
			return t.UTC().Format("20060102150405.000000000")
		}
	}
	return v.String()
}

func writeDoc(w http.ResponseWriter, name string, fields map[string]json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"name": name, "fields": fields})
}

func writeError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": http.StatusText(code)},
	})
}
