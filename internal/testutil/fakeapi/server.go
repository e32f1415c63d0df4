// Package fakeapi is an in-memory rendition of the exhibition backend for
// tests. It speaks the same conventions as the real API: TODOS_PANEL lists,
// POST create/update keyed on _id, DELETE with a flagged POST fallback,
// multipart uploads and the users/ code login.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Collection names as they appear in the default endpoint paths.
const (
	Exhibitors      = "expositores"
	ExhibitorUsers  = "expositores_usuarios"
	Agenda          = "eventos"
	Banners         = "banners"
	VisitorRequests = "visitantes_expositores"
)

// Record is one stored row, exactly as it would be serialized.
type Record map[string]any

// Request is a recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	ContentType   string
	Body          map[string]any
	Files         map[string]string
}

// Account is a staff account that can log in.
type Account struct {
	ID    int64
	Email string
	Name  string
	Role  string
}

type Server struct {
	*httptest.Server

	mu            sync.Mutex
	collections   map[string][]Record
	nextID        int64
	requests      []Request
	accounts      map[string]Account
	codes         map[string]string
	secret        []byte
	tokenTTL      time.Duration
	envelope      bool
	rejectDeletes bool
	failures      map[string]int
}

// New starts a server. Close it with t.Cleanup(srv.Close).
func New() *Server {
	s := &Server{
		collections: make(map[string][]Record),
		nextID:      1000,
		accounts:    make(map[string]Account),
		codes:       make(map[string]string),
		secret:      []byte("fakeapi-secret"),
		tokenTTL:    time.Hour,
		failures:    make(map[string]int),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(s.record)

	r.GET("/:collection/TODOS_PANEL/", s.list)
	r.GET("/:collection/EXPOSITORES_LIST/", s.exhibitorOptions)
	r.POST("/:collection/", s.mutate)
	r.POST("/:collection/APROBAR", s.approve)
	r.DELETE("/:collection/*rest", s.remove)

	return r
}

// Seed appends rows to a collection. Rows without _id get one assigned.
func (s *Server) Seed(collection string, rows ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if _, ok := row["_id"]; !ok {
			s.nextID++
			row["_id"] = s.nextID
		}
		s.collections[collection] = append(s.collections[collection], row)
	}
}

// Rows returns a copy of the collection.
func (s *Server) Rows(collection string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.collections[collection]))
	copy(out, s.collections[collection])
	return out
}

func (s *Server) AddAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.ToLower(a.Email)] = a
}

// Code returns the last code issued for email.
func (s *Server) Code(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[strings.ToLower(email)]
}

// SetTokenTTL controls the exp claim of issued tokens.
func (s *Server) SetTokenTTL(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = d
}

// SetEnvelope switches list responses between a bare array and
// {data, total}.
func (s *Server) SetEnvelope(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = on
}

// RejectDeletes makes every DELETE answer 405.
func (s *Server) RejectDeletes(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectDeletes = on
}

// FailNext makes the next n requests to a method+path answer 500.
func (s *Server) FailNext(method, path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = n
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Sign issues a token the way verify_code does.
func (s *Server) Sign(a Account, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"id":    a.ID,
		"sub":   strconv.FormatInt(a.ID, 10),
		"email": a.Email,
		"name":  a.Name,
		"role":  a.Role,
		"exp":   time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("fakeapi: sign token: %v", err))
	}
	return token
}

func (s *Server) record(c *gin.Context) {
	req := Request{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Query:         c.Request.URL.RawQuery,
		Authorization: c.GetHeader("Authorization"),
		RequestID:     c.GetHeader("X-Request-ID"),
		ContentType:   c.ContentType(),
	}

	switch req.ContentType {
	case "application/json":
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err == nil {
			req.Body = body
		}
	case "multipart/form-data":
		if form, err := c.MultipartForm(); err == nil {
			req.Body = make(map[string]any)
			for k, v := range form.Value {
				if len(v) > 0 {
					req.Body[k] = v[0]
				}
			}
			req.Files = make(map[string]string)
			for k, v := range form.File {
				if len(v) > 0 {
					req.Files[k] = v[0].Filename
				}
			}
		}
	}
	c.Set("body", req.Body)
	c.Set("files", req.Files)

	s.mu.Lock()
	s.requests = append(s.requests, req)
	key := req.Method + " " + req.Path
	fail := s.failures[key] > 0
	if fail {
		s.failures[key]--
	}
	s.mu.Unlock()

	if fail {
		c.String(http.StatusInternalServerError, "forced failure")
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) body(c *gin.Context) map[string]any {
	body, _ := c.Get("body")
	m, _ := body.(map[string]any)
	if m == nil {
		m = make(map[string]any)
	}
	return m
}

func (s *Server) list(c *gin.Context) {
	collection := c.Param("collection")
	search := strings.ToLower(c.Query("search"))

	s.mu.Lock()
	rows := make([]Record, 0, len(s.collections[collection]))
	for _, row := range s.collections[collection] {
		if search == "" || matches(row, search) {
			rows = append(rows, row)
		}
	}
	envelope := s.envelope
	s.mu.Unlock()

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	if envelope {
		c.JSON(http.StatusOK, gin.H{"data": rows, "total": len(rows)})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) exhibitorOptions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := make([]gin.H, 0, len(s.collections[Exhibitors]))
	for _, row := range s.collections[Exhibitors] {
		opts = append(opts, gin.H{"_id": row["_id"], "nombre": row["nombre"]})
	}
	c.JSON(http.StatusOK, gin.H{"data": opts})
}

func (s *Server) mutate(c *gin.Context) {
	collection := c.Param("collection")
	if collection == "users" {
		s.auth(c)
		return
	}

	body := s.body(c)
	if files, _ := c.Get("files"); files != nil {
		for field, name := range files.(map[string]string) {
			body[field] = name
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, hasID := toInt64(body["_id"])
	if flag, _ := toInt64(body["__delete"]); flag == 1 && hasID {
		if !s.removeLocked(collection, id) {
			c.String(http.StatusNotFound, "not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
		return
	}

	if hasID {
		for i, row := range s.collections[collection] {
			if rid, _ := toInt64(row["_id"]); rid == id {
				merged := Record{}
				for k, v := range row {
					merged[k] = v
				}
				for k, v := range body {
					merged[k] = v
				}
				merged["_id"] = id
				s.collections[collection][i] = merged
				c.JSON(http.StatusOK, gin.H{"status": "updated", "row": merged})
				return
			}
		}
		c.String(http.StatusNotFound, "not found")
		return
	}

	s.nextID++
	created := Record{"_id": s.nextID}
	for k, v := range body {
		created[k] = v
	}
	s.collections[collection] = append(s.collections[collection], created)
	c.JSON(http.StatusOK, gin.H{"status": "created", "row": created})
}

func (s *Server) remove(c *gin.Context) {
	collection := c.Param("collection")
	rest := strings.TrimPrefix(c.Param("rest"), "/")
	rest = strings.TrimPrefix(rest, "ID/")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejectDeletes {
		c.String(http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, err := strconv.ParseInt(strings.Trim(rest, "/"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid id")
		return
	}
	if !s.removeLocked(collection, id) {
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) approve(c *gin.Context) {
	body := s.body(c)
	id, _ := toInt64(body["_id"])
	admin, _ := toInt64(body["admin"])

	s.mu.Lock()
	defer s.mu.Unlock()

	var req Record
	for _, row := range s.collections[VisitorRequests] {
		if rid, _ := toInt64(row["_id"]); rid == id {
			req = row
		}
	}
	if req == nil {
		c.String(http.StatusNotFound, "request not found")
		return
	}

	status := "approved"
	for _, u := range s.collections[ExhibitorUsers] {
		if u["email"] == req["email"] && fmt.Sprint(u["id_expositor"]) == fmt.Sprint(req["id_expositor"]) {
			status = "already_exists"
		}
	}
	if status == "approved" {
		s.nextID++
		s.collections[ExhibitorUsers] = append(s.collections[ExhibitorUsers], Record{
			"_id":          s.nextID,
			"id_expositor": req["id_expositor"],
			"email":        req["email"],
			"nombre":       req["nombreyapellido"],
			"admin":        admin,
		})
	}
	s.removeLocked(VisitorRequests, id)
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (s *Server) auth(c *gin.Context) {
	body := s.body(c)
	email := strings.ToLower(strings.TrimSpace(fmt.Sprint(body["email"])))

	s.mu.Lock()
	account, known := s.accounts[email]
	s.mu.Unlock()

	switch body["action"] {
	case "request_code":
		if !known {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid user"})
			return
		}
		s.mu.Lock()
		code := strconv.Itoa(100000 + len(s.codes) + int(account.ID%1000))
		s.codes[email] = code
		s.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"status": "sent"})
	case "verify_code":
		s.mu.Lock()
		expected := s.codes[email]
		ttl := s.tokenTTL
		s.mu.Unlock()
		if !known || expected == "" || fmt.Sprint(body["code"]) != expected {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token": s.Sign(account, ttl),
			"user": gin.H{
				"id":    account.ID,
				"email": account.Email,
				"name":  account.Name,
				"role":  account.Role,
			},
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

func (s *Server) removeLocked(collection string, id int64) bool {
	rows := s.collections[collection]
	for i, row := range rows {
		if rid, _ := toInt64(row["_id"]); rid == id {
			s.collections[collection] = append(rows[:i:i], rows[i+1:]...)
			return true
		}
	}
	return false
}

func matches(row Record, search string) bool {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(strings.ToLower(fmt.Sprint(row[k])), search) {
			return true
		}
	}
	return false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
