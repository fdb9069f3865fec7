package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// FakeAPISecret signs the tokens FakeAPI issues.
const FakeAPISecret = "fake-api-secret"

type fakeUser struct {
	ID        int64     `json:"id"`
	Fullname  string    `json:"fullname"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	password  string
}

type fakeTask struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	DueDate     string    `json:"due_date"`
	Priority    string    `json:"priority"`
	Completed   bool      `json:"completed"`
	UserID      int64     `json:"user_id"`
	CategoryID  int64     `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type fakeCategory struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FakeAPI is an in-memory task service behind a real HTTP server. It
// follows the remote API's conventions: JWT bearer auth, {"error": ...}
// bodies, {"message", "task"} envelopes on create and message-only
// answers on update and delete.
type FakeAPI struct {
	Server *httptest.Server

	mu         sync.Mutex
	nextID     int64
	users      map[int64]*fakeUser
	tasks      map[int64]*fakeTask
	categories map[int64]*fakeCategory
	requests   []string
	loginBody  *rawResponse
	tokenTTL   time.Duration
}

type rawResponse struct {
	status int
	body   string
}

// NewFakeAPI starts a FakeAPI that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		users:      map[int64]*fakeUser{},
		tasks:      map[int64]*fakeTask{},
		categories: map[int64]*fakeCategory{},
		tokenTTL:   time.Hour,
	}

	r := gin.New()
	r.Use(f.record)
	r.POST("/register", f.register)
	r.POST("/login", f.login)

	authed := r.Group("/", f.auth)
	authed.GET("/user/:id", f.getUser)

	authed.GET("/tasks", f.listTasks)
	authed.GET("/tasks/overdue", f.listTasks)
	authed.GET("/tasks/due/today", f.listTasks)
	authed.GET("/tasks/status/:status", f.listTasks)
	authed.GET("/tasks/priority/:priority", f.listTasks)
	authed.POST("/tasks", f.createTask)
	authed.GET("/tasks/:id", f.getTask)
	authed.PUT("/tasks/:id", f.updateTask)
	authed.PATCH("/tasks/:id/complete", f.completeTask)
	authed.DELETE("/tasks/:id", f.deleteTask)

	authed.GET("/categories", f.listCategories)
	authed.POST("/categories", f.createCategory)
	authed.GET("/categories/:id", f.getCategory)
	authed.PUT("/categories/:id", f.updateCategory)
	authed.DELETE("/categories/:id", f.deleteCategory)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server's base URL.
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// AddUser registers an account and returns its ID.
func (f *FakeAPI) AddUser(fullname, email, password string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(fullname, email, password)
}

func (f *FakeAPI) addUserLocked(fullname, email, password string) int64 {
	f.nextID++
	now := time.Now().UTC()
	f.users[f.nextID] = &fakeUser{
		ID:        f.nextID,
		Fullname:  fullname,
		Email:     email,
		Role:      "user",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		password:  password,
	}
	return f.nextID
}

// AddCategory adds a category owned by userID and returns its ID.
func (f *FakeAPI) AddCategory(userID int64, name string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := time.Now().UTC()
	f.categories[f.nextID] = &fakeCategory{ID: f.nextID, Name: name, UserID: userID, CreatedAt: now, UpdatedAt: now}
	return f.nextID
}

// Token issues a bearer token for userID.
func (f *FakeAPI) Token(userID int64) string {
	return f.tokenFor(userID, time.Now().Add(f.tokenTTL))
}

// ExpiredToken issues a token for userID that expired a minute ago.
func (f *FakeAPI) ExpiredToken(userID int64) string {
	return f.tokenFor(userID, time.Now().Add(-time.Minute))
}

func (f *FakeAPI) tokenFor(userID int64, exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     exp.Unix(),
		"iat":     time.Now().Unix(),
	})
	s, err := tok.SignedString([]byte(FakeAPISecret))
	if err != nil {
		panic(err)
	}
	return s
}

// SetLoginResponse makes every login answer with a fixed status and body.
func (f *FakeAPI) SetLoginResponse(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginBody = &rawResponse{status: status, body: body}
}

// Requests returns "METHOD /path" for every request received so far.
func (f *FakeAPI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *FakeAPI) record(c *gin.Context) {
	f.mu.Lock()
	f.requests = append(f.requests, c.Request.Method+" "+c.Request.URL.Path)
	f.mu.Unlock()
	c.Next()
}

func (f *FakeAPI) auth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
		return
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(FakeAPISecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	claims, _ := tok.Claims.(jwt.MapClaims)
	uid, _ := claims["user_id"].(float64)
	c.Set("user_id", int64(uid))
	c.Next()
}

func userID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

func (f *FakeAPI) register(c *gin.Context) {
	var in struct {
		Fullname string `json:"fullname"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.Email == "" || in.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == in.Email {
			c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
			return
		}
	}
	id := f.addUserLocked(in.Fullname, in.Email, in.Password)
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": f.users[id]})
}

func (f *FakeAPI) login(c *gin.Context) {
	f.mu.Lock()
	override := f.loginBody
	f.mu.Unlock()
	if override != nil {
		c.Data(override.status, "application/json", []byte(override.body))
		return
	}

	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
		return
	}

	f.mu.Lock()
	var found *fakeUser
	for _, u := range f.users {
		if u.Email == in.Email && u.password == in.Password {
			found = u
		}
	}
	f.mu.Unlock()

	if found == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": f.Token(found.ID), "user": found})
}

func (f *FakeAPI) getUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, found := f.users[id]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (f *FakeAPI) listTasks(c *gin.Context) {
	uid := userID(c)
	path := c.FullPath()
	today := time.Now().UTC().Format(time.DateOnly)

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []*fakeTask{}
	for _, t := range f.tasks {
		if t.UserID != uid {
			continue
		}
		due := t.DueDate
		if len(due) >= 10 {
			due = due[:10]
		}
		switch {
		case strings.HasSuffix(path, "/overdue") && !(due < today && !t.Completed):
			continue
		case strings.HasSuffix(path, "/due/today") && due != today:
			continue
		case c.Param("status") != "" && t.Status != c.Param("status"):
			continue
		case c.Param("priority") != "" && t.Priority != c.Param("priority"):
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, out)
}

func (f *FakeAPI) createTask(c *gin.Context) {
	var in struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Status      string  `json:"status"`
		DueDate     string  `json:"due_date"`
		Priority    string  `json:"priority"`
		CategoryID  int64   `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
		return
	}
	if in.Title == "" || in.DueDate == "" || in.CategoryID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := time.Now().UTC()
	t := &fakeTask{
		ID:          f.nextID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		UserID:      userID(c),
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasks[t.ID] = t
	c.JSON(http.StatusCreated, gin.H{"message": "Task created successfully", "task": t})
}

// ownedTask looks up a task owned by the caller. Callers hold f.mu.
func (f *FakeAPI) ownedTask(c *gin.Context) (*fakeTask, bool) {
	id, ok := paramID(c)
	if !ok {
		return nil, false
	}
	t, found := f.tasks[id]
	if !found || t.UserID != userID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return nil, false
	}
	return t, true
}

func (f *FakeAPI) getTask(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.ownedTask(c); ok {
		c.JSON(http.StatusOK, t)
	}
}

func (f *FakeAPI) updateTask(c *gin.Context) {
	var in map[string]any
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.ownedTask(c)
	if !ok {
		return
	}
	for k, v := range in {
		switch k {
		case "title":
			t.Title = fmt.Sprint(v)
		case "description":
			d := fmt.Sprint(v)
			t.Description = &d
		case "status":
			t.Status = fmt.Sprint(v)
		case "due_date":
			t.DueDate = fmt.Sprint(v)
		case "priority":
			t.Priority = fmt.Sprint(v)
		case "category_id":
			if n, ok := v.(float64); ok {
				t.CategoryID = int64(n)
			}
		case "completed":
			if b, ok := v.(bool); ok {
				t.Completed = b
			}
		}
	}
	t.UpdatedAt = time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully"})
}

func (f *FakeAPI) completeTask(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.ownedTask(c)
	if !ok {
		return
	}
	t.Completed = !t.Completed
	if t.Completed {
		t.Status = "completed"
	} else {
		t.Status = "pending"
	}
	t.UpdatedAt = time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{"message": "Task status updated", "task": t})
}

func (f *FakeAPI) deleteTask(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.ownedTask(c)
	if !ok {
		return
	}
	delete(f.tasks, t.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (f *FakeAPI) listCategories(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*fakeCategory{}
	for _, cat := range f.categories {
		if cat.UserID == userID(c) {
			out = append(out, cat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, out)
}

func (f *FakeAPI) createCategory(c *gin.Context) {
	var in struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := time.Now().UTC()
	cat := &fakeCategory{
		ID:          f.nextID,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		UserID:      userID(c),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.categories[cat.ID] = cat
	c.JSON(http.StatusCreated, gin.H{"message": "Category created successfully", "category": cat})
}

// ownedCategory looks up a category owned by the caller. Callers hold f.mu.
func (f *FakeAPI) ownedCategory(c *gin.Context) (*fakeCategory, bool) {
	id, ok := paramID(c)
	if !ok {
		return nil, false
	}
	cat, found := f.categories[id]
	if !found || cat.UserID != userID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return nil, false
	}
	return cat, true
}

func (f *FakeAPI) getCategory(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cat, ok := f.ownedCategory(c); ok {
		c.JSON(http.StatusOK, cat)
	}
}

func (f *FakeAPI) updateCategory(c *gin.Context) {
	var in struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Color       *string `json:"color"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cat, ok := f.ownedCategory(c)
	if !ok {
		return
	}
	if in.Name != nil {
		cat.Name = *in.Name
	}
	if in.Description != nil {
		cat.Description = *in.Description
	}
	if in.Color != nil {
		cat.Color = *in.Color
	}
	cat.UpdatedAt = time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{"message": "Category updated successfully", "category": cat})
}

func (f *FakeAPI) deleteCategory(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cat, ok := f.ownedCategory(c)
	if !ok {
		return
	}
	delete(f.categories, cat.ID)
	c.Status(http.StatusNoContent)
}
