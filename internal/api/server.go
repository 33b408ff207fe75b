package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/david/grant-tracker/internal/auth"
	"github.com/david/grant-tracker/internal/db"
	"github.com/david/grant-tracker/internal/engage"
	"github.com/david/grant-tracker/internal/listing"
	"github.com/david/grant-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	Store        *db.Store
	AuthService  *auth.Service
	Assembler    *engage.Assembler
	Ledger       *engage.Ledger
	Orchestrator *engage.Orchestrator
	Registry     *listing.Registry
	Echo         *echo.Echo
	DB           *pgxpool.Pool
}

func NewServer(pool *pgxpool.Pool) (*Server, error) {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	registry, err := listing.LoadRegistry("internal/listing/config/views.yaml")
	if err != nil {
		return nil, err
	}
	if err := engage.ValidateViewConfigs(registry); err != nil {
		return nil, err
	}

	store := db.NewStore(pool)
	assembler := engage.NewAssembler(store)
	ledger := engage.NewLedger(store, assembler)

	s := &Server{
		DB:           pool,
		Store:        store,
		AuthService:  auth.NewService(pool),
		Assembler:    assembler,
		Ledger:       ledger,
		Orchestrator: engage.NewOrchestrator(ledger),
		Registry:     registry,
		Echo:         e,
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")
	api.GET("/grants", s.handleListGrants)
	api.GET("/grants/:id", s.handleGetGrant)
	api.GET("/organizations", s.handleListOrganizations)
	api.GET("/stats", s.handleGetStats)

	// Auth Routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Protected Routes (Tracking)
	tracked := api.Group("/tracked")
	tracked.Use(auth.Middleware)
	tracked.GET("/:section", s.handleTrackedSection)
	tracked.POST("/:action/:id", s.handleTrackedAction)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// listQuery is the filter/sort/page surface shared by every list endpoint.
type listQuery struct {
	filter   listing.Filter
	sortBy   string
	page     int
	pageSize int
}

func (s *Server) parseListQuery(c echo.Context, view listing.ViewSpec) (listQuery, error) {
	q := listQuery{
		filter: listing.Filter{
			Search:     c.QueryParam("q"),
			Selections: map[string][]string{},
			Scalars:    map[string]string{},
			Status:     listing.Status(c.QueryParam("status")),
		},
		sortBy:   c.QueryParam("sort"),
		page:     1,
		pageSize: view.DefaultPageSize,
	}

	for _, field := range view.MultiSelect {
		if v := c.QueryParam(field); v != "" {
			q.filter.Selections[field] = splitCSV(v)
		}
	}
	for _, field := range view.Scalar {
		if v := c.QueryParam(field); v != "" {
			q.filter.Scalars[field] = v
		}
	}

	if !view.AllowsSort(q.sortBy) {
		return q, echo.NewHTTPError(http.StatusBadRequest, "unsupported sort criterion")
	}

	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		q.page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && ps > 0 && ps <= 100 {
		q.pageSize = ps
	}
	if q.pageSize < 1 {
		q.pageSize = 20
	}

	return q, nil
}

func (s *Server) handleListGrants(c echo.Context) error {
	view, err := s.Registry.View("grants")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	q, err := s.parseListQuery(c, view)
	if err != nil {
		return err
	}

	vms, err := s.Assembler.Catalog(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to assemble grants: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	page, err := listPage(vms, engage.GrantViewConfig("grants"), q)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, page)
}

func (s *Server) handleGetGrant(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid grant ID"})
	}

	vms, err := s.Assembler.Assemble(c.Request().Context(), []models.BaseRecord{models.CatalogRecord{GrantID: id}})
	if err != nil {
		c.Logger().Errorf("Failed to assemble grant %s: %v", id, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	if len(vms) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}

	return c.JSON(http.StatusOK, vms[0])
}

func (s *Server) handleListOrganizations(c echo.Context) error {
	viewName := c.QueryParam("view")
	if viewName == "" {
		viewName = "funders"
	}
	if viewName != "funders" && viewName != "nonprofits" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown organization view"})
	}

	view, err := s.Registry.View(viewName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	q, err := s.parseListQuery(c, view)
	if err != nil {
		return err
	}

	orgs, err := s.Store.AllOrganizations(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to list organizations: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	page, err := listPage(orgs, engage.OrganizationViewConfig(viewName), q)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, page)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Store.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

// Protected Handlers

func (s *Server) handleTrackedSection(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	section := c.Param("section")
	switch section {
	case engage.SectionSaved, engage.SectionApplications, engage.SectionReceived:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown section"})
	}

	// Scope is resolved exactly once per request and threaded through.
	scope, err := engage.ResolveScope(ctx, s.Store, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to resolve scope"})
	}

	vms, err := s.Ledger.TrackedSection(ctx, section, userID, scope)
	if err != nil {
		c.Logger().Errorf("Failed to load %s section: %v", section, err)
		return c.JSON(statusForKind(engage.ErrorKind(err)), map[string]string{"error": engage.ErrorKind(err)})
	}

	view, err := s.Registry.View("tracked")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	q, err := s.parseListQuery(c, view)
	if err != nil {
		return err
	}

	page, err := listPage(vms, engage.GrantViewConfig("tracked"), q)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, page)
}

func (s *Server) handleTrackedAction(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	action := engage.Action(c.Param("action"))
	if _, err := engage.SectionFor(action); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown action"})
	}

	grantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid grant ID"})
	}

	extra, err := bindExtra(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	scope, err := engage.ResolveScope(ctx, s.Store, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to resolve scope"})
	}

	result, err := s.Orchestrator.Perform(ctx, action, grantID, userID, scope, extra)
	if err != nil && !result.Success {
		c.Logger().Errorf("Tracking action %s failed: %v", action, err)
		return c.JSON(statusForKind(result.Error), result)
	}

	return c.JSON(http.StatusOK, result)
}

// bindExtra reads the optional action payload. A missing body is fine;
// it must not be gated on ContentLength, which is -1 for chunked requests.
func bindExtra(c echo.Context) (engage.ActionExtra, error) {
	var extra engage.ActionExtra
	if err := c.Bind(&extra); err != nil && !errors.Is(err, io.EOF) {
		return engage.ActionExtra{}, err
	}
	return extra, nil
}

// listPage runs the filter/sort/paginate pipeline over an in-memory
// collection.
func listPage[T any](items []T, cfg listing.Config[T], q listQuery) (listing.Page[T], error) {
	filtered, err := listing.Apply(items, cfg, q.filter, time.Now())
	if err != nil {
		return listing.Page[T]{}, err
	}
	sorted, err := listing.Sort(filtered, cfg, q.sortBy)
	if err != nil {
		return listing.Page[T]{}, err
	}
	return listing.Paginate(sorted, q.page, q.pageSize), nil
}

func statusForKind(kind string) int {
	switch kind {
	case "permission":
		return http.StatusForbidden
	case "not_found":
		return http.StatusNotFound
	case "transient":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// splitCSV splits a comma-separated query parameter into trimmed non-empty strings.
func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}
