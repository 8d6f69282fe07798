package stagekit

import (
	"net/http"
	"net/url"
	"strconv"
)

// Middleware provides HTTP middleware for resource authorization.
type Middleware struct {
	service      *Service
	getUserID    func(*http.Request) int64
	errorHandler func(http.ResponseWriter, *http.Request, error)
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := stagekit.NewMiddleware(service,
//	    stagekit.WithUserIDExtractor(func(r *http.Request) int64 {
//	        return userIDFromJWT(r)
//	    }),
//	)
func NewMiddleware(service *Service, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		service:      service,
		getUserID:    defaultGetUserID,
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithUserIDExtractor sets a custom function to extract the user ID from a request.
func WithUserIDExtractor(fn func(*http.Request) int64) MiddlewareOption {
	return func(m *Middleware) {
		m.getUserID = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

func defaultGetUserID(r *http.Request) int64 {
	return GetUserID(r.Context())
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsUnauthorized(err):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case IsNotFound(err) || IsValidation(err):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// ResourceIDExtractor extracts a resource id from an HTTP request.
type ResourceIDExtractor func(*http.Request) (int64, error)

// ResourceIDFromParam reads the resource id from a URL path parameter
// (net/http 1.22+ patterns, also falls back to a context value).
//
// Example:
//
//	// For route /venues/{venueID}
//	mw.RequireResourceRoles(stagekit.ResourceVenue,
//	    []stagekit.Role{stagekit.RoleManager},
//	    stagekit.ResourceIDFromParam("venueID"))
func ResourceIDFromParam(paramName string) ResourceIDExtractor {
	return func(r *http.Request) (int64, error) {
		raw := r.PathValue(paramName)
		if raw == "" {
			if v := r.Context().Value(paramName); v != nil {
				if s, ok := v.(string); ok {
					raw = s
				}
			}
		}
		return parseResourceID(raw)
	}
}

// ResourceIDFromQuery reads the resource id from a query parameter.
//
// Example:
//
//	// For route /api/budgets?venue_id=42
//	mw.RequireResourceRoles(stagekit.ResourceVenue, roles,
//	    stagekit.ResourceIDFromQuery("venue_id"))
func ResourceIDFromQuery(queryParam string) ResourceIDExtractor {
	return func(r *http.Request) (int64, error) {
		return parseResourceID(r.URL.Query().Get(queryParam))
	}
}

// ResourceIDFromHeader reads the resource id from a header.
func ResourceIDFromHeader(headerName string) ResourceIDExtractor {
	return func(r *http.Request) (int64, error) {
		return parseResourceID(r.Header.Get(headerName))
	}
}

// StaticResourceID always returns the same id. Useful for singletons.
func StaticResourceID(id int64) ResourceIDExtractor {
	return func(*http.Request) (int64, error) {
		return id, nil
	}
}

func parseResourceID(raw string) (int64, error) {
	if raw == "" {
		return 0, NewError(ErrValidation, "resource ID not found in request")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewError(ErrValidation, "resource ID must be a positive integer")
	}
	return id, nil
}

// RequireResourceRoles creates middleware that authorizes the request
// against a resource with the full rule walk (admin override, direct
// membership, cascades).
//
// Example:
//
//	router.Handle("DELETE /events/{eventID}",
//	    mw.RequireResourceRoles(stagekit.ResourceEvent,
//	        []stagekit.Role{stagekit.RoleOwner, stagekit.RoleManager},
//	        stagekit.ResourceIDFromParam("eventID"))(deleteEventHandler))
func (m *Middleware) RequireResourceRoles(resource ResourceType, roles []Role, extractor ResourceIDExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := m.getUserID(r)
			if userID == 0 {
				m.errorHandler(w, r, ErrNoUserID)
				return
			}

			resourceID, err := extractor(r)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}

			if !m.service.Authorize(ctx, userID, resource, resourceID, roles...) {
				m.errorHandler(w, r, NewError(ErrUnauthorized, "missing required roles").
					WithResource(resource, resourceID).
					WithUser(userID))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireEntityRoles is RequireResourceRoles addressed by entity name, for
// entities whose access is cascade-only.
//
// Example:
//
//	mw.RequireEntityRoles("Expense",
//	    []stagekit.Role{stagekit.RoleOwner},
//	    stagekit.ResourceIDFromParam("expenseID"))
func (m *Middleware) RequireEntityRoles(entityName string, roles []Role, extractor ResourceIDExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := m.getUserID(r)
			if userID == 0 {
				m.errorHandler(w, r, ErrNoUserID)
				return
			}

			resourceID, err := extractor(r)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}

			if !m.service.AuthorizeEntity(ctx, userID, entityName, resourceID, roles...) {
				m.errorHandler(w, r, NewError(ErrUnauthorized, "missing required roles").
					WithEntity(entityName).
					WithUser(userID))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoadChecker creates middleware that loads the user's Checker into context.
// Use this when handlers do their own direct-path checks.
//
// Example:
//
//	router.Handle("/dashboard", mw.LoadChecker()(dashboardHandler))
//
//	func dashboardHandler(w http.ResponseWriter, r *http.Request) {
//	    checker := stagekit.FromContext(r.Context())
//	    if checker != nil && checker.Can(stagekit.ResourceVenue, venueID) {
//	        // show venue tools
//	    }
//	}
func (m *Middleware) LoadChecker() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := m.getUserID(r)
			if userID == 0 {
				// No user, continue without checker
				next.ServeHTTP(w, r)
				return
			}

			checker, err := m.service.GetChecker(ctx, userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx = WithChecker(ctx, checker)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InjectAuditContext creates middleware that extracts audit information
// from the request and adds it to the context for membership operations.
//
// Example:
//
//	handler = mw.InjectAuditContext()(handler)
func (m *Middleware) InjectAuditContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := r.Header.Get("X-Forwarded-For")
			if ip == "" {
				ip = r.Header.Get("X-Real-IP")
			}
			if ip == "" {
				ip = r.RemoteAddr
			}
			ctx = WithIPAddress(ctx, ip)

			ctx = WithUserAgent(ctx, r.UserAgent())

			if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
				ctx = WithRequestID(ctx, requestID)
			}

			if userID := m.getUserID(r); userID != 0 {
				ctx = WithUserID(ctx, userID)
				ctx = WithActorID(ctx, userID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParsePagination reads skip/take from a query string and clamps them.
// A missing or unparsable take falls back to DefaultTake; an explicit
// non-positive take clamps to 1.
//
// Example:
//
//	skip, take := stagekit.ParsePagination(r.URL.Query())
//	rows, total, err := store.ListPage(ctx, includes, skip, take)
func ParsePagination(values url.Values) (skip, take int) {
	skip, _ = strconv.Atoi(values.Get("skip"))
	take = DefaultTake
	if parsed, err := strconv.Atoi(values.Get("take")); err == nil {
		take = parsed
		if take < 1 {
			take = 1
		}
	}
	return ClampPagination(skip, take)
}
