package designkit

import (
	"log/slog"
	"net/http"

	"github.com/fernandezvara/designkit/idgen"
)

// Middleware provides HTTP middleware enforcing object permissions.
// It checks against a base Store whose policy is shared by every request;
// each request gets its own Store bound to the caller's roles.
type Middleware struct {
	store        *Store
	getUserID    func(*http.Request) string
	getUserRoles func(*http.Request) []string
	errorHandler func(http.ResponseWriter, *http.Request, error)
	logger       *slog.Logger
	requestIDs   idgen.Generator
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance over a base store.
//
// Example:
//
//	mw := designkit.NewMiddleware(store,
//	    designkit.WithUserRolesExtractor(func(r *http.Request) []string {
//	        return sessionRoles(r)
//	    }),
//	)
func NewMiddleware(store *Store, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		store:        store,
		getUserID:    defaultGetUserID,
		getUserRoles: defaultGetUserRoles,
		errorHandler: defaultErrorHandler,
		logger:       slog.Default(),
		requestIDs:   idgen.UUID(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithUserIDExtractor sets a custom function to extract user ID from request.
func WithUserIDExtractor(fn func(*http.Request) string) MiddlewareOption {
	return func(m *Middleware) {
		m.getUserID = fn
	}
}

// WithUserRolesExtractor sets a custom function to extract the user's roles from request.
func WithUserRolesExtractor(fn func(*http.Request) []string) MiddlewareOption {
	return func(m *Middleware) {
		m.getUserRoles = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

// WithMiddlewareLogger sets the logger used for denied requests.
func WithMiddlewareLogger(logger *slog.Logger) MiddlewareOption {
	return func(m *Middleware) {
		m.logger = logger
	}
}

// WithRequestIDGenerator sets the generator for request IDs assigned by
// InjectAuditContext. Defaults to idgen.UUID().
func WithRequestIDGenerator(gen idgen.Generator) MiddlewareOption {
	return func(m *Middleware) {
		m.requestIDs = gen
	}
}

func defaultGetUserID(r *http.Request) string {
	return GetUserID(r.Context())
}

func defaultGetUserRoles(r *http.Request) []string {
	return GetUserRoles(r.Context())
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if IsForbidden(err) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if IsInvalidPolicy(err) || IsInvalidRole(err) || IsNotFound(err) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// ObjectExtractor extracts the object name an HTTP request acts on.
type ObjectExtractor func(*http.Request) (string, error)

// ObjectFromParam creates an ObjectExtractor that reads the object from a path parameter.
//
// Example:
//
//	// For route /objects/{object}/records
//	mw.RequirePermission(designkit.ActionRead, designkit.ObjectFromParam("object"))
func ObjectFromParam(paramName string) ObjectExtractor {
	return func(r *http.Request) (string, error) {
		object := r.PathValue(paramName)
		if object == "" {
			if v := r.Context().Value(paramName); v != nil {
				if s, ok := v.(string); ok {
					object = s
				}
			}
		}
		if object == "" {
			return "", NewError(ErrNotFound, "object not found in request")
		}
		return object, nil
	}
}

// ObjectFromQuery creates an ObjectExtractor that reads the object from a query parameter.
func ObjectFromQuery(queryParam string) ObjectExtractor {
	return func(r *http.Request) (string, error) {
		object := r.URL.Query().Get(queryParam)
		if object == "" {
			return "", NewError(ErrNotFound, "object not found in query")
		}
		return object, nil
	}
}

// StaticObject creates an ObjectExtractor that always returns the same object.
//
// Example:
//
//	mw.RequirePermission(designkit.ActionUpdate, designkit.StaticObject("page_layouts"))
func StaticObject(object string) ObjectExtractor {
	return func(r *http.Request) (string, error) {
		return object, nil
	}
}

// storeFor binds the base store to the request's user.
func (m *Middleware) storeFor(r *http.Request) *Store {
	userID := m.getUserID(r)
	var user *User
	if userID != "" {
		user = &User{ID: userID}
	}
	return m.store.ForUser(m.getUserRoles(r), user)
}

// RequirePermission creates middleware that requires action on the extracted object.
// The request's Store is added to the context for handlers.
//
// Example:
//
//	mux.Handle("POST /objects/{object}/records",
//	    mw.RequirePermission(designkit.ActionCreate, designkit.ObjectFromParam("object"))(createHandler))
func (m *Middleware) RequirePermission(action Action, extractor ObjectExtractor) func(http.Handler) http.Handler {
	return m.RequireAnyPermission([]Action{action}, extractor)
}

// RequireAnyPermission creates middleware that requires any of the actions on the extracted object.
func (m *Middleware) RequireAnyPermission(actions []Action, extractor ObjectExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			object, err := extractor(r)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}

			store := m.storeFor(r)
			for _, action := range actions {
				if store.Can(object, action) {
					next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), store)))
					return
				}
			}

			var reason string
			if len(actions) > 0 {
				reason = store.Check(object, actions[0], nil).Reason
			}
			m.logger.Debug("permission denied",
				"object", object,
				"actions", actions,
				"user_id", m.getUserID(r),
				"reason", reason,
			)
			m.errorHandler(w, r, NewError(ErrForbidden, reason).
				WithObject(object).
				WithUser(m.getUserID(r)))
		})
	}
}

// LoadStore creates middleware that puts the user's Store into context.
// Use this when handlers do their own checks, for example field-level ones.
//
// Example:
//
//	mux.Handle("GET /designer", mw.LoadStore()(designerHandler))
//
//	func designerHandler(w http.ResponseWriter, r *http.Request) {
//	    store := designkit.GetStore(r.Context())
//	    res := store.Check("orders", designkit.ActionUpdate, nil)
//	    // hide fields where !res.CanWriteField(name)
//	}
func (m *Middleware) LoadStore() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), m.storeFor(r))))
		})
	}
}

// InjectAuditContext creates middleware that extracts audit information from the request
// and adds it to the context for use in policy changes. A request ID is generated
// when the request carries none.
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

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = m.requestIDs.NewID()
			}
			ctx = WithRequestID(ctx, requestID)

			if userID := m.getUserID(r); userID != "" {
				ctx = WithActorID(ctx, userID)
				ctx = WithUserID(ctx, userID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
