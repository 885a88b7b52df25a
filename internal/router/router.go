// Package router registers the HTTP routes of the API together with the
// authentication, role, cache and rate limit middleware each group needs.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/handler"
	"github.com/iliyamo/restaurant-order-service/internal/middleware"
	"github.com/iliyamo/restaurant-order-service/internal/model"
)

// Guards bundles the middleware shared by the route groups.  Cache,
// Invalidate and RateLimit may be pass-through middleware when Redis is
// unavailable.
type Guards struct {
	Identifier middleware.Identifier
	Cache      echo.MiddlewareFunc
	Invalidate echo.MiddlewareFunc
	RateLimit  echo.MiddlewareFunc
}

func (g Guards) auth() echo.MiddlewareFunc     { return middleware.Authenticate(g.Identifier) }
func (g Guards) optional() echo.MiddlewareFunc { return middleware.OptionalAuth(g.Identifier) }

func (g Guards) admin() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{g.auth(), middleware.RequireRole(model.RoleAdmin)}
}

// menuWrite is admin() followed by cache invalidation.
func (g Guards) menuWrite() []echo.MiddlewareFunc {
	return append(g.admin(), g.Invalidate)
}

// RegisterRoutes registers routes that need no handler state.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the password login, Google OAuth and session
// endpoints.  All of them are rate limited.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	api := e.Group("/api/auth", g.RateLimit)
	api.POST("/login", a.Login)
	api.POST("/refresh", a.Refresh)
	api.POST("/logout", a.Logout, g.optional())
	api.GET("/me", a.Me, g.auth())

	web := e.Group("/auth", g.RateLimit)
	web.GET("/google", a.GoogleStart)
	web.GET("/google/callback", a.GoogleCallback)
	web.GET("/failure", a.Failure)
}

// RegisterUsers registers /api/users.  Creating a user is open so clients
// can sign up; the handler decides whether the caller may create staff.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, g Guards) {
	u := e.Group("/api/users")
	u.POST("", h.Create, g.optional())
	u.GET("/cashiers", h.ListCashiers, g.auth(), middleware.RequireRole(model.RoleAdmin, model.RoleCashier))
	u.GET("/clients", h.ListClients, g.auth(), middleware.RequireRole(model.RoleAdmin, model.RoleCashier))
	u.GET("/:id", h.Get, g.auth())
	u.PUT("/:id", h.Update, g.admin()...)
	u.DELETE("/:id", h.Delete, g.admin()...)
}

// RegisterCatalog registers restaurants, tables, categories and products.
// Reads are public and cached; writes are admin only.
func RegisterCatalog(e *echo.Echo, r *handler.RestaurantHandler, cat *handler.CatalogHandler, g Guards) {
	rs := e.Group("/api/restaurants")
	rs.GET("", r.ListRestaurants, g.Cache)
	rs.GET("/:id", r.GetRestaurant, g.Cache)
	rs.POST("", r.CreateRestaurant, g.menuWrite()...)
	rs.PUT("/:id", r.UpdateRestaurant, g.menuWrite()...)
	rs.DELETE("/:id", r.DeleteRestaurant, g.menuWrite()...)

	ts := e.Group("/api/tables")
	ts.GET("", r.ListTables, g.Cache)
	ts.GET("/:id", r.GetTable, g.Cache)
	ts.POST("", r.CreateTable, g.menuWrite()...)
	ts.PUT("/:id", r.UpdateTable, g.menuWrite()...)
	ts.DELETE("/:id", r.DeleteTable, g.menuWrite()...)

	cs := e.Group("/api/categories")
	cs.GET("", cat.ListCategories, g.Cache)
	cs.GET("/:id", cat.GetCategory, g.Cache)
	cs.POST("", cat.CreateCategory, g.menuWrite()...)
	cs.POST("/bulk", cat.CreateCategories, g.menuWrite()...)
	cs.PUT("/:id", cat.UpdateCategory, g.menuWrite()...)
	cs.DELETE("/:id", cat.DeleteCategory, g.menuWrite()...)

	ps := e.Group("/api/products")
	ps.GET("", cat.ListProducts, g.Cache)
	ps.GET("/category/:categoryId", cat.ListProductsByCategory, g.Cache)
	ps.GET("/:id", cat.GetProduct, g.Cache)
	ps.POST("", cat.CreateProduct, g.menuWrite()...)
	ps.POST("/bulk", cat.CreateProducts, g.menuWrite()...)
	ps.PUT("/:id", cat.UpdateProduct, g.menuWrite()...)
	ps.DELETE("/:id", cat.DeleteProduct, g.menuWrite()...)
}

// RegisterOrders registers /api/orders and /api/order-items.  Orders may
// be placed anonymously; changing them requires a session.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, items *handler.OrderItemHandler, g Guards) {
	ord := e.Group("/api/orders")
	ord.GET("", o.List)
	ord.GET("/user/:user_id", o.ListByUser)
	ord.GET("/:id", o.Get)
	ord.POST("", o.Create, g.optional())
	ord.PUT("/:id", o.Update, g.auth())
	ord.PATCH("/:id/status", o.UpdateStatus, g.auth(), middleware.RequireRole(model.RoleAdmin, model.RoleCashier))
	ord.DELETE("/:id", o.Delete, g.auth())

	oi := e.Group("/api/order-items")
	oi.GET("", items.List)
	oi.GET("/:id", items.Get)
	oi.GET("/user/:user_id", o.ListByUser)
	oi.POST("", items.Create, g.auth())
	oi.PUT("/:id", items.Update, g.auth())
	oi.DELETE("/:id", items.Delete, g.auth())
}
