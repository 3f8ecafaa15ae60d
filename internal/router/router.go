package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                   // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware" // echo's stock middleware (panic recovery)
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/mysql-starter/internal/handler"    // import the handlers
	"github.com/iliyamo/mysql-starter/internal/middleware" // request logging
)

// RegisterRoutes installs the shared middleware and the service's only
// route on the provided Echo instance.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, log logrus.FieldLogger) {
	// Recover turns a panicking handler into a 500 instead of killing the
	// connection; RequestLogger records every request, including those.
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())

	// GET / returns the fixed greeting.
	e.GET("/", h.Home)
}
