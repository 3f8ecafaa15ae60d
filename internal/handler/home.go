package handler // handler defines http handlers

import (
	"net/http" // net/http provides status codes

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/mysql-starter/internal/database" // database provides the session factory
)

// Greeting is the fixed message served at the root path.
const Greeting = "FastAPI funcionando con MySQL"

// Message is the JSON body returned by Home.
type Message struct {
	Message string `json:"message"`
}

// Handler bundles the dependencies shared by request handlers. The session
// factory is injected once at startup so handlers never reach for globals.
type Handler struct {
	Sessions *database.SessionFactory // Sessions opens one unit of work per request that needs the database
}

// New constructs a Handler. sessions may be nil for handlers that never touch the database.
func New(sessions *database.SessionFactory) *Handler {
	return &Handler{Sessions: sessions}
}

// Home returns the fixed greeting with 200. It reads nothing from the
// request and performs no I/O, so it cannot fail.
func (h *Handler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, Message{Message: Greeting}) // write {"message": ...} with 200 OK
}
