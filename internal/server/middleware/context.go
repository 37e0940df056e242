package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/mkm-lab/analysis-engine/pkg/engine"
)

// App holds the process-wide collaborators route handlers need.
type App struct {
	Engine       *engine.Engine
	Queue        *amqp091.Channel
	MasterAPIKey string
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(eng *engine.Engine, queue *amqp091.Channel, masterAPIKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				Engine:       eng,
				Queue:        queue,
				MasterAPIKey: masterAPIKey,
			}
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
