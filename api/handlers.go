package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const (
	jsonBodyMaxSize   = 64 << 10
	importBodyMaxSize = 4 << 20
)

var disallowedPanelMethods = []string{
	http.MethodHead,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodTrace,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, b Board, panels Panels, logger *log.Logger, timeout time.Duration) {
	e.HTTPErrorHandler = ErrorHandler(logger)

	registerPanel(e, "/api/users", panels.Users, logger, timeout)
	registerPanel(e, "/api/tutors", panels.Tutors, logger, timeout)
	registerPanel(e, "/api/payments", panels.Payments, logger, timeout)
	registerPanel(e, "/api/sessions", panels.Sessions, logger, timeout)
	registerPanel(e, "/api/session-notes", panels.SessionNotes, logger, timeout)
	registerPanel(e, "/api/tutors-with-subjects", panels.TutorsWithSubjects, logger, timeout)

	registerBoard(e, b, panels, logger, timeout)

	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func registerPanel[T any](e *echo.Echo, route string, fetch func(context.Context) ([]T, error), logger *log.Logger, timeout time.Duration) {
	e.GET(route, getPanel(route, fetch, logger, timeout))
	e.Match(disallowedPanelMethods, route, methodNotAllowed(http.MethodGet))
}

func getPanel[T any](route string, fetch func(context.Context) ([]T, error), logger *log.Logger, timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newPanelRequestMetrics(c.Request().Context(), logger, route)
		c.SetRequest(c.Request().WithContext(ctx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		fetchStart := time.Now()
		items, fetchErr := fetch(ctx)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("fetch")
			c.Logger().Error(fetchErr)
			err = c.JSON(http.StatusInternalServerError, errorResponse{Error: fetchErr.Error()})
			if err == nil {
				err = fetchErr
			}
			return err
		}
		if items == nil {
			items = []T{}
		}
		metrics.SetItemsReturned(len(items))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, items)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

// methodNotAllowed answers any method other than allow with 405, naming the
// rejected method in a plain-text body.
func methodNotAllowed(allow string) echo.HandlerFunc {
	return func(c echo.Context) error {
		method := c.Request().Method
		c.Response().Header().Set(echo.HeaderAllow, allow)
		return c.String(http.StatusMethodNotAllowed, fmt.Sprintf("Method %s Not Allowed", method))
	}
}
