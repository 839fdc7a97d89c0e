package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tutor-dashboard/board"
	"tutor-dashboard/csvcodec"
	"tutor-dashboard/domain"
)

func registerBoard(e *echo.Echo, b Board, panels Panels, logger *log.Logger, timeout time.Duration) {
	g := e.Group("/api/board")
	g.GET("", getBoard(b))
	g.GET("/options", getFormOptions(b, panels, logger, timeout))
	g.DELETE("/edits", cancelEdits(b))

	g.POST("/tasks", postTask(b, timeout))
	g.POST("/tasks/:id/edit", beginTaskEdit(b))
	g.DELETE("/tasks/:id", deleteTask(b, timeout))
	g.GET("/tasks.csv", exportCSV(csvcodec.TasksFilename, b.ExportTasksCSV))

	g.POST("/schedules", postSchedule(b, timeout))
	g.POST("/schedules/:id/edit", beginScheduleEdit(b))
	g.DELETE("/schedules/:id", deleteSchedule(b, timeout))
	g.GET("/schedules.csv", exportCSV(csvcodec.SchedulesFilename, b.ExportSchedulesCSV))
	g.POST("/schedules/import", importSchedules(b, logger, timeout))
}

func getBoard(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, b.Snapshot())
	}
}

func getFormOptions(b Board, panels Panels, logger *log.Logger, timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		tutors, err := panels.Tutors(ctx)
		if err != nil {
			logger.WithError(err).Warn("tutors unavailable; offering fallback assignees")
			tutors = nil
		}
		return c.JSON(http.StatusOK, b.FormOptions(tutors))
	}
}

func cancelEdits(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.CancelTaskEdit()
		b.CancelScheduleEdit()
		return c.JSON(http.StatusOK, b.Snapshot())
	}
}

func postTask(b Board, timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req taskRequest
		if err := decodeJSON(c, &req); err != nil {
			return err
		}
		category, ok := domain.ParseCategory(req.Category)
		if !ok {
			category = domain.Category(strings.TrimSpace(req.Category))
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		applied, err := b.AddOrUpdateTask(ctx, category, req.Text)
		if err != nil {
			return err
		}
		resp := mutationResponse{Applied: applied, Board: b.Snapshot()}
		if !applied {
			resp.Warnings = map[string]string{"text": "text is required"}
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func beginTaskEdit(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, task, err := b.BeginEditTaskByID(c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, taskEditResponse{Ref: ref, Task: task})
	}
}

func deleteTask(b Board, timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		if err := b.DeleteTaskByID(ctx, c.Param("id")); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, mutationResponse{Applied: true, Board: b.Snapshot()})
	}
}

func postSchedule(b Board, timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		var s domain.Schedule
		if err := decodeJSON(c, &s); err != nil {
			return err
		}
		s.ID = ""

		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		applied, err := b.AddOrUpdateSchedule(ctx, s)
		if err != nil {
			return err
		}
		resp := mutationResponse{Applied: applied, Board: b.Snapshot()}
		if !applied {
			resp.Warnings = board.ValidateSchedule(s)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func beginScheduleEdit(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		idx, s, err := b.BeginEditScheduleByID(c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, scheduleEditResponse{Index: idx, Schedule: s})
	}
}

func deleteSchedule(b Board, timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		if err := b.DeleteScheduleByID(ctx, c.Param("id")); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, mutationResponse{Applied: true, Board: b.Snapshot()})
	}
}

func exportCSV(filename string, render func() string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Blob(http.StatusOK, csvcodec.MIMEType, []byte(render()))
	}
}

// importSchedules accepts either a multipart upload in the "file" field or the
// CSV text as the raw request body.
func importSchedules(b Board, logger *log.Logger, timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := readImportBody(c)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		imported, dropped, err := b.ImportSchedulesCSV(ctx, raw)
		if err != nil {
			return err
		}
		if dropped > 0 {
			logger.WithField("dropped", dropped).Warn("schedule import skipped incomplete rows")
		}
		return c.JSON(http.StatusOK, importResponse{Imported: imported, Dropped: dropped, Board: b.Snapshot()})
	}
}

func readImportBody(c echo.Context) (string, error) {
	var r io.Reader = c.Request().Body
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "missing file")
		}
		if fh.Size > importBodyMaxSize {
			return "", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, importBodyMaxSize+1))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(data) > importBodyMaxSize {
		return "", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}
	return string(data), nil
}

func decodeJSON(c echo.Context, v any) error {
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, jsonBodyMaxSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return echo.NewHTTPError(http.StatusBadRequest, "empty body")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return nil
}
