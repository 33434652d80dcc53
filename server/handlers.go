package server

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/s0l0c0ding/solocoding/category"
	"github.com/s0l0c0ding/solocoding/content"
	"github.com/s0l0c0ding/solocoding/site"
)

type postsResponse struct {
	Selection category.Selection `json:"selection"`
	Count     int                `json:"count"`
	Posts     []content.Record   `json:"posts"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoutes(c echo.Context) error {
	records := s.snapshot()
	if records == nil {
		records = []content.Record{}
	}
	return c.JSON(http.StatusOK, records)
}

// handlePosts answers the dashboard query: ?category= takes the same values
// as the /posts/:categoryId route parameter.
func (s *Server) handlePosts(c echo.Context) error {
	sel := category.ParseParam(c.QueryParam("category"))
	posts := category.Filter(s.snapshot(), sel)
	category.SortByDate(posts)
	return c.JSON(http.StatusOK, postsResponse{Selection: sel, Count: len(posts), Posts: posts})
}

func (s *Server) handleSearchIndex(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.JSONBlob(http.StatusOK, s.svc.SearchIndex())
}

func (s *Server) handlePage(c echo.Context) error {
	target, err := s.svc.StaticDocumentPath(c.Request().URL.Path)
	if err != nil {
		if errors.Is(err, site.ErrInvalidPath) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		return echo.ErrNotFound
	}
	return c.File(target)
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusNotFound && !strings.HasPrefix(c.Request().URL.Path, "/api/") {
		s.writeNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if he != nil {
		code = he.Code
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("http", "path", c.Request().URL.Path, "error", err)
	}
	s.echo.DefaultHTTPErrorHandler(err, c)
}

// writeNotFound serves the pre-rendered 404 page, rendering one on the fly
// when the output has not been built yet.
func (s *Server) writeNotFound(c echo.Context) {
	page, err := os.ReadFile(s.svc.NotFoundDocumentPath())
	if err != nil {
		page, err = s.svc.RenderNotFoundPage(c.Request().Context(), c.Request().URL.Path)
	}
	if err != nil {
		s.logger.Error("not found page", "error", err)
		_ = c.String(http.StatusNotFound, http.StatusText(http.StatusNotFound))
		return
	}
	_ = c.HTMLBlob(http.StatusNotFound, page)
}
