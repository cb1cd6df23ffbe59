package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trotyl/uestc-sdk-go/internal/middleware"
	"github.com/trotyl/uestc-sdk-go/internal/models"
	"github.com/trotyl/uestc-sdk-go/pkg/response"
)

type searchService interface {
	SearchCourses(ctx context.Context, opt models.SearchOption) ([]models.Course, bool, error)
	SearchPeople(ctx context.Context, opt models.SearchOption) ([]models.Person, bool, error)
}

// SearchHandler exposes course and people search.
type SearchHandler struct {
	search searchService
}

// NewSearchHandler constructs SearchHandler.
func NewSearchHandler(search searchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Courses godoc
// @Summary Search courses
// @Description Every query parameter except sort and order is a filter (name, code, teacher, department, semester, day, weeks, location, credit, id).
// @Tags Search
// @Produce json
// @Security BearerAuth
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *SearchHandler) Courses(c *gin.Context) {
	opt := optionFromQuery(c)
	courses, fallback, err := h.search.SearchCourses(c.Request.Context(), opt)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondSearch(c, courses, len(courses), fallback)
}

// People godoc
// @Summary Search people
// @Description Every query parameter except sort and order is a filter (name, kind, department, title, email, phone, id).
// @Tags Search
// @Produce json
// @Security BearerAuth
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /people [get]
func (h *SearchHandler) People(c *gin.Context) {
	opt := optionFromQuery(c)
	people, fallback, err := h.search.SearchPeople(c.Request.Context(), opt)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondSearch(c, people, len(people), fallback)
}

func respondSearch(c *gin.Context, data interface{}, count int, fallback bool) {
	middleware.SetFallback(c, fallback)
	middleware.SetMeta(c, "count", count)
	response.JSON(c, http.StatusOK, data, middleware.ExtractMeta(c))
}

func optionFromQuery(c *gin.Context) models.SearchOption {
	opt := models.SearchOption{
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	for key, values := range c.Request.URL.Query() {
		if key == "sort" || key == "order" || len(values) == 0 {
			continue
		}
		if opt.Filters == nil {
			opt.Filters = make(map[string]string)
		}
		opt.Filters[key] = values[0]
	}
	return opt
}
