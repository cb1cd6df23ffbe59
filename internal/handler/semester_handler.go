package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trotyl/uestc-sdk-go/internal/models"
	"github.com/trotyl/uestc-sdk-go/internal/semester"
	appErrors "github.com/trotyl/uestc-sdk-go/pkg/errors"
	"github.com/trotyl/uestc-sdk-go/pkg/response"
)

type userDirectory interface {
	Current() *models.User
	User(studentID string) (*models.User, error)
}

// SemesterHandler exposes the semester codec.
type SemesterHandler struct {
	codec *semester.Codec
	users userDirectory
}

// NewSemesterHandler constructs SemesterHandler.
func NewSemesterHandler(codec *semester.Codec, users userDirectory) *SemesterHandler {
	return &SemesterHandler{codec: codec, users: users}
}

type semesterView struct {
	ID    int           `json:"id"`
	Label string        `json:"label"`
	Span  semester.Span `json:"span"`
}

func (h *SemesterHandler) view(id int) (semesterView, error) {
	span, err := h.codec.Decode(id)
	if err != nil {
		return semesterView{}, err
	}
	return semesterView{ID: id, Label: span.String(), Span: span}, nil
}

// Parse godoc
// @Summary Parse a semester label
// @Tags Semesters
// @Produce json
// @Param text query string true "Label such as 2013-2014 2"
// @Success 200 {object} response.Envelope
// @Router /semesters/parse [get]
func (h *SemesterHandler) Parse(c *gin.Context) {
	span, err := h.codec.ParseSemester(c.Query("text"))
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := h.codec.Encode(span)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semesterView{ID: id, Label: span.String(), Span: span})
}

// Resolve godoc
// @Summary Resolve a year and semester number for the session user
// @Tags Semesters
// @Produce json
// @Security BearerAuth
// @Param year query int true "Calendar year or study year (1 = grade year)"
// @Param semester query int true "Semester number"
// @Success 200 {object} response.Envelope
// @Router /semesters/resolve [get]
func (h *SemesterHandler) Resolve(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be an integer"))
		return
	}
	number, err := strconv.Atoi(c.Query("semester"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester must be an integer"))
		return
	}

	var user semester.GradeProvider
	if current := h.users.Current(); current != nil {
		user = current
	}
	id, err := h.codec.Semester(year, number, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.view(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Decode godoc
// @Summary Decode a semester id
// @Tags Semesters
// @Produce json
// @Param id path int true "Semester id"
// @Success 200 {object} response.Envelope
// @Router /semesters/{id} [get]
func (h *SemesterHandler) Decode(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester id must be an integer"))
		return
	}
	view, err := h.view(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// UserSemesters godoc
// @Summary List every semester of a registered student
// @Tags Semesters
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/semesters [get]
func (h *SemesterHandler) UserSemesters(c *gin.Context) {
	user, err := h.users.User(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	ids := h.codec.AllSemesters(user)
	views := make([]semesterView, 0, len(ids))
	for _, id := range ids {
		view, err := h.view(id)
		if err != nil {
			response.Error(c, err)
			return
		}
		views = append(views, view)
	}
	response.JSON(c, http.StatusOK, views, map[string]interface{}{"grade": user.Grade, "count": len(views)})
}

// Weekday godoc
// @Summary Parse a weekday label
// @Tags Semesters
// @Produce json
// @Param label query string true "Weekday label such as 星期三"
// @Success 200 {object} response.Envelope
// @Router /weekdays/parse [get]
func (h *SemesterHandler) Weekday(c *gin.Context) {
	label := c.Query("label")
	day, err := semester.ParseDayOfWeek(label)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"label": label, "day": day})
}

type weekdayView struct {
	Label string `json:"label"`
	Day   int    `json:"day"`
}

// Weekdays godoc
// @Summary List the weekday labels the portal uses
// @Tags Semesters
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /weekdays [get]
func (h *SemesterHandler) Weekdays(c *gin.Context) {
	labels := semester.WeekdayLabels()
	views := make([]weekdayView, 0, len(labels))
	for i, label := range labels {
		views = append(views, weekdayView{Label: label, Day: i + 1})
	}
	response.JSON(c, http.StatusOK, views)
}
