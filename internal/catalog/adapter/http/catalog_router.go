package http

import (
	"errors"

	authhttp "course-station/internal/auth/adapter/http"
	"course-station/internal/catalog/domain/model"
	"course-station/internal/catalog/usecase"
	apperrors "course-station/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// CatalogHTTPHandler exposes the course and enrollment REST surface. Each
// operation has exactly one route and one contract.
type CatalogHTTPHandler struct {
	admission usecase.AdmissionUsecaseInterface
	queries   usecase.QueryUsecaseInterface
	courses   usecase.CourseUsecaseInterface
}

// NewCatalogHTTPHandler creates a new catalog HTTP handler
func NewCatalogHTTPHandler(
	admission usecase.AdmissionUsecaseInterface,
	queries usecase.QueryUsecaseInterface,
	courses usecase.CourseUsecaseInterface,
) *CatalogHTTPHandler {
	return &CatalogHTTPHandler{
		admission: admission,
		queries:   queries,
		courses:   courses,
	}
}

// SetupCatalogRoutes registers all catalog routes. Mutating enrollment routes
// sit behind the auth middleware; the admitted email is always the
// authenticated one, never taken from the request body.
func (h *CatalogHTTPHandler) SetupCatalogRoutes(router fiber.Router, middleware *authhttp.AuthMiddleware) {
	router.Post("/courses", h.CreateCourse)
	router.Get("/courses", h.ListCourses)
	router.Get("/courses/:id", h.GetCourse)
	router.Put("/courses/:id", h.UpdateCourse)
	router.Delete("/courses/:id", h.DeleteCourse)
	router.Get("/courses/:id/seats", h.GetSeatsLeft)

	router.Get("/enrollments/check", h.CheckEnrollment)
	router.Get("/enrollments/count/:userEmail", h.CountEnrollments)

	protected := router.Group("/enrollments", middleware.Protect())
	protected.Post("/", h.RequestEnrollment)
	protected.Get("/", h.ListEnrollments)
	protected.Delete("/:id", h.CancelEnrollment)
}

// CreateCourse handles course creation
func (h *CatalogHTTPHandler) CreateCourse(c *fiber.Ctx) error {
	var course model.Course
	if err := c.BodyParser(&course); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	id, err := h.courses.CreateCourse(c.UserContext(), &course)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"insertedId": id})
}

// ListCourses handles the combined listing endpoint: plain, owner-filtered,
// latest-first, or popularity-ranked via query parameters.
func (h *CatalogHTTPHandler) ListCourses(c *fiber.Ctx) error {
	if c.Query("popular") == "true" {
		courses, err := h.queries.PopularCourses(c.UserContext(), int64(c.QueryInt("limit")))
		if err != nil {
			return h.respondError(c, err)
		}
		return c.JSON(courses)
	}

	filter := model.CourseFilter{CreatorEmail: c.Query("creatorEmail")}
	latest := c.Query("latest") == "true"

	courses, err := h.queries.ListCourses(c.UserContext(), filter, latest)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(courses)
}

// GetCourse handles course retrieval by id
func (h *CatalogHTTPHandler) GetCourse(c *fiber.Ctx) error {
	course, err := h.courses.GetCourse(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(course)
}

// UpdateCourse handles full-document course replacement with upsert
func (h *CatalogHTTPHandler) UpdateCourse(c *fiber.Ctx) error {
	var course model.Course
	if err := c.BodyParser(&course); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	outcome, err := h.courses.UpdateCourse(c.UserContext(), c.Params("id"), &course)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(outcome)
}

// DeleteCourse handles course deletion
func (h *CatalogHTTPHandler) DeleteCourse(c *fiber.Ctx) error {
	outcome, err := h.courses.DeleteCourse(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(outcome)
}

// GetSeatsLeft reports remaining capacity for a course
func (h *CatalogHTTPHandler) GetSeatsLeft(c *fiber.Ctx) error {
	seatsLeft, err := h.queries.SeatsLeft(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"seatsLeft": seatsLeft})
}

// RequestEnrollment handles an admission attempt for the authenticated user
func (h *CatalogHTTPHandler) RequestEnrollment(c *fiber.Ctx) error {
	var req usecase.AdmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	// The admitted identity is the token's, regardless of the body.
	if email, ok := c.Locals(authhttp.UserEmailLocal).(string); ok && email != "" {
		req.UserEmail = email
	}

	enrollment, err := h.admission.RequestEnrollment(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"insertedId": enrollment.ID.Hex(),
	})
}

// ListEnrollments returns the authenticated user's enrollments
func (h *CatalogHTTPHandler) ListEnrollments(c *fiber.Ctx) error {
	email, _ := c.Locals(authhttp.UserEmailLocal).(string)
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email is required",
		})
	}

	enrollments, err := h.queries.ListEnrollmentsByUser(c.UserContext(), email)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(enrollments)
}

// CancelEnrollment removes an enrollment by id
func (h *CatalogHTTPHandler) CancelEnrollment(c *fiber.Ctx) error {
	if err := h.admission.CancelEnrollment(c.UserContext(), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Enrollment removed successfully"})
}

// CheckEnrollment reports whether a user is enrolled in a course
func (h *CatalogHTTPHandler) CheckEnrollment(c *fiber.Ctx) error {
	userEmail := c.Query("userEmail")
	courseID := c.Query("courseId")
	if userEmail == "" || courseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Missing query parameters",
		})
	}

	status, err := h.queries.IsEnrolled(c.UserContext(), userEmail, courseID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(status)
}

// CountEnrollments returns a user's total enrollment count
func (h *CatalogHTTPHandler) CountEnrollments(c *fiber.Ctx) error {
	count, err := h.queries.CountEnrollmentsByUser(c.UserContext(), c.Params("userEmail"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// respondError maps domain errors onto HTTP responses. Business-rule
// rejections are conflicts, malformed input and identifiers are client
// errors, store failures are 503.
func (h *CatalogHTTPHandler) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Missing required fields",
		})
	case errors.Is(err, apperrors.ErrInvalidIdentifier):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid identifier",
		})
	case errors.Is(err, apperrors.ErrCourseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Course not found",
		})
	case errors.Is(err, apperrors.ErrEnrollmentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Enrollment not found",
		})
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "No seats left",
		})
	case errors.Is(err, apperrors.ErrQuotaExceeded):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Enrollment quota exceeded",
		})
	case errors.Is(err, apperrors.ErrAlreadyEnrolled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Already enrolled",
		})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Store unavailable",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
