package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/skeletonhq/backend/internal/errortracking"
)

var (
	// ErrStaticDirMissing is returned by New if a mounted directory does not exist.
	ErrStaticDirMissing = errors.New("static directory does not exist")

	// ErrInvalidOrigin is returned by New for a malformed BACKEND_CORS_ORIGINS entry.
	ErrInvalidOrigin = errors.New("invalid cors origin")
)

// InternalErrorDetail is the body detail of unexpected errors.
const InternalErrorDetail = "Internal Server Error"

// FieldError is one failed validation rule.
type FieldError struct {
	Loc  string `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ErrorHandler turns handler errors into JSON responses:
// *fiber.Error keeps its status, validation errors become 422,
// everything else is logged, reported and answered with 500.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"detail": fe.Message})
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make([]FieldError, 0, len(ve))
		for _, e := range ve {
			details = append(details, FieldError{
				Loc:  e.Namespace(),
				Msg:  e.Error(),
				Type: e.Tag(),
			})
		}

		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": details})
	}

	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("unhandled error")

	errortracking.Capture(err)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": InternalErrorDetail})
}
