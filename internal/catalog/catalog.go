package catalog

import (
	"fmt"

	authhttp "course-station/internal/auth/adapter/http"
	cataloghttp "course-station/internal/catalog/adapter/http"
	"course-station/internal/catalog/adapter/persistence"
	"course-station/internal/catalog/adapter/persistence/mongodb"
	"course-station/internal/catalog/config"
	"course-station/internal/catalog/domain/repository"
	"course-station/internal/catalog/usecase"
	"course-station/internal/shared/eventbus"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CatalogModule wires the course/enrollment core: both repositories, the
// admission controller, the query service and the HTTP surface.
type CatalogModule struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	admission      usecase.AdmissionUsecaseInterface
	queries        usecase.QueryUsecaseInterface
	courses        usecase.CourseUsecaseInterface
	handler        *cataloghttp.CatalogHTTPHandler
	config         *config.CatalogConfig
}

// NewCatalogModule creates a new catalog module instance. redisClient may be
// nil; the enrollment event trail is then skipped.
func NewCatalogModule(
	db *mongo.Database,
	cfg *config.CatalogConfig,
	bus eventbus.EventBusInterface,
	redisClient *redis.Client,
	log *zap.Logger,
) (*CatalogModule, error) {
	courseRepo, err := mongodb.NewMongoCourseRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create course repository: %w", err)
	}

	enrollmentRepo, err := mongodb.NewMongoEnrollmentRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create enrollment repository: %w", err)
	}

	var eventStore repository.EnrollmentEventStore
	if redisClient != nil {
		eventStore = persistence.NewRedisEventStore(redisClient, log)
	}

	admission := usecase.NewAdmissionUsecase(courseRepo, enrollmentRepo, eventStore, bus, cfg.EnrollmentQuota, log)
	queries := usecase.NewQueryUsecase(courseRepo, enrollmentRepo, cfg.PageLimit, log)
	courses := usecase.NewCourseUsecase(courseRepo, enrollmentRepo, log)

	return &CatalogModule{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		admission:      admission,
		queries:        queries,
		courses:        courses,
		handler:        cataloghttp.NewCatalogHTTPHandler(admission, queries, courses),
		config:         cfg,
	}, nil
}

// RegisterRoutes registers catalog routes with the provided router
func (cm *CatalogModule) RegisterRoutes(router fiber.Router, middleware *authhttp.AuthMiddleware) {
	cm.handler.SetupCatalogRoutes(router, middleware)
}

// GetAdmissionUsecase returns the admission controller for external access
func (cm *CatalogModule) GetAdmissionUsecase() usecase.AdmissionUsecaseInterface {
	return cm.admission
}

// GetQueryUsecase returns the query service for external access
func (cm *CatalogModule) GetQueryUsecase() usecase.QueryUsecaseInterface {
	return cm.queries
}
