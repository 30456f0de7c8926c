// Package rest exposes the user directory over HTTP/JSON using gin.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/userdir/internal/logging"
	"github.com/dmitrijs2005/userdir/internal/server/config"
	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/dmitrijs2005/userdir/internal/server/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// UserService is the business layer the handlers call into.
type UserService interface {
	AuthenticateUser(ctx context.Context, email, password string) (*services.AuthResult, error)
	CreateUser(ctx context.Context, params *models.CreateUserParams) (*models.User, error)
	GetUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, params *models.UpdateUserParams, id int64) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) (*models.User, error)
}

type RESTServer struct {
	address      string
	users        UserService
	logger       logging.Logger
	jwtSecret    []byte
	development  bool
	corsOrigins  []string
	proxies      []string
	loginLimiter *RateLimiter
	engine       *gin.Engine
}

func NewRESTServer(a string, l logging.Logger, us UserService, cfg *config.Config) *RESTServer {
	s := &RESTServer{
		address:      a,
		users:        us,
		logger:       l.With("module", "rest_server"),
		jwtSecret:    []byte(cfg.SecretKey),
		development:  cfg.IsDevelopment(),
		corsOrigins:  cfg.CORSAllowedOrigins,
		proxies:      cfg.TrustedProxies,
		loginLimiter: NewRateLimiter(cfg.LoginRateLimit),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the configured router.
func (s *RESTServer) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (s *RESTServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info(ctx, "Starting REST server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info(ctx, "Stopping REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
