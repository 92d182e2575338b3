// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/fin-ledger/internal/middleware"
	"github.com/go-petr/fin-ledger/internal/statementdelivery"
	"github.com/go-petr/fin-ledger/internal/statementrepo"
	"github.com/go-petr/fin-ledger/internal/statementservice"
	"github.com/go-petr/fin-ledger/internal/userdelivery"
	"github.com/go-petr/fin-ledger/internal/userrepo"
	"github.com/go-petr/fin-ledger/internal/userservice"
	"github.com/go-petr/fin-ledger/pkg/configpkg"
	"github.com/go-petr/fin-ledger/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	statementRepo := statementrepo.NewRepoPGS(conn)

	tokenMaker, err := newTokenMaker(config)
	if err != nil {
		return nil, err
	}

	userService := userservice.New(userRepo)
	statementService := statementservice.New(statementRepo, userRepo, config.AmountRounding)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)
	statementHandler := statementdelivery.NewHandler(statementService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	api := engine.Group("/api/v1")

	api.POST("/users", userHandler.Create)
	api.POST("/sessions", userHandler.Login)

	authRoutes := api.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/profile", userHandler.Profile)
	authRoutes.POST("/statements/:type", statementHandler.Create)
	authRoutes.GET("/statements/balance", statementHandler.GetBalance)
	authRoutes.GET("/statements/:statement_id", statementHandler.Get)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}

func newTokenMaker(config configpkg.Config) (tokenpkg.Maker, error) {
	switch config.TokenMaker {
	case "paseto":
		return tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	case "jwt", "":
		return tokenpkg.NewJWTMaker(config.TokenSymmetricKey)
	}

	return nil, fmt.Errorf("unsupported token maker %q", config.TokenMaker)
}
