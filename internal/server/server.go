package server

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sahith215/AtmosTrack/internal/ml"
	"github.com/sahith215/AtmosTrack/internal/service"
)

// Server wires the classifier service into an HTTP transport.
type Server struct {
	classifier *service.Classifier
	meta       ml.Metadata
	accuracy   float64
	log        *zap.Logger
	engine     *gin.Engine
	http       *http.Server
}

// New builds the gin engine, middleware chain and routes around the
// classifier. meta is the loaded artifact's metadata, exposed read-only on
// GET /model.
func New(addr string, classifier *service.Classifier, meta ml.Metadata, accuracy float64, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	useJSONFieldNames()

	s := &Server{
		classifier: classifier,
		meta:       meta,
		accuracy:   accuracy,
		log:        log,
	}

	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(RequestLogger(log))
	engine.Use(gin.Recovery())

	engine.GET("/health", s.handleHealth)
	engine.GET("/model", s.handleModel)
	engine.POST("/classify", s.handleClassify)

	s.engine = engine
	s.http = &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// useJSONFieldNames makes validator report the JSON field name instead of
// the Go struct field name, so a 400 names the offending request field.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
