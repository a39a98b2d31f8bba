package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/bbernhard/leaf-playground/internal/commons"
	"github.com/bbernhard/leaf-playground/internal/submission"
	"github.com/bbernhard/leaf-playground/internal/upload"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

//go:embed templates
var templatesFS embed.FS

type Options struct {
	Release        bool
	MaxUploadBytes int64
}

// Server is the web surface: one page per session, rendered server side.
type Server struct {
	controller *submission.Controller
	surface    *upload.Surface
	router     *gin.Engine
}

func NewServer(controller *submission.Controller, surface *upload.Surface, opts Options) *Server {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(requestLogger(), sentryRecovery())
	if opts.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = opts.MaxUploadBytes
	}

	tmpl := template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))
	router.SetHTMLTemplate(tmpl)

	s := &Server{
		controller: controller,
		surface:    surface,
		router:     router,
	}
	s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	s.router.GET("/", s.newPage)

	page := s.router.Group("/s/:sid")
	page.GET("", s.showPage)
	page.POST("/select", limitBody(opts.MaxUploadBytes), s.selectFile)
	page.POST("/submit", s.submit)
	page.OPTIONS("/state", func(c *gin.Context) {
		setCORSHeaders(c)
		c.JSON(http.StatusOK, struct{}{})
	})
	page.GET("/state", s.state)
	page.GET("/preview/:fid", s.preview)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(address string) error {
	log.Info("[Main] Web surface listening on ", address)
	return s.router.Run(address)
}

func setCORSHeaders(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, Cache-Control")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
}

func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("[Web] Request")
	}
}

func sentryRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		err := fmt.Errorf("panic: %v", recovered)
		log.Error("[Web] Recovered from ", err.Error())
		commons.ReportError(err, map[string]string{"path": c.FullPath()})
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
