package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/kevinmichaelchen/readme-drafter/internal/pipeline"
	"github.com/kevinmichaelchen/readme-drafter/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionCookie = "readme_drafter_session"
	sessionTTL    = 12 * time.Hour
)

// Analyzer runs one README request.
type Analyzer interface {
	Run(ctx context.Context, creds session.Credentials, repoURL string) (*pipeline.Result, error)
}

type Options struct {
	Mode string // debug, release, test
}

// Setup builds the gin engine serving the form UI and the JSON API.
func Setup(opts Options, store *session.Store, analyzer Analyzer) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	h := NewHandler(store, analyzer)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	ui := r.Group("/", h.withSession)
	{
		ui.GET("", h.Index)
		ui.POST("/analyze", h.Analyze)
		ui.POST("/credentials", h.SaveCredentials)
		ui.POST("/credentials/clear", h.ClearCredentials)
	}

	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", headerModelAPIKey, headerRepoAPIToken},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	api.Use(h.withSession)
	{
		api.POST("/readme", h.APIReadme)
	}

	return r
}
