package server

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kevinmichaelchen/readme-drafter/internal/pipeline"
	"github.com/kevinmichaelchen/readme-drafter/internal/session"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"k8s.io/klog/v2"
)

const (
	headerModelAPIKey  = "X-Model-Api-Key"
	headerRepoAPIToken = "X-Repo-Api-Token"

	ctxSession = "session"
)

type Handler struct {
	store    *session.Store
	analyzer Analyzer
	markdown goldmark.Markdown
}

func NewHandler(store *session.Store, analyzer Analyzer) *Handler {
	return &Handler{
		store:    store,
		analyzer: analyzer,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

type pageData struct {
	RepoURL      string
	Error        string
	Notice       string
	Document     template.HTML
	Technologies []string
	HasModelKey  bool
	HasRepoToken bool
}

type analyzeForm struct {
	RepoURL string `form:"repo_url"`
}

type credentialsForm struct {
	ModelAPIKey  string `form:"model_api_key"`
	RepoAPIToken string `form:"repo_api_token"`
}

type ReadmeRequest struct {
	RepoURL string `json:"repo_url"`
}

type ReadmeResponse struct {
	Title            string   `json:"title"`
	Technologies     []string `json:"technologies"`
	Markdown         string   `json:"markdown"`
	GenerationFailed bool     `json:"generation_failed"`
}

// withSession attaches the caller's session, creating one if the cookie
// is missing or refers to a session this process no longer knows.
func (h *Handler) withSession(c *gin.Context) {
	if id, err := c.Cookie(sessionCookie); err == nil {
		if sess, ok := h.store.Get(id); ok {
			c.Set(ctxSession, sess)
			c.Next()
			return
		}
	}

	if n := h.store.Expire(sessionTTL); n > 0 {
		klog.V(2).Infof("expired %d idle sessions", n)
	}
	sess := h.store.Create()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sess.ID, 0, "/", "", false, true)
	c.Set(ctxSession, sess)
	c.Next()
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(ctxSession).(*session.Session)
}

func (h *Handler) page(sess *session.Session) pageData {
	return pageData{
		HasModelKey:  sess.Credentials.ModelAPIKey != "",
		HasRepoToken: sess.Credentials.RepoAPIToken != "",
	}
}

func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.page(currentSession(c)))
}

func (h *Handler) SaveCredentials(c *gin.Context) {
	sess := currentSession(c)

	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		data := h.page(sess)
		data.Error = "Could not read the submitted credentials."
		c.HTML(http.StatusBadRequest, "index.html", data)
		return
	}

	update := session.Credentials{
		ModelAPIKey:  strings.TrimSpace(form.ModelAPIKey),
		RepoAPIToken: strings.TrimSpace(form.RepoAPIToken),
	}
	h.store.Update(sess.ID, func(cr *session.Credentials) {
		*cr = cr.Merge(update)
	})
	sess.Credentials = sess.Credentials.Merge(update)
	klog.V(2).Infof("session %s credentials updated (model key set: %t, repo token set: %t)",
		sess.ID, sess.Credentials.ModelAPIKey != "", sess.Credentials.RepoAPIToken != "")

	data := h.page(sess)
	data.Notice = "Credentials saved for this session."
	c.HTML(http.StatusOK, "index.html", data)
}

func (h *Handler) ClearCredentials(c *gin.Context) {
	sess := currentSession(c)
	h.store.Update(sess.ID, func(cr *session.Credentials) {
		*cr = session.Credentials{}
	})
	sess.Credentials = session.Credentials{}

	data := h.page(sess)
	data.Notice = "Credentials cleared."
	c.HTML(http.StatusOK, "index.html", data)
}

func (h *Handler) Analyze(c *gin.Context) {
	sess := currentSession(c)

	var form analyzeForm
	_ = c.ShouldBind(&form)
	repoURL := strings.TrimSpace(form.RepoURL)

	data := h.page(sess)
	data.RepoURL = repoURL

	res, err := h.analyzer.Run(c.Request.Context(), sess.Credentials, repoURL)
	if err != nil {
		data.Error = userMessage(err)
		c.HTML(statusFor(err), "index.html", data)
		return
	}

	if res.GenerationFault != nil {
		data.Error = res.GenerationFault.UserMessage()
	}
	data.Technologies = res.Technologies.Sorted()
	html, err := h.render(res.Document.Markdown())
	if err != nil {
		klog.Errorf("rendering README for %s: %v", repoURL, err)
		data.Error = "The README could not be displayed."
		c.HTML(http.StatusInternalServerError, "index.html", data)
		return
	}
	data.Document = html
	c.HTML(http.StatusOK, "index.html", data)
}

func (h *Handler) APIReadme(c *gin.Context) {
	var req ReadmeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a repo_url field"})
		return
	}

	creds := currentSession(c).Credentials.Merge(session.Credentials{
		ModelAPIKey:  c.GetHeader(headerModelAPIKey),
		RepoAPIToken: c.GetHeader(headerRepoAPIToken),
	})

	res, err := h.analyzer.Run(c.Request.Context(), creds, strings.TrimSpace(req.RepoURL))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": userMessage(err)})
		return
	}

	c.JSON(http.StatusOK, ReadmeResponse{
		Title:            res.Document.Title,
		Technologies:     res.Technologies.Sorted(),
		Markdown:         res.Document.Markdown(),
		GenerationFailed: res.GenerationFault != nil,
	})
}

func (h *Handler) render(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	// goldmark escapes raw HTML unless WithUnsafe is set.
	return template.HTML(buf.String()), nil
}

// userMessage collapses a fault to the generic text shown to users and
// logs the underlying cause.
func userMessage(err error) string {
	var f *pipeline.Fault
	if !errors.As(err, &f) {
		klog.Errorf("unexpected error: %v", err)
		return "Something went wrong."
	}
	switch f.Kind {
	case pipeline.KindMissingCredentials, pipeline.KindInvalidRepositoryURL:
		klog.V(2).Infof("rejected request: %v", f)
	default:
		klog.Warningf("request failed: %v", f)
	}
	return f.UserMessage()
}

func statusFor(err error) int {
	var f *pipeline.Fault
	if !errors.As(err, &f) {
		return http.StatusInternalServerError
	}
	switch f.Kind {
	case pipeline.KindMissingCredentials:
		return http.StatusUnauthorized
	case pipeline.KindInvalidRepositoryURL:
		return http.StatusBadRequest
	case pipeline.KindRepositoryAccess:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
