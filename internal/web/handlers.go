package web

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/bbernhard/leaf-playground/internal/submission"
	"github.com/bbernhard/leaf-playground/internal/upload"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type fileView struct {
	Name       string `json:"name"`
	MediaType  string `json:"media_type"`
	PreviewURL string `json:"preview_url"`
}

type scoreView struct {
	Label   string
	Percent string
}

type resultView struct {
	TopLabel      string
	Confidence    string
	Scores        []scoreView
	ImageLocation string
}

type pageView struct {
	SessionID string
	File      *fileView
	Kind      string
	Result    *resultView
	Message   string
}

type stateView struct {
	SessionID string           `json:"session_id"`
	File      *fileView        `json:"file,omitempty"`
	State     submission.State `json:"state"`
}

func previewURL(sessionID string, file *upload.SelectedFile) string {
	return "/s/" + sessionID + "/preview/" + file.ID
}

func newFileView(session *submission.Session) *fileView {
	if session.File == nil {
		return nil
	}
	return &fileView{
		Name:       session.File.Name,
		MediaType:  session.File.MediaType,
		PreviewURL: previewURL(session.ID, session.File),
	}
}

func newPageView(session *submission.Session) pageView {
	state := session.State()
	view := pageView{
		SessionID: session.ID,
		File:      newFileView(session),
		Kind:      state.Kind().String(),
	}

	if result, ok := state.Result(); ok {
		rv := &resultView{
			TopLabel:      result.TopLabel,
			Confidence:    submission.Percent(result.Confidence),
			ImageLocation: result.ResultImageLocation,
		}
		for _, score := range submission.SortedScores(result.PerClassScores) {
			rv.Scores = append(rv.Scores, scoreView{Label: score.Label, Percent: submission.Percent(score.Score)})
		}
		view.Result = rv
	}
	if msg, ok := state.Message(); ok {
		view.Message = msg
	}
	return view
}

func (s *Server) newPage(c *gin.Context) {
	session, err := s.controller.NewSession(c.Request.Context())
	if err != nil {
		log.Error("[Web] Couldn't create session: ", err.Error())
		c.String(http.StatusInternalServerError, "Couldn't create session - please try again later")
		return
	}
	c.Redirect(http.StatusSeeOther, "/s/"+session.ID)
}

// loadSession writes the error response itself and returns nil on failure.
func (s *Server) loadSession(c *gin.Context) *submission.Session {
	session, err := s.controller.Session(c.Request.Context(), c.Param("sid"))
	if err == nil {
		return session
	}
	if errors.Cause(err) == submission.ErrSessionNotFound {
		c.String(http.StatusNotFound, "Session not found")
		return nil
	}
	log.Error("[Web] Couldn't load session: ", err.Error())
	c.String(http.StatusInternalServerError, "Couldn't load session - please try again later")
	return nil
}

func (s *Server) showPage(c *gin.Context) {
	session := s.loadSession(c)
	if session == nil {
		return
	}
	c.HTML(http.StatusOK, "index.html", newPageView(session))
}

func (s *Server) selectFile(c *gin.Context) {
	session := s.loadSession(c)
	if session == nil {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		log.Debug("[Web] Couldn't parse upload: ", err.Error())
		c.Redirect(http.StatusSeeOther, "/s/"+session.ID)
		return
	}

	candidates, err := readCandidates(form.File[submission.FileField])
	if err != nil {
		log.Debug("[Web] Couldn't read upload: ", err.Error())
		c.Redirect(http.StatusSeeOther, "/s/"+session.ID)
		return
	}

	if _, err := s.surface.Drop(c.Request.Context(), session.ID, candidates); err != nil && !upload.IsRejection(err) {
		log.Error("[Web] Couldn't select file: ", err.Error())
		c.String(http.StatusInternalServerError, "Couldn't select file - please try again later")
		return
	}
	c.Redirect(http.StatusSeeOther, "/s/"+session.ID)
}

func readCandidates(headers []*multipart.FileHeader) ([]upload.Candidate, error) {
	candidates := make([]upload.Candidate, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, upload.Candidate{Name: header.Filename, Data: data})
	}
	return candidates, nil
}

func (s *Server) submit(c *gin.Context) {
	sessionID := c.Param("sid")

	//the submission outlives a browser that stops waiting
	ctx := context.WithoutCancel(c.Request.Context())
	if _, err := s.controller.Submit(ctx, sessionID); err != nil {
		if errors.Cause(err) == submission.ErrSessionNotFound {
			c.String(http.StatusNotFound, "Session not found")
			return
		}
		log.Error("[Web] Couldn't submit: ", err.Error())
		c.String(http.StatusInternalServerError, "Couldn't submit - please try again later")
		return
	}
	c.Redirect(http.StatusSeeOther, "/s/"+sessionID)
}

func (s *Server) state(c *gin.Context) {
	setCORSHeaders(c)

	session := s.loadSession(c)
	if session == nil {
		return
	}
	c.JSON(http.StatusOK, stateView{
		SessionID: session.ID,
		File:      newFileView(session),
		State:     session.State(),
	})
}

// preview serves the thumbnail of the current selection. Once the file is
// replaced its preview URL no longer resolves.
func (s *Server) preview(c *gin.Context) {
	session := s.loadSession(c)
	if session == nil {
		return
	}

	file := session.File
	if file == nil || file.ID != c.Param("fid") {
		c.String(http.StatusNotFound, "Preview not found")
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	thumb, err := upload.Preview(file)
	if err != nil {
		log.Debug("[Web] Serving original for preview: ", err.Error())
		c.Data(http.StatusOK, file.MediaType, file.Data)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", thumb)
}
