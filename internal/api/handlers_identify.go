package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sydlexius/albumlink/internal/detect"
	"github.com/sydlexius/albumlink/internal/identify"
	"github.com/sydlexius/albumlink/internal/page"
	"github.com/sydlexius/albumlink/internal/resolve"
)

// pageRequest names a page to fetch, or supplies its HTML directly. With
// HTML, URL only provides the host for site rules.
type pageRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

type searchRequest struct {
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Query  string `json:"query"`
}

type detectResponse struct {
	Candidate *detect.Candidate `json:"candidate"`
}

func (r *Router) handleDetect(w http.ResponseWriter, req *http.Request) {
	var body pageRequest
	if !r.decodePageRequest(w, req, &body) {
		return
	}

	if body.HTML != "" {
		doc, err := page.ParseString(body.HTML, body.URL)
		if err != nil {
			writeError(w, req, http.StatusBadRequest, "unparseable html")
			return
		}
		writeJSON(w, http.StatusOK, detectResponse{Candidate: r.identifier.DetectPage(doc)})
		return
	}

	c, err := r.identifier.Detect(req.Context(), body.URL)
	if err != nil {
		r.writeFetchError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, detectResponse{Candidate: c})
}

func (r *Router) handleIdentify(w http.ResponseWriter, req *http.Request) {
	var body pageRequest
	if !r.decodePageRequest(w, req, &body) {
		return
	}

	var out *identify.Outcome
	if body.HTML != "" {
		doc, err := page.ParseString(body.HTML, body.URL)
		if err != nil {
			writeError(w, req, http.StatusBadRequest, "unparseable html")
			return
		}
		out = r.identifier.IdentifyPage(req.Context(), doc)
		out.URL = body.URL
	} else {
		var err error
		out, err = r.identifier.IdentifyURL(req.Context(), body.URL)
		if err != nil {
			r.writeFetchError(w, req, err)
			return
		}
	}

	// A page with no detectable album is a successful answer, not an error.
	status := http.StatusOK
	if out.Candidate != nil && out.Match == nil {
		status = outcomeStatus(out)
	}
	writeJSON(w, status, out)
}

func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) {
	var body searchRequest
	if err := decodeJSON(w, req, &body); err != nil {
		writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	var out *identify.Outcome
	if strings.TrimSpace(body.Query) != "" {
		out = r.identifier.SearchQuery(req.Context(), body.Query)
	} else {
		out = r.identifier.Search(req.Context(), body.Artist, body.Album)
	}
	writeJSON(w, outcomeStatus(out), out)
}

func (r *Router) decodePageRequest(w http.ResponseWriter, req *http.Request, body *pageRequest) bool {
	if err := decodeJSON(w, req, body); err != nil {
		writeError(w, req, http.StatusBadRequest, err.Error())
		return false
	}
	if body.URL == "" && body.HTML == "" {
		writeError(w, req, http.StatusBadRequest, "url or html is required")
		return false
	}
	return true
}

func (r *Router) writeFetchError(w http.ResponseWriter, req *http.Request, err error) {
	if errors.Is(err, page.ErrInvalidURL) {
		writeError(w, req, http.StatusBadRequest, "url must be an absolute http or https URL")
		return
	}
	if errors.Is(err, page.ErrBlockedAddress) {
		writeError(w, req, http.StatusBadRequest, "url must point to a public host")
		return
	}
	r.logger.Warn("page fetch failed", slog.String("error", err.Error()))
	writeError(w, req, http.StatusBadGateway, err.Error())
}

// outcomeStatus maps a resolve failure kind to an HTTP status.
func outcomeStatus(out *identify.Outcome) int {
	switch out.ErrorKind {
	case "":
		return http.StatusOK
	case resolve.KindInputEmpty:
		return http.StatusBadRequest
	case resolve.KindNoResults:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
