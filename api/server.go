// Package api exposes the engine over HTTP with gin. The interactive session
// endpoints mirror the asynchronous search surface: submitting a search
// returns immediately, results and pages are polled separately.
package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nutrifind/go-food-search/config"
	apperrors "github.com/nutrifind/go-food-search/internal/errors"
	"github.com/nutrifind/go-food-search/internal/search"
	"github.com/nutrifind/go-food-search/model"
	"github.com/nutrifind/go-food-search/services"
	"github.com/nutrifind/go-food-search/store"
)

// Server bundles the HTTP handlers with their collaborators.
type Server struct {
	cfg     *config.ServerConfig
	engine  *search.Engine
	session *search.Session
	records *store.RecordStore
}

// NewServer creates the HTTP server facade.
func NewServer(cfg *config.ServerConfig, engine *search.Engine, records *store.RecordStore) *Server {
	return &Server{
		cfg:     cfg,
		engine:  engine,
		session: engine.NewSession(),
		records: records,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.POST("/search", s.submitSearch)
	r.GET("/search/result", s.searchResult)
	r.GET("/search/pages/:page", s.loadPage)
	r.POST("/search/compact", s.searchCompact)
	r.POST("/search/keywords", s.searchWithKeywords)

	r.GET("/diets", s.listDiets)

	r.PUT("/records", s.putRecords)
	r.GET("/records/:id", s.getRecord)
	r.DELETE("/records/:id", s.deleteRecord)

	return r
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// submitSearch accepts a request and kicks off the debounced resolution.
func (s *Server) submitSearch(c *gin.Context) {
	var req services.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid search request: "+err.Error())
		return
	}
	s.session.Search(req)
	c.JSON(http.StatusAccepted, gin.H{"state": s.session.State()})
}

// searchResult returns the last completed result, if any.
func (s *Server) searchResult(c *gin.Context) {
	result, ok := s.session.Result()
	if !ok {
		respondError(c, http.StatusNotFound, "no completed search result")
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": s.session.State(), "result": result})
}

// loadPage resolves one page of the completed result list.
func (s *Server) loadPage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "page must be an integer")
		return
	}
	p, err := s.session.LoadPage(page)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidInput):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, apperrors.ErrNoSnapshot):
			respondError(c, http.StatusNotFound, "no completed search result")
		default:
			respondError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, p)
}

type compactRequest struct {
	Query string           `json:"query"`
	Mode  model.SearchMode `json:"mode"`
	Limit int              `json:"limit"`
}

// searchCompact is the synchronous bulk variant.
func (s *Server) searchCompact(c *gin.Context) {
	var req compactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid compact search request: "+err.Error())
		return
	}
	records := s.engine.SearchCompact(req.Query, req.Mode, req.Limit)
	names := make([]gin.H, len(records))
	for i, rec := range records {
		names[i] = gin.H{"id": rec.ID, "name": rec.Name}
	}
	c.JSON(http.StatusOK, gin.H{"total": len(records), "records": names})
}

type keywordsRequest struct {
	Query             string   `json:"query"`
	Limit             int      `json:"limit"`
	RequiredHeadwords []string `json:"required_headwords"`
}

// searchWithKeywords post-filters results to those containing at least one
// required headword.
func (s *Server) searchWithKeywords(c *gin.Context) {
	var req keywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid keyword search request: "+err.Error())
		return
	}
	ids := s.engine.SearchWithRequiredKeywords(req.Query, req.Limit, req.RequiredHeadwords)
	c.JSON(http.StatusOK, gin.H{"total": len(ids), "ids": ids})
}

// listDiets returns the canonical diet names and the subset the current
// snapshot contains.
func (s *Server) listDiets(c *gin.Context) {
	known, indexed := s.engine.DietNames()
	c.JSON(http.StatusOK, gin.H{"diets": known, "indexed": indexed})
}

// putRecords bulk-upserts records, rebuilds the snapshot and persists the
// store.
func (s *Server) putRecords(c *gin.Context) {
	var records []model.FullRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		respondError(c, http.StatusBadRequest, "invalid records payload: "+err.Error())
		return
	}
	if len(records) == 0 {
		respondError(c, http.StatusBadRequest, "no records provided")
		return
	}

	s.records.Put(records...)
	snap := s.engine.Rebuild(s.records.All())
	if err := s.records.Save(s.storePath()); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to persist records: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stored":           len(records),
		"total":            s.records.Len(),
		"snapshot_version": snap.Version,
	})
}

// getRecord returns one full record by id.
func (s *Server) getRecord(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "id must be an unsigned integer")
		return
	}
	rec, err := s.records.Get(uint32(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, rec)
}

// deleteRecord removes a record and rebuilds the snapshot.
func (s *Server) deleteRecord(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "id must be an unsigned integer")
		return
	}
	s.records.Delete(uint32(id))
	s.engine.Rebuild(s.records.All())
	if err := s.records.Save(s.storePath()); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to persist records: "+err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) storePath() string {
	return filepath.Join(s.cfg.DataDir, "records.gob")
}
