package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/metadata"
	"github.com/metastore-labs/metasync/pkg/urn"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ready(c *gin.Context) {
	if _, err := s.records.Count(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) listKinds(c *gin.Context) {
	counts, err := s.records.Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	kinds := make([]gin.H, 0, len(metadata.Kinds()))
	for _, kind := range metadata.Kinds() {
		kinds = append(kinds, gin.H{"kind": kind, "records": counts[kind]})
	}
	c.JSON(http.StatusOK, gin.H{"kinds": kinds})
}

func (s *Server) listRecords(c *gin.Context) {
	ctx := c.Request.Context()

	if kindParam := c.Query("kind"); kindParam != "" {
		kind, err := metadata.ParseKind(kindParam)
		if err != nil {
			respondError(c, err)
			return
		}
		records, err := s.records.ListByKind(ctx, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
		return
	}

	records, err := s.records.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

type recordRequest struct {
	Kind       string                       `json:"kind" binding:"required"`
	Name       string                       `json:"name" binding:"required"`
	URN        string                       `json:"urn"`
	Connection string                       `json:"connection"`
	Aspects    map[string]metadata.Document `json:"aspects"`
}

func (s *Server) createRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := metadata.ParseKind(req.Kind)
	if err != nil {
		respondError(c, err)
		return
	}

	entityURN := req.URN
	if entityURN == "" {
		entityURN = urn.Generate(kind, req.Name, s.opts.Mutation)
	}
	entity := metadata.NewEntity(entityURN, kind, req.Name)
	entity.Aspects = req.Aspects

	record, err := s.records.Save(c.Request.Context(), entity, metadata.StatusLocalOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Connection != "" {
		if err := s.records.SetConnection(c.Request.Context(), record.URN, req.Connection); err != nil {
			respondError(c, err)
			return
		}
		record.Connection = req.Connection
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) getRecord(c *gin.Context) {
	record, err := s.records.Get(c.Request.Context(), c.Param("urn"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type updateRequest struct {
	Name    string                       `json:"name"`
	Aspects map[string]metadata.Document `json:"aspects" binding:"required"`
}

func (s *Server) updateRecord(c *gin.Context) {
	ctx := c.Request.Context()

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := s.records.Get(ctx, c.Param("urn"))
	if err != nil {
		respondError(c, err)
		return
	}

	entity, err := existing.Entity()
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Name != "" {
		entity.Name = req.Name
	}
	entity.Aspects = req.Aspects

	// Editing a synced record marks it drifted until the next push.
	status := existing.Status()
	if status == metadata.StatusSynced {
		status = metadata.StatusModified
	}

	record, err := s.records.Save(ctx, entity, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) deleteRecord(c *gin.Context) {
	if err := s.records.Delete(c.Request.Context(), c.Param("urn")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) diff(c *gin.Context) {
	diff, err := s.sync.Diff(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	kinds := make(gin.H, len(diff.Kinds))
	for kind, result := range diff.Kinds {
		body := gin.H{
			"summary":         result.Summary(),
			"classifications": result.Classifications,
		}
		if result.Degraded() {
			body["error"] = result.Err.Error()
		}
		kinds[string(kind)] = body
	}
	c.JSON(http.StatusOK, gin.H{"degraded": diff.Degraded(), "kinds": kinds})
}

func (s *Server) pull(c *gin.Context) {
	result, err := s.sync.Pull(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": result.Total(), "counts": result.Counts})
}

func (s *Server) push(c *gin.Context) {
	result, err := s.sync.Push(c.Request.Context())
	if err != nil && result == nil {
		respondError(c, err)
		return
	}

	body := gin.H{"dry_run": false, "summary": "", "failed": []string{}}
	if result != nil {
		body = gin.H{
			"dry_run": result.DryRun,
			"summary": result.Summary(),
			"failed":  result.FailedURNs(),
		}
	}
	// Partial failure still returns the per-item outcomes.
	if err != nil {
		body["error"] = err.Error()
		c.JSON(http.StatusBadGateway, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

// respondError maps typed errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.IsConnectivity(err):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
