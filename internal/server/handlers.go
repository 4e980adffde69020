package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/db"
	"github.com/udisondev/craftplan/internal/plan"
	"github.com/udisondev/craftplan/internal/resolver"
)

var errStorageDisabled = errors.New("plan storage is disabled")

type planRequest struct {
	Steps       []plan.Step `json:"steps" binding:"required"`
	RiskTiers   []string    `json:"risk_tiers"`
	BudgetTiers []string    `json:"budget_tiers"`
	Save        bool        `json:"save"`
}

type annotateRequest struct {
	Steps []plan.Step `json:"steps" binding:"required"`
}

type matchResponse struct {
	Dataset       data.Dataset           `json:"dataset"`
	ReferenceType resolver.ReferenceType `json:"reference_type"`
	Entry         data.Entry             `json:"entry"`
	Score         float64                `json:"score"`
}

type datasetResponse struct {
	Dataset       data.Dataset           `json:"dataset"`
	ReferenceType resolver.ReferenceType `json:"reference_type"`
	Entries       int                    `json:"entries"`
}

type spawnWeightsResponse struct {
	Mod       string `json:"mod"`
	Spawnable bool   `json:"spawnable"`
	data.SpawnWeightBreakdown
}

// BuildPlan handles POST /plans.
func (s *Server) BuildPlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Save && s.store == nil {
		respondError(c, http.StatusServiceUnavailable, errStorageDisabled)
		return
	}

	if err := plan.ValidateSteps(req.Steps); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	risks, budgets, err := plan.ParseTiers(req.RiskTiers, req.BudgetTiers)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	res, ok := s.currentResolver(c)
	if !ok {
		return
	}
	p, err := plan.NewBuilder(res, s.planCfg).Build(req.Steps, risks, budgets)
	if err != nil {
		respondError(c, statusOf(err), err)
		return
	}

	if !req.Save {
		c.JSON(http.StatusOK, p)
		return
	}
	if err := s.store.Save(c.Request.Context(), p); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Location", "/api/v1/plans/"+p.ID.String())
	c.JSON(http.StatusCreated, p)
}

// GetPlan handles GET /plans/:id.
func (s *Server) GetPlan(c *gin.Context) {
	if s.store == nil {
		respondError(c, http.StatusNotFound, errStorageDisabled)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	p, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, statusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListPlans handles GET /plans?limit=.
func (s *Server) ListPlans(c *gin.Context) {
	if s.store == nil {
		respondError(c, http.StatusServiceUnavailable, errStorageDisabled)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		respondError(c, http.StatusBadRequest, errors.New("limit must be a positive integer"))
		return
	}

	list, err := s.store.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": list})
}

// Annotate handles POST /annotate.
func (s *Server) Annotate(c *gin.Context) {
	var req annotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := plan.ValidateSteps(req.Steps); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	res, ok := s.currentResolver(c)
	if !ok {
		return
	}

	a := plan.NewAnnotator(res, s.planCfg.MinConfidence, s.planCfg.MaxAnnotations)
	c.JSON(http.StatusOK, gin.H{"steps": a.AnnotateSteps(req.Steps)})
}

// GetReference handles GET /references/:type/:id.
func (s *Server) GetReference(c *gin.Context) {
	refType, err := resolver.ParseReferenceType(c.Param("type"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	res, ok := s.currentResolver(c)
	if !ok {
		return
	}

	e, err := res.Resolve(refType, c.Param("id"))
	if err != nil {
		respondError(c, statusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, matchResponse{
		Dataset:       e.Dataset(),
		ReferenceType: refType,
		Entry:         e,
		Score:         1,
	})
}

// Search handles GET /search?q=&min=.
func (s *Server) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		respondError(c, http.StatusBadRequest, errors.New("query parameter q is required"))
		return
	}
	minConfidence := s.planCfg.MinConfidence
	if v := c.Query("min"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			respondError(c, http.StatusBadRequest, errors.New("min must be a number in [0, 1]"))
			return
		}
		minConfidence = f
	}
	res, ok := s.currentResolver(c)
	if !ok {
		return
	}

	matches := res.ResolveFreeText(q, minConfidence)
	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchResponse{
			Dataset:       m.Entry.Dataset(),
			ReferenceType: resolver.ReferenceTypeOf(m.Entry.Dataset()),
			Entry:         m.Entry,
			Score:         m.Score,
		})
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "matches": out})
}

// AnalyseMod handles GET /mods/:id?tags=&influences=.
func (s *Server) AnalyseMod(c *gin.Context) {
	a, ok := s.analyseMod(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a)
}

// SpawnWeights handles GET /mods/:id/spawn-weights?tags=&influences=.
func (s *Server) SpawnWeights(c *gin.Context) {
	a, ok := s.analyseMod(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, spawnWeightsResponse{
		Mod:                  a.Mod.ID,
		Spawnable:            a.Spawnable,
		SpawnWeightBreakdown: a.SpawnWeights,
	})
}

func (s *Server) analyseMod(c *gin.Context) (*resolver.ModAnalysis, bool) {
	res, ok := s.currentResolver(c)
	if !ok {
		return nil, false
	}
	a, err := res.AnalyseMod(c.Param("id"), splitList(c.QueryArray("tags")), splitList(c.QueryArray("influences")))
	if err != nil {
		respondError(c, statusOf(err), err)
		return nil, false
	}
	return a, true
}

// ListDatasets handles GET /datasets.
func (s *Server) ListDatasets(c *gin.Context) {
	snap, err := s.registry.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, datasetsBody(snap))
}

// ReloadDatasets handles POST /datasets/reload. A failed reload keeps the
// previous snapshot serving.
func (s *Server) ReloadDatasets(c *gin.Context) {
	changed, err := s.registry.Reload(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	snap, err := s.registry.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	body := datasetsBody(snap)
	body["changed"] = changed
	c.JSON(http.StatusOK, body)
}

func datasetsBody(snap *resolver.Snapshot) gin.H {
	list := make([]datasetResponse, 0, len(data.Datasets))
	for _, ds := range snap.Datasets() {
		idx, _ := snap.Index(ds)
		list = append(list, datasetResponse{
			Dataset:       ds,
			ReferenceType: resolver.ReferenceTypeOf(ds),
			Entries:       idx.Len(),
		})
	}
	return gin.H{
		"datasets":  list,
		"loaded_at": snap.LoadedAt().UTC().Format(time.RFC3339),
	}
}

// currentResolver returns a resolver over the current snapshot. On failure the
// response is already written.
func (s *Server) currentResolver(c *gin.Context) (*resolver.Resolver, bool) {
	snap, err := s.registry.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return nil, false
	}
	return resolver.New(snap, s.resOpts), true
}

func statusOf(err error) int {
	var unknown *resolver.UnknownReferenceTypeError
	var notLoaded *resolver.DatasetNotLoadedError
	switch {
	case errors.As(err, &unknown), errors.Is(err, plan.ErrInvalidTier):
		return http.StatusBadRequest
	case errors.As(err, &notLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, resolver.ErrNotFound), errors.Is(err, db.ErrPlanNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, status int, err error) {
	body := gin.H{"error": err.Error()}
	var notLoaded *resolver.DatasetNotLoadedError
	if errors.As(err, &notLoaded) {
		body["dataset"] = notLoaded.Dataset
		body["hint"] = notLoaded.Hint
	}
	c.AbortWithStatusJSON(status, body)
}

// splitList flattens repeated and comma-separated query values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
