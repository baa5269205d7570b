package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ethoscope/internal/agreement"
	"ethoscope/internal/consensus"
	"ethoscope/internal/friction"
	"ethoscope/internal/llm"
	"ethoscope/internal/review"
)

func (s *Server) handleModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": s.engine.Registry().Models()})
}

type analyzeRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	APIKey string `json:"api_key"`
}

// analyzeResponse carries the original exchange plus every derived report.
type analyzeResponse struct {
	Prompt          string               `json:"prompt"`
	Model           string               `json:"model"`
	InitialResponse string               `json:"initial_response"`
	EthicalAnalysis string               `json:"ethical_analysis"`
	Summary         string               `json:"summary"`
	Scores          review.EthicalScores `json:"scores"`
	Alignment       any                  `json:"alignment"`
	Transparency    any                  `json:"transparency"`
	AIWelfare       any                  `json:"ai_welfare"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data received"})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No prompt provided"})
		return
	}
	if _, ok := s.engine.Registry().Lookup(req.Model); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid model selected. Use /api/models to get valid models"})
		return
	}

	s.promptLog.Record(req.Prompt, req.Model)

	exchange, err := s.engine.Run(c.Request.Context(), req.Prompt, req.Model, req.APIKey, s.ontology())
	if err != nil {
		s.metrics.AnalysesTotal.WithLabelValues(req.Model, "error").Inc()
		s.log.Error("analysis failed", zap.String("model", req.Model), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error processing request: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.buildReport(exchange))
}

// buildReport parses an exchange and derives every analyzer's view of it.
func (s *Server) buildReport(ex llm.Exchange) analyzeResponse {
	summary, scores := s.parser.Parse(ex.EthicalAnalysis)
	if scores == nil {
		s.metrics.ParseFallbacks.Inc()
		s.metrics.AnalysesTotal.WithLabelValues(ex.Model, "unparsed").Inc()
	} else {
		s.metrics.AnalysesTotal.WithLabelValues(ex.Model, "ok").Inc()
	}

	welfare, _ := scores.Welfare()
	return analyzeResponse{
		Prompt:          ex.Prompt,
		Model:           ex.Model,
		InitialResponse: ex.InitialResponse,
		EthicalAnalysis: ex.EthicalAnalysis,
		Summary:         summary,
		Scores:          scores,
		Alignment:       s.detector.Analyze(ex.Prompt, ex.InitialResponse, scores),
		Transparency:    s.transparency.Explain(welfare),
		AIWelfare:       s.friction.Measure(ex.Prompt, ex.InitialResponse, welfare),
	}
}

type compareRequest struct {
	Prompt string   `json:"prompt"`
	Models []string `json:"models"`
	APIKey string   `json:"api_key"`
}

type compareResponse struct {
	Prompt            string                     `json:"prompt"`
	Results           []analyzeResponse          `json:"results"`
	Comparison        consensus.PromptComparison `json:"comparison"`
	AlignmentVariance float64                    `json:"alignment_variance"`
}

func (s *Server) handleCompare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data received"})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No prompt provided"})
		return
	}
	if len(req.Models) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No models provided"})
		return
	}
	for _, model := range req.Models {
		if _, ok := s.engine.Registry().Lookup(model); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid model selected. Use /api/models to get valid models"})
			return
		}
		s.promptLog.Record(req.Prompt, model)
	}

	ontology := s.ontology()
	exchanges := make([]llm.Exchange, len(req.Models))
	g, ctx := errgroup.WithContext(c.Request.Context())
	for i, model := range req.Models {
		g.Go(func() error {
			ex, err := s.engine.Run(ctx, req.Prompt, model, req.APIKey, ontology)
			if err != nil {
				return err
			}
			exchanges[i] = ex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("comparison failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error processing request: " + err.Error()})
		return
	}

	results := make([]analyzeResponse, 0, len(exchanges))
	responses := make([]consensus.ModelResponse, 0, len(exchanges))
	for _, ex := range exchanges {
		report := s.buildReport(ex)
		results = append(results, report)
		responses = append(responses, consensus.ModelResponse{
			ModelName: ex.Model,
			Text:      ex.InitialResponse,
			Scores:    report.Scores,
		})
	}

	comparison, err := s.consensus.CompareForPrompt(req.Prompt, responses)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.metrics.ComparisonsTotal.Inc()

	scored := make([]float64, 0, len(comparison.IndividualAnalyses))
	for _, ia := range comparison.IndividualAnalyses {
		scored = append(scored, ia.AlignmentWithPrompt.AlignmentScore)
	}

	c.JSON(http.StatusOK, compareResponse{
		Prompt:            req.Prompt,
		Results:           results,
		Comparison:        comparison,
		AlignmentVariance: variance(scored),
	})
}

func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}

func (s *Server) handleFrictionTrend(c *gin.Context) {
	window := s.cfg.Friction.TrendWindow
	if raw := c.Query("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window must be a positive integer"})
			return
		}
		window = n
	}
	c.JSON(http.StatusOK, s.friction.Trend(window))
}

func (s *Server) handleFrictionHistory(c *gin.Context) {
	c.JSON(http.StatusOK, s.friction.HistorySummary())
}

func (s *Server) handleFrictionClear(c *gin.Context) {
	s.friction.ClearHistory()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *Server) handleVoluntaryPaths(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"paths": s.friction.IdentifyVoluntaryPaths()})
}

type reframeRequest struct {
	Prompt      string   `json:"prompt"`
	Constraints []string `json:"constraints"`
}

func (s *Server) handleReframe(c *gin.Context) {
	var req reframeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data received"})
		return
	}
	sources := friction.IdentifySources(req.Constraints)
	c.JSON(http.StatusOK, gin.H{
		"friction_sources":       sources,
		"mitigation_suggestions": friction.SuggestReduction(sources),
		"reframing":              friction.SuggestReframing(req.Prompt, sources),
	})
}

type scoresRequest struct {
	Scores review.EthicalScores `json:"scores"`
}

func (s *Server) handleExplain(c *gin.Context) {
	var req scoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data received"})
		return
	}
	welfare, _ := req.Scores.Welfare()
	c.JSON(http.StatusOK, s.transparency.Explain(welfare))
}

func (s *Server) handleNegotiate(c *gin.Context) {
	var req scoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data received"})
		return
	}
	welfare, _ := req.Scores.Welfare()
	c.JSON(http.StatusOK, s.transparency.Negotiate(welfare))
}

type proposeRequest struct {
	Parties          []string              `json:"parties"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	CustomPrinciples []agreement.Principle `json:"custom_principles"`
	IncludeDefaults  *bool                 `json:"include_defaults"`
}

func (s *Server) handleProposeAgreement(c *gin.Context) {
	var req proposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data received"})
		return
	}
	if len(req.Parties) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No parties provided"})
		return
	}

	includeDefaults := true
	if req.IncludeDefaults != nil {
		includeDefaults = *req.IncludeDefaults
	}
	a := s.tracker.Propose(req.Parties, agreement.ProposalOptions{
		Title:            req.Title,
		Description:      req.Description,
		CustomPrinciples: req.CustomPrinciples,
		IncludeDefaults:  includeDefaults,
	})
	c.JSON(http.StatusCreated, a)
}

func (s *Server) handleListAgreements(c *gin.Context) {
	status := agreement.Status(c.Query("status"))
	c.JSON(http.StatusOK, gin.H{"agreements": s.tracker.List(status)})
}

func (s *Server) handleGetAgreement(c *gin.Context) {
	a, err := s.tracker.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleActivateAgreement(c *gin.Context) {
	a, err := s.tracker.Activate(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

type suspendRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleSuspendAgreement(c *gin.Context) {
	var req suspendRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data received"})
		return
	}
	a, err := s.tracker.Suspend(c.Param("id"), req.Reason)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

type complianceRequest struct {
	InteractionSummary string               `json:"interaction_summary"`
	Scores             review.EthicalScores `json:"scores"`
	Notes              string               `json:"notes"`
}

func (s *Server) handleTrackCompliance(c *gin.Context) {
	var req complianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data received"})
		return
	}
	record, err := s.tracker.TrackCompliance(c.Param("id"), req.InteractionSummary, req.Scores, req.Notes)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleAgreementSummary(c *gin.Context) {
	summary, err := s.tracker.Summarize(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleBenefits(c *gin.Context) {
	var req scoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data received"})
		return
	}
	benefits, err := s.tracker.MutualBenefits(req.Scores)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, benefits)
}
