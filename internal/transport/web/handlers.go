package web

import (
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/curebird/backend/internal/service/persona"
	"github.com/curebird/backend/pkg/log"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "curebird-backend"})
}

func (s *Server) handleDiseaseTrends(c *gin.Context) {
	trends, err := s.deps.Trends.Trends(c.Request.Context())
	if err != nil {
		// The trends service degrades internally; an error here is truly
		// exceptional.
		log.FromCtx(c.Request.Context()).Error().Err(err).Msg("trend lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch disease trends"})
		return
	}
	c.JSON(http.StatusOK, trends)
}

func (s *Server) handleResourceDistribution(c *gin.Context) {
	data, err := os.ReadFile(s.deps.ResourceDistributionPath)
	if err != nil {
		log.FromCtx(c.Request.Context()).Error().Err(err).Msg("resource distribution file unavailable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Data unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) handleMedicines(c *gin.Context) {
	disease := strings.TrimSpace(c.Query("disease"))
	if disease == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "disease parameter is required"})
		return
	}

	names := s.deps.Medicines.Lookup(c.Request.Context(), disease)
	c.JSON(http.StatusOK, gin.H{
		"disease":   disease,
		"medicines": names,
	})
}

// readUpload pulls the multipart "file" part into memory along with its
// declared content type.
func readUpload(c *gin.Context) ([]byte, string, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return nil, "", false
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return nil, "", false
	}

	return data, header.Header.Get("Content-Type"), true
}

func (s *Server) handleAnalyzeReport(c *gin.Context) {
	image, mimeType, ok := readUpload(c)
	if !ok {
		return
	}

	analysis := s.deps.Analyzer.Analyze(c.Request.Context(), image, mimeType)
	c.JSON(http.StatusOK, gin.H{
		"raw_text": "Extracted via VLM",
		"analysis": analysis,
	})
}

func (s *Server) handleAnalyzerProcess(c *gin.Context) {
	image, mimeType, ok := readUpload(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, s.deps.Analyzer.Process(c.Request.Context(), image, mimeType))
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

func (s *Server) handleAssistantChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "message is required",
		})
		return
	}

	c.JSON(http.StatusOK, s.deps.Assistant.Generate(c.Request.Context(), req.ConversationID, req.Message))
}

// riskLevel buckets an outbreak count the way the dashboard expects.
func riskLevel(cases int64) string {
	switch {
	case cases > 100000:
		return "High"
	case cases > 10000:
		return "Medium"
	default:
		return "Low"
	}
}

func (s *Server) handleAssistantContext(c *gin.Context) {
	trends, err := s.deps.Trends.Trends(c.Request.Context())
	if err != nil || len(trends) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   "No disease data available",
		})
		return
	}

	if len(trends) > 10 {
		trends = trends[:10]
	}
	items := make([]gin.H, 0, len(trends))
	for _, t := range trends {
		items = append(items, gin.H{
			"name":       t.Disease,
			"cases":      t.Outbreaks,
			"risk_level": riskLevel(t.Outbreaks),
			"year":       t.Year,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"diseases":     items,
		"last_updated": "Recently",
	})
}

type clearRequest struct {
	ConversationID string `json:"conversation_id"`
}

func (s *Server) handleAssistantClear(c *gin.Context) {
	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ConversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "conversation_id is required",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": s.deps.Assistant.Clear(req.ConversationID)})
}

type patientReplyRequest struct {
	History []persona.HistoryItem  `json:"history"`
	Patient persona.PatientContext `json:"patientContext"`
}

func (s *Server) handlePatientReply(c *gin.Context) {
	var req patientReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply": s.deps.Persona.Reply(c.Request.Context(), req.History, req.Patient),
	})
}
