package handler

import (
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/BarkinBalci/fall-event-service/docs"
	"github.com/BarkinBalci/fall-event-service/internal/dto"
	"github.com/BarkinBalci/fall-event-service/internal/service"
	"github.com/BarkinBalci/fall-event-service/internal/view"
)

const (
	connected    = "connected"
	disconnected = "disconnected"
)

//go:embed templates/*.html
var templates embed.FS

type Handler struct {
	eventService service.EventServicer
	router       *gin.Engine
	port         string
	log          *zap.Logger
}

// NewHandler creates the HTTP handler. port is advertised to devices by /config and the dashboard.
func NewHandler(eventService service.EventServicer, port string, log *zap.Logger) *Handler {
	h := &Handler{
		eventService: eventService,
		router:       gin.New(),
		port:         port,
		log:          log,
	}

	h.router.Use(requestLogger(log), recovery(log))
	h.router.SetHTMLTemplate(template.Must(template.ParseFS(templates, "templates/*.html")))
	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/", h.dashboard)
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/fall_event", h.fallEvent)
	h.router.GET("/events", h.listEvents)
	h.router.GET("/status", h.status)
	h.router.GET("/config", h.deviceConfig)
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// fallEvent handles POST /fall_event
// @Summary Report a fall event
// @Description Log a fall report from a device. Missing or malformed fields are replaced by defaults.
// @Description An SMS alert is sent when detect is true and type is "real alert".
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.FallEventRequest false "Fall report"
// @Success 200 {object} dto.FallEventResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /fall_event [post]
func (h *Handler) fallEvent(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.log.Warn("Failed to read fall report body", zap.Error(err))
	}

	report, warnings := dto.ParseFallEventReport(body)
	for _, warning := range warnings {
		h.log.Warn("Malformed fall report field",
			zap.String("warning", warning),
			zap.String("device_id", report.DeviceID))
	}

	outcome, err := h.eventService.HandleReport(c.Request.Context(), report)
	if err != nil {
		h.log.Error("Failed to handle fall report",
			zap.Error(err),
			zap.String("device_id", report.DeviceID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.FallEventResponse{
		Status:   "success",
		Message:  "Event logged successfully",
		SMSAlert: string(outcome.SMSSent),
	})
}

// listEvents handles GET /events
// @Summary List recent events
// @Description Return up to 20 events, newest first. id is present only for events read from the primary store.
// @Tags events
// @Produce json
// @Success 200 {array} view.Event
// @Router /events [get]
func (h *Handler) listEvents(c *gin.Context) {
	c.JSON(http.StatusOK, h.eventService.RecentEvents(c.Request.Context()))
}

// status handles GET /status
// @Summary Service status
// @Description Report record count and the availability of the primary store and the SMS provider
// @Tags status
// @Produce json
// @Success 200 {object} dto.StatusResponse
// @Router /status [get]
func (h *Handler) status(c *gin.Context) {
	st := h.eventService.Status(c.Request.Context())

	c.JSON(http.StatusOK, dto.StatusResponse{
		Status:             "online",
		Time:               float64(st.Time.UnixNano()) / 1e9,
		Timezone:           st.Timezone,
		RecordsCount:       st.RecordsCount,
		Database:           st.Backend,
		PrimaryStatus:      availability(st.PrimaryAvailable),
		NotificationStatus: availability(st.NotificationAvailable),
	})
}

// deviceConfig handles GET /config
// @Summary Device configuration
// @Description Tell a device which address to send fall reports to
// @Tags status
// @Produce json
// @Success 200 {object} dto.ConfigResponse
// @Router /config [get]
func (h *Handler) deviceConfig(c *gin.Context) {
	serverIP := requestHost(c.Request)

	c.JSON(http.StatusOK, dto.ConfigResponse{
		ServerIP:    serverIP,
		APIEndpoint: h.endpoint(serverIP),
	})
}

// dashboardData feeds templates/dashboard.html
type dashboardData struct {
	Endpoint string
	Status   service.Status
	Events   []view.Event
}

func (h *Handler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	c.HTML(http.StatusOK, "dashboard.html", dashboardData{
		Endpoint: h.endpoint(requestHost(c.Request)),
		Status:   h.eventService.Status(ctx),
		Events:   h.eventService.RecentEvents(ctx),
	})
}

func (h *Handler) endpoint(serverIP string) string {
	return fmt.Sprintf("http://%s/fall_event", net.JoinHostPort(serverIP, h.port))
}

// requestHost returns the host the client addressed, without the port
func requestHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		host = r.Host
	}
	return strings.Trim(host, "[]")
}

func availability(ok bool) string {
	if ok {
		return connected
	}
	return disconnected
}
