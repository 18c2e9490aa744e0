package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"parkcore/internal/core"
)

// Handlers serves the park routes on top of a core.Service.
type Handlers struct {
	svc    *core.Service
	logger *slog.Logger
}

// NewHandlers constructs handlers. A nil logger uses slog.Default.
func NewHandlers(svc *core.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, logger: logger}
}

func (h *Handlers) requestLogger(c *gin.Context, handler string) *slog.Logger {
	return h.logger.With("request_id", requestID(c), "handler", handler)
}

// HandleCreateZone handles POST /zones.
func (h *Handlers) HandleCreateZone(c *gin.Context) {
	logger := h.requestLogger(c, "HandleCreateZone")
	var req CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, logger, err)
		return
	}
	zone, _, err := h.svc.CreateZone(c.Request.Context(), req.Name, req.IsOpen)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	logger.Info("zone created", "zone", zone.Name, "open", zone.IsOpen)
	c.JSON(http.StatusCreated, toZoneDTO(zone, h.svc.Clock().Now()))
}

// HandleListZones handles GET /zones.
func (h *Handlers) HandleListZones(c *gin.Context) {
	logger := h.requestLogger(c, "HandleListZones")
	zones, err := h.svc.ListZones(c.Request.Context())
	if err != nil {
		writeError(c, logger, err)
		return
	}
	now := h.svc.Clock().Now()
	out := make([]ZoneDTO, 0, len(zones))
	for _, z := range zones {
		out = append(out, toZoneDTO(z, now))
	}
	c.JSON(http.StatusOK, out)
}

// HandleGetZone handles GET /zones/:name.
func (h *Handlers) HandleGetZone(c *gin.Context) {
	logger := h.requestLogger(c, "HandleGetZone")
	zone, err := h.svc.GetZone(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, toZoneDTO(zone, h.svc.Clock().Now()))
}

// HandleToggleZone handles PATCH /zones/:name/toggle.
func (h *Handlers) HandleToggleZone(c *gin.Context) {
	logger := h.requestLogger(c, "HandleToggleZone")
	zone, _, err := h.svc.ToggleZoneStatus(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	logger.Info("zone toggled", "zone", zone.Name, "open", zone.IsOpen)
	c.JSON(http.StatusOK, toZoneDTO(zone, h.svc.Clock().Now()))
}

// HandleListDinosaurs handles GET /zones/:name/dinosaurs.
func (h *Handlers) HandleListDinosaurs(c *gin.Context) {
	logger := h.requestLogger(c, "HandleListDinosaurs")
	dinosaurs, err := h.svc.ListDinosaurs(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, toDinosaurDTOs(dinosaurs, h.svc.Clock().Now()))
}

// HandleAdmitDinosaur handles POST /zones/:name/dinosaurs.
func (h *Handlers) HandleAdmitDinosaur(c *gin.Context) {
	logger := h.requestLogger(c, "HandleAdmitDinosaur")
	var req AdmitDinosaurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, logger, err)
		return
	}
	zoneName := c.Param("name")
	d, _, err := h.svc.AdmitDinosaur(c.Request.Context(), zoneName, core.DinosaurSpec{
		Name:    req.Name,
		Species: req.Species,
		IsSick:  req.IsSick,
	})
	if err != nil {
		writeError(c, logger, err)
		return
	}
	logger.Info("dinosaur admitted", "dinosaur", d.Name, "species", d.Species, "zone", zoneName)
	dto := toDinosaurDTO(d, h.svc.Clock().Now())
	dto.Zone = zoneName
	c.JSON(http.StatusCreated, dto)
}

// HandleRemoveDinosaur handles DELETE /zones/:name/dinosaurs/:dino.
func (h *Handlers) HandleRemoveDinosaur(c *gin.Context) {
	logger := h.requestLogger(c, "HandleRemoveDinosaur")
	d, _, err := h.svc.RemoveDinosaur(c.Request.Context(), c.Param("name"), c.Param("dino"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	logger.Info("dinosaur removed", "dinosaur", d.Name, "zone", c.Param("name"))
	c.JSON(http.StatusOK, toDinosaurDTO(d, h.svc.Clock().Now()))
}

// HandleMoveDinosaur handles POST /dinosaurs/move.
func (h *Handlers) HandleMoveDinosaur(c *gin.Context) {
	logger := h.requestLogger(c, "HandleMoveDinosaur")
	var req MoveDinosaurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, logger, err)
		return
	}
	d, _, err := h.svc.MoveDinosaur(c.Request.Context(), req.FromZoneName, req.ToZoneName, req.DinosaurName)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	logger.Info("dinosaur moved", "dinosaur", d.Name, "from", req.FromZoneName, "to", req.ToZoneName)
	dto := toDinosaurDTO(d, h.svc.Clock().Now())
	dto.Zone = req.ToZoneName
	c.JSON(http.StatusOK, dto)
}

// HandleFeedDinosaur handles POST /dinosaurs/:dino/feed.
func (h *Handlers) HandleFeedDinosaur(c *gin.Context) {
	logger := h.requestLogger(c, "HandleFeedDinosaur")
	d, _, err := h.svc.FeedDinosaur(c.Request.Context(), c.Param("dino"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, toDinosaurDTO(d, h.svc.Clock().Now()))
}

// HandleSetHealth handles PATCH /dinosaurs/:dino/health.
func (h *Handlers) HandleSetHealth(c *gin.Context) {
	logger := h.requestLogger(c, "HandleSetHealth")
	var req SetHealthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, logger, err)
		return
	}
	d, _, err := h.svc.SetDinosaurHealth(c.Request.Context(), c.Param("dino"), *req.IsSick)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	logger.Info("dinosaur health updated", "dinosaur", d.Name, "sick", d.IsSick)
	c.JSON(http.StatusOK, toDinosaurDTO(d, h.svc.Clock().Now()))
}

// HandleGetDinosaur handles GET /dinosaurs/:dino.
func (h *Handlers) HandleGetDinosaur(c *gin.Context) {
	logger := h.requestLogger(c, "HandleGetDinosaur")
	d, zone, err := h.svc.FindDinosaur(c.Request.Context(), c.Param("dino"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	dto := toDinosaurDTO(d, h.svc.Clock().Now())
	dto.Zone = zone
	c.JSON(http.StatusOK, dto)
}

// HandleCompatibility handles POST /species/compatibility.
func (h *Handlers) HandleCompatibility(c *gin.Context) {
	logger := h.requestLogger(c, "HandleCompatibility")
	var req CompatibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, logger, err)
		return
	}
	ok, err := h.svc.CanSpeciesCoexist(c.Request.Context(), req.Species1, req.Species2)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, CompatibilityResponse{Species1: req.Species1, Species2: req.Species2, Compatible: ok})
}

// HandleListSpecies handles GET /species.
func (h *Handlers) HandleListSpecies(c *gin.Context) {
	species := h.svc.Species()
	out := make([]SpeciesDTO, 0, len(species))
	for _, s := range species {
		out = append(out, SpeciesDTO{Name: s.Name, Diet: string(s.Diet), CompatibilityWeight: s.CompatibilityWeight})
	}
	c.JSON(http.StatusOK, out)
}

// HandleStatus handles GET /status.
func (h *Handlers) HandleStatus(c *gin.Context) {
	logger := h.requestLogger(c, "HandleStatus")
	status, err := h.svc.ParkStatus(c.Request.Context())
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, toParkStatusDTO(status))
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleReady handles GET /readyz. The store must answer a read.
func (h *Handlers) HandleReady(c *gin.Context) {
	if _, err := h.svc.ParkStatus(c.Request.Context()); err != nil {
		h.requestLogger(c, "HandleReady").Warn("store not ready", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "store not ready", Code: CodeUnavailable})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
