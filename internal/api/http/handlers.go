package http

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/logger"
	"car-rental-adjustments/internal/security"
	"car-rental-adjustments/internal/service"
	"car-rental-adjustments/internal/storage"

	"github.com/gorilla/mux"
)

const (
	maxUploadMemoryBytes  = 8 << 20
	minWaiverReasonLength = 10
)

// Handler exposes the adjustment engine over REST.
type Handler struct {
	returns  service.RentalReturnProcessor
	reporter service.DamageReporter
	assessor service.DamageAssessor
	charger  service.DamageCharger
	disputes service.DamageDisputeResolver
	waivers  service.PenaltyWaiverCoordinator
	files    *storage.LocalStorage
}

func NewHandler(
	returns service.RentalReturnProcessor,
	reporter service.DamageReporter,
	assessor service.DamageAssessor,
	charger service.DamageCharger,
	disputes service.DamageDisputeResolver,
	waivers service.PenaltyWaiverCoordinator,
	files *storage.LocalStorage,
) *Handler {
	return &Handler{
		returns:  returns,
		reporter: reporter,
		assessor: assessor,
		charger:  charger,
		disputes: disputes,
		waivers:  waivers,
		files:    files,
	}
}

// RegisterRoutes mounts all endpoints. Authenticated routes go on a subrouter
// behind the JWT middleware; the file endpoint authenticates with its own URL
// signature instead.
func (h *Handler) RegisterRoutes(r *mux.Router, tokens security.TokenManager) {
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.PathPrefix("/api/v1/files/").HandlerFunc(h.DownloadFile).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	api.HandleFunc("/rentals/{id}/return", h.ProcessReturn).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/penalty/waivers", h.WaivePenalty).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/penalty/waivers", h.GetPenaltyHistory).Methods(http.MethodGet)

	api.HandleFunc("/rentals/{id}/damage-reports", h.CreateDamageReport).Methods(http.MethodPost)
	api.HandleFunc("/damage-reports/{id}", h.GetDamageReport).Methods(http.MethodGet)
	api.HandleFunc("/damage-reports/{id}/assessment/start", h.StartAssessment).Methods(http.MethodPost)
	api.HandleFunc("/damage-reports/{id}/assessment/reopen", h.ReopenAssessment).Methods(http.MethodPost)
	api.HandleFunc("/damage-reports/{id}/assessment", h.AssessDamage).Methods(http.MethodPost)
	api.HandleFunc("/damage-reports/{id}/assessment", h.UpdateAssessment).Methods(http.MethodPut)
	api.HandleFunc("/damage-reports/{id}/charge", h.ChargeDamage).Methods(http.MethodPost)
	api.HandleFunc("/damage-reports/{id}/dispute", h.CreateDispute).Methods(http.MethodPost)
	api.HandleFunc("/damage-reports/{id}/resolve", h.ResolveDispute).Methods(http.MethodPost)

	api.HandleFunc("/damage-reports/{id}/photos", h.AddPhoto).Methods(http.MethodPost)
	api.HandleFunc("/damage-reports/{id}/photos", h.ListPhotos).Methods(http.MethodGet)
	api.HandleFunc("/photos/{id}", h.DeletePhoto).Methods(http.MethodDelete)
}

func pathID(w http.ResponseWriter, r *http.Request) (int32, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeError(w, domain.NewValidationError("invalid id %q", raw))
		return 0, false
	}
	return int32(id), true
}

func (h *Handler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	rentalID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		ReturnTime *time.Time `json:"return_time"`
	}
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}
	returnTime := time.Now()
	if req.ReturnTime != nil {
		returnTime = *req.ReturnTime
	}
	result, err := h.returns.ProcessReturn(r.Context(), actorFrom(r), rentalID, returnTime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) CreateDamageReport(w http.ResponseWriter, r *http.Request) {
	rentalID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Description              string  `json:"description"`
		Location                 string  `json:"location"`
		Category                 string  `json:"category"`
		Severity                 *string `json:"severity"`
		InsuranceCoverage        bool    `json:"insurance_coverage"`
		InsuranceDeductibleCents int64   `json:"insurance_deductible_cents"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	input := service.ReportInput{
		Description:              req.Description,
		Location:                 req.Location,
		Category:                 req.Category,
		InsuranceCoverage:        req.InsuranceCoverage,
		InsuranceDeductibleCents: req.InsuranceDeductibleCents,
	}
	if req.Severity != nil {
		sev := domain.DamageSeverity(*req.Severity)
		input.Severity = &sev
	}
	rep, err := h.reporter.CreateDamageReport(r.Context(), actorFrom(r), rentalID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (h *Handler) GetDamageReport(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(w, r)
	if !ok {
		return
	}
	rep, err := h.reporter.GetDamageReport(r.Context(), actorFrom(r), reportID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) StartAssessment(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(w, r)
	if !ok {
		return
	}
	rep, err := h.assessor.StartAssessment(r.Context(), actorFrom(r), reportID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) ReopenAssessment(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(w, r)
	if !ok {
		return
	}
	rep, err := h.assessor.ReopenAssessment(r.Context(), actorFrom(r), reportID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type assessmentRequest struct {
	Severity                 *string `json:"severity"`
	Category                 string  `json:"category"`
	RepairCostEstimateCents  *int64  `json:"repair_cost_estimate_cents"`
	InsuranceCoverage        bool    `json:"insurance_coverage"`
	InsuranceDeductibleCents int64   `json:"insurance_deductible_cents"`
}

func (req assessmentRequest) toInput() service.AssessmentInput {
	input := service.AssessmentInput{
		Category:                 req.Category,
		RepairCostEstimateCents:  req.RepairCostEstimateCents,
		InsuranceCoverage:        req.InsuranceCoverage,
		InsuranceDeductibleCents: req.InsuranceDeductibleCents,
	}
	if req.Severity != nil {
		sev := domain.DamageSeverity(*req.Severity)
		input.Severity = &sev
	}
	return input
}

func (h *Handler) AssessDamage(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req assessmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rep, err := h.assessor.AssessDamage(r.Context(), actorFrom(r), reportID, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) UpdateAssessment(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req assessmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rep, err := h.assessor.UpdateAssessment(r.Context(), actorFrom(r), reportID, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) ChargeDamage(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(w, r)
	if !ok {
		return
	}
	rep, err := h.charger.ChargeDamage(r.Context(), actorFrom(r), reportID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) CreateDispute(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason   string `json:"reason"`
		Comments string `json:"comments"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	rep, err := h.disputes.CreateDispute(r.Context(), actorFrom(r), reportID, req.Reason, req.Comments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		AdjustedRepairCostCents int64  `json:"adjusted_repair_cost_cents"`
		AdjustedLiabilityCents  int64  `json:"adjusted_liability_cents"`
		Notes                   string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	rep, err := h.disputes.ResolveDispute(r.Context(), actorFrom(r), reportID, req.AdjustedRepairCostCents, req.AdjustedLiabilityCents, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) WaivePenalty(w http.ResponseWriter, r *http.Request) {
	rentalID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		AmountCents *int64 `json:"amount_cents"`
		Reason      string `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(strings.TrimSpace(req.Reason)) < minWaiverReasonLength {
		writeError(w, domain.NewValidationError("waiver reason must be at least %d characters", minWaiverReasonLength))
		return
	}
	var waiver *domain.PenaltyWaiver
	var err error
	if req.AmountCents != nil {
		waiver, err = h.waivers.WaivePartialPenalty(r.Context(), actorFrom(r), rentalID, *req.AmountCents, req.Reason)
	} else {
		waiver, err = h.waivers.WaiveFullPenalty(r.Context(), actorFrom(r), rentalID, req.Reason)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, waiver)
}

func (h *Handler) GetPenaltyHistory(w http.ResponseWriter, r *http.Request) {
	rentalID, ok := pathID(w, r)
	if !ok {
		return
	}
	waivers, err := h.waivers.GetPenaltyHistory(r.Context(), rentalID)
	if err != nil {
		writeError(w, err)
		return
	}
	if waivers == nil {
		waivers = []domain.PenaltyWaiver{}
	}
	writeJSON(w, http.StatusOK, waivers)
}

func (h *Handler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemoryBytes); err != nil {
		writeError(w, domain.NewValidationError("invalid multipart upload: %v", err))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, domain.NewValidationError("photo file is required"))
		return
	}
	defer file.Close()

	photo, err := h.reporter.AddPhoto(r.Context(), actorFrom(r), reportID, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(w, r)
	if !ok {
		return
	}
	photos, err := h.reporter.ListPhotos(r.Context(), actorFrom(r), reportID)
	if err != nil {
		writeError(w, err)
		return
	}
	if photos == nil {
		photos = []service.PhotoView{}
	}
	writeJSON(w, http.StatusOK, photos)
}

func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.reporter.DeletePhoto(r.Context(), actorFrom(r), photoID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadFile serves a stored photo to a holder of a valid signed URL. The
// signature is the authentication; no bearer token is required.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/v1/files/")
	if key == "" {
		writeError(w, domain.NewValidationError("file key is required"))
		return
	}
	expires, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
	if err != nil {
		writeError(w, domain.NewValidationError("invalid expires parameter"))
		return
	}
	sig := r.URL.Query().Get("sig")
	if !h.files.VerifyURL(key, expires, sig) {
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "signature invalid or expired"})
		return
	}
	f, err := h.files.Open(key)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "file not found"})
		return
	}
	defer f.Close()

	// Stored keys carry the extension derived from the upload's content type.
	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".heic":
		contentType = "image/heic"
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, f); err != nil {
		logger.Error("Failed to stream file", "key", key, "error", err)
	}
}
