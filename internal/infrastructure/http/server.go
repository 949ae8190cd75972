package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"portfolio-service/internal/application"
	"portfolio-service/internal/domain"
)

type Server struct {
	svc *application.PortfolioService
}

func NewServer(svc *application.PortfolioService) *Server { return &Server{svc: svc} }

type quotePayload struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"current_price"`
	PreviousClose float64 `json:"previous_close"`
	Currency      string  `json:"currency,omitempty"`
	Exchange      string  `json:"exchange,omitempty"`
	DisplayName   string  `json:"display_name,omitempty"`
}

type holdingPayload struct {
	Identifier       string  `json:"identifier"`
	Class            string  `json:"class"`
	DisplayName      string  `json:"display_name,omitempty"`
	Quantity         float64 `json:"quantity"`
	AverageCost      float64 `json:"average_cost"`
	InvestmentAmount float64 `json:"investment_amount"`
	CurrentPrice     float64 `json:"current_price"`
	PreviousPrice    float64 `json:"previous_price"`
	CurrentValue     float64 `json:"current_value"`
	PnL              float64 `json:"pnl"`
	PnLPercentage    float64 `json:"pnl_percentage"`
}

// GetQuotes resolves ?symbols=A,B,C. Unresolvable symbols are absent from
// the map; the response is 200 even when nothing resolved.
func (s *Server) GetQuotes(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("symbols")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "symbols is required")
		return
	}
	symbols := strings.Split(raw, ",")
	quotes, err := s.svc.Quotes(r.Context(), symbols)
	if err != nil {
		if errors.Is(err, application.ErrBadRequest) {
			writeError(w, http.StatusBadRequest, "invalid symbols")
			return
		}
		internalError(w)
		return
	}
	out := make(map[string]quotePayload, len(quotes))
	for sym, q := range quotes {
		out[sym] = quotePayload{
			Symbol:        q.Symbol,
			CurrentPrice:  q.Price,
			PreviousClose: q.PrevClose,
			Currency:      q.Currency,
			Exchange:      q.Exchange,
			DisplayName:   q.DisplayName,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"quotes": out})
}

func (s *Server) GetHoldings(w http.ResponseWriter, r *http.Request) {
	class := r.URL.Query().Get("class")
	if class == "" {
		class = string(domain.ClassStock)
	}
	if !domain.ValidClass(class) {
		writeError(w, http.StatusBadRequest, "unsupported class")
		return
	}
	hs, err := s.svc.Holdings(r.Context(), domain.AssetClass(class))
	if err != nil {
		internalError(w)
		return
	}
	out := make([]holdingPayload, 0, len(hs))
	for _, h := range hs {
		out = append(out, holdingPayload{
			Identifier:       h.Identifier,
			Class:            string(h.Class),
			DisplayName:      h.DisplayName,
			Quantity:         h.Quantity,
			AverageCost:      h.AverageCost,
			InvestmentAmount: h.InvestmentAmount,
			CurrentPrice:     h.CurrentPrice,
			PreviousPrice:    h.PreviousPrice,
			CurrentValue:     h.CurrentValue,
			PnL:              h.PnL,
			PnLPercentage:    h.PnLPercent,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"holdings": out})
}

func (s *Server) RequestRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Class string `json:"class"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Class == "" {
		writeError(w, http.StatusBadRequest, "class is required")
		return
	}
	if !domain.ValidClass(body.Class) {
		writeError(w, http.StatusBadRequest, "unsupported class")
		return
	}
	var idem *string
	if k := r.Header.Get("X-Idempotency-Key"); k != "" {
		idem = &k
	}
	id, err := s.svc.RequestRefresh(r.Context(), domain.AssetClass(body.Class), idem)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrConflict):
			writeError(w, http.StatusConflict, "duplicate refresh request")
		case errors.Is(err, domain.ErrUnsupportedClass):
			writeError(w, http.StatusBadRequest, "unsupported class")
		default:
			internalError(w)
		}
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"refresh_id": id})
}

func (s *Server) GetRefresh(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := s.svc.GetRefresh(r.Context(), id)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		internalError(w)
		return
	}
	resp := map[string]any{
		"refresh_id": job.ID,
		"class":      string(job.Class),
		"status":     string(job.Status),
		"updated_at": job.UpdatedAt.Format(time.RFC3339),
	}
	if job.Error != nil {
		resp["error"] = *job.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
