package donation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alovak/pix-donations/donation/models"
	"github.com/go-chi/chi/v5"
)

// API is a HTTP API for the donation service
type API struct {
	donation *Service
}

func NewAPI(donation *Service) *API {
	return &API{
		donation: donation,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/pages", func(r chi.Router) {
		r.Post("/", a.createPage)
		r.Get("/", a.listPages)
		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", a.getPage)
			// "Generate new code": a fresh payload and countdown window.
			r.Post("/charges", a.issueCharge)
			r.Get("/qr.png", a.qrImage)
		})
	})
	r.Post("/payloads/validate", a.validatePayload)
}

func (a *API) createPage(w http.ResponseWriter, r *http.Request) {
	create := models.CreatePage{}
	err := json.NewDecoder(r.Body).Decode(&create)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := a.donation.CreatePage(r.Context(), create)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidPage):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrConflict):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, page)
}

func (a *API) listPages(w http.ResponseWriter, r *http.Request) {
	pages, err := a.donation.ListPages(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pages)
}

func (a *API) getPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := a.donation.GetPage(r.Context(), slug)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (a *API) issueCharge(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	charge, err := a.donation.IssueCharge(r.Context(), slug)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, charge)
}

func (a *API) qrImage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	size := 0
	if s := r.URL.Query().Get("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "size must be an integer", http.StatusBadRequest)
			return
		}
		size = v
	}

	png, err := a.donation.RenderQR(r.Context(), slug, size)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (a *API) validatePayload(w http.ResponseWriter, r *http.Request) {
	var req models.ValidatePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, a.donation.ValidatePayload(req.Payload))
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
