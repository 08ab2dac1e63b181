package http

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/okandemir/storefront/pkg/errors"
	"github.com/okandemir/storefront/pkg/httputil"
	"github.com/okandemir/storefront/pkg/pagination"

	"github.com/okandemir/storefront/internal/service"
)

// maxUploadSize bounds a multipart create/update request body.
const maxUploadSize = 32 << 20 // 32MB

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.ProductService
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{service: svc}
}

// ToggleResponse carries the updated product plus a human-readable message.
type ToggleResponse struct {
	Product any    `json:"product"`
	Message string `json:"message"`
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	page, err := h.service.List(r.Context(), service.ListProductsInput{
		Search: r.URL.Query().Get("search"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WritePaginated(w, http.StatusOK, page.Items, page.Page, page.Limit, int64(page.Total))
}

// ListPopular handles GET /api/products/popular
func (h *ProductHandler) ListPopular(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListPopular(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParseUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Create handles POST /api/products (admin, multipart)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	images, closeFiles, err := h.parseMultipart(w, r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	defer closeFiles()

	input := service.CreateProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Images:      images,
	}

	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("price must be a number"))
			return
		}
		input.Price = price
	}
	if raw := r.FormValue("isPopular"); raw != "" {
		popular, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("isPopular must be a boolean"))
			return
		}
		input.IsPopular = popular
	}

	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// Update handles PATCH /api/products/{id} (admin, multipart)
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParseUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	images, closeFiles, err := h.parseMultipart(w, r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	defer closeFiles()

	input := service.UpdateProductInput{Images: images}
	if _, ok := r.Form["name"]; ok {
		name := r.FormValue("name")
		input.Name = &name
	}
	if _, ok := r.Form["description"]; ok {
		description := r.FormValue("description")
		input.Description = &description
	}
	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("price must be a number"))
			return
		}
		input.Price = &price
	}
	if raw := r.FormValue("isPopular"); raw != "" {
		popular, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("isPopular must be a boolean"))
			return
		}
		input.IsPopular = &popular
	}
	if raw := r.FormValue("isActive"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("isActive must be a boolean"))
			return
		}
		input.IsActive = &active
	}

	product, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// TogglePopular handles PATCH /api/products/{id}/toggle-popular (admin)
func (h *ProductHandler) TogglePopular(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParseUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	product, message, err := h.service.TogglePopular(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: &ToggleResponse{Product: product, Message: message},
	})
}

// Sell handles POST /api/products/{id}/sell?qty=
func (h *ProductHandler) Sell(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParseUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	// Non-numeric or missing qty falls back to a single unit.
	qty, err := strconv.Atoi(r.URL.Query().Get("qty"))
	if err != nil {
		qty = 1
	}

	product, err := h.service.AddSale(r.Context(), id, qty)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Delete handles DELETE /api/products/{id} (admin)
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParseUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"message": "product deleted"},
	})
}

// RemoveImage handles DELETE /api/products/{id}/images/{imageIndex} (admin)
func (h *ProductHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id, index, err := imageParams(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	product, err := h.service.RemoveImage(r.Context(), id, index)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// SetPrimaryImage handles PATCH /api/products/{id}/images/{imageIndex}/set-primary (admin)
func (h *ProductHandler) SetPrimaryImage(w http.ResponseWriter, r *http.Request) {
	id, index, err := imageParams(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	product, err := h.service.SetPrimaryImage(r.Context(), id, index)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// parseMultipart bounds and parses the request body and collects the image
// file parts. The returned closer must be deferred so the part readers stay
// open while the service streams them to blob storage.
func (h *ProductHandler) parseMultipart(w http.ResponseWriter, r *http.Request) ([]service.ImageUpload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, nil, apperrors.InvalidInput("failed to parse multipart form: " + err.Error())
	}

	var (
		uploads []service.ImageUpload
		opened  []multipart.File
	)
	closeFiles := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				closeFiles()
				return nil, nil, apperrors.InvalidInput(fmt.Sprintf("failed to read image %q: %v", header.Filename, err))
			}
			opened = append(opened, file)

			contentType := header.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			uploads = append(uploads, service.ImageUpload{
				Filename:    header.Filename,
				ContentType: contentType,
				Size:        header.Size,
				Data:        file,
			})
		}
	}

	return uploads, closeFiles, nil
}

func imageParams(r *http.Request) (string, int, error) {
	id, err := httputil.ParseUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		return "", 0, err
	}

	index, err := strconv.Atoi(chi.URLParam(r, "imageIndex"))
	if err != nil {
		return "", 0, apperrors.InvalidInput("imageIndex must be an integer")
	}

	return id, index, nil
}
