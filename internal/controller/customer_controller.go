package controller

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/service"
)

type CustomerService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]model.CustomerWithPending, map[string]int, error)
	Search(ctx context.Context, query string) ([]model.Customer, error)
	Create(ctx context.Context, in service.CustomerInput) (*model.Customer, error)
	Update(ctx context.Context, id uuid.UUID, in service.CustomerInput) (*model.Customer, error)
	Get(ctx context.Context, id uuid.UUID, month string) (*service.CustomerDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PickupAll(ctx context.Context, id uuid.UUID, method string) (int, error)
}

var _ CustomerService = (*service.CustomerService)(nil)

type CustomerController struct {
	CustomerService CustomerService
	Log             logger.Logger
}

func (c *CustomerController) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	customers, pagination, err := c.CustomerService.List(r.Context(), r.URL.Query().Get("search"), page, pageSize)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       customers,
		"pagination": pagination,
	})
}

func (c *CustomerController) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := c.CustomerService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": customers})
}

func (c *CustomerController) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var body service.CustomerInput
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, c.Log, err)
		return
	}

	customer, err := c.CustomerService.Create(r.Context(), body)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (c *CustomerController) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}

	detail, err := c.CustomerService.Get(r.Context(), id, r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (c *CustomerController) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	var body service.CustomerInput
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, c.Log, err)
		return
	}

	customer, err := c.CustomerService.Update(r.Context(), id, body)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (c *CustomerController) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	if err := c.CustomerService.Delete(r.Context(), id); err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PickupAll marks every pending mail of the customer as picked up.
func (c *CustomerController) PickupAll(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	var body struct {
		Method string `json:"method"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, c.Log, err)
			return
		}
	}

	n, err := c.CustomerService.PickupAll(r.Context(), id, body.Method)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"picked_up": n})
}
