package dto

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ecutune/ecutune/internal/domain/model"
)

// FileResponse describes a stored artifact.
type FileResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size,omitempty"`
}

// PaymentResponse describes the payment state of an order.
type PaymentResponse struct {
	Provider string `json:"provider,omitempty"`
	Status   string `json:"status"`
}

// OrderResponse is the customer-facing order representation.
type OrderResponse struct {
	ID           string            `json:"id"`
	Owner        string            `json:"owner,omitempty"`
	Status       string            `json:"status"`
	Vehicle      map[string]string `json:"vehicle,omitempty"`
	Options      []string          `json:"options,omitempty"`
	Comments     string            `json:"comments,omitempty"`
	OriginalFile *FileResponse     `json:"original_file,omitempty"`
	ResultFile   *FileResponse     `json:"result_file,omitempty"`
	Payment      PaymentResponse   `json:"payment"`
	Rating       int               `json:"rating,omitempty"`
	Feedback     string            `json:"feedback,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// RatingRequest carries a customer's rating and optional feedback.
type RatingRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// FromOrder converts a domain order. With owner=false the owner field is
// omitted, which is the shape customers see of their own orders.
func FromOrder(order model.Order, withOwner bool) OrderResponse {
	resp := OrderResponse{
		ID:        order.ID,
		Status:    string(order.Status),
		Vehicle:   order.Vehicle,
		Options:   order.Options,
		Comments:  order.Comments,
		Payment:   PaymentResponse{Provider: order.Payment.Provider, Status: string(order.Payment.Status)},
		Rating:    order.Rating,
		Feedback:  order.Feedback,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if withOwner {
		resp.Owner = order.Owner
	}
	if !order.OriginalFile.Empty() {
		resp.OriginalFile = &FileResponse{Name: order.OriginalFile.Name, URL: order.OriginalFile.URL, Size: order.OriginalFile.Size}
	}
	if !order.ResultFile.Empty() {
		resp.ResultFile = &FileResponse{Name: order.ResultFile.Name, URL: order.ResultFile.URL, Size: order.ResultFile.Size}
	}
	return resp
}

// vehicleFields are the form fields folded into the vehicle description.
var vehicleFields = []string{"brand", "model", "generation", "year", "engine", "ecu", "gearbox", "vin"}

// VehicleFromForm collects the known vehicle fields from a submitted form.
func VehicleFromForm(values url.Values) map[string]string {
	vehicle := make(map[string]string)
	for _, field := range vehicleFields {
		if v := strings.TrimSpace(values.Get(field)); v != "" {
			vehicle[field] = v
		}
	}
	return vehicle
}

// OptionsFromForm normalizes the requested tuning options. Options arrive
// either as repeated "options" values or as individual checkbox fields named
// "option_<name>" with a truthy value. Duplicates collapse; order is stable.
func OptionsFromForm(values url.Values) []string {
	seen := make(map[string]struct{})
	var options []string

	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		options = append(options, name)
	}

	for _, v := range values["options"] {
		for _, part := range strings.Split(v, ",") {
			add(part)
		}
	}

	var checkboxes []string
	for key, vals := range values {
		name, ok := strings.CutPrefix(key, "option_")
		if !ok || len(vals) == 0 {
			continue
		}
		if truthy(vals[len(vals)-1]) {
			checkboxes = append(checkboxes, name)
		}
	}
	sort.Strings(checkboxes)
	for _, name := range checkboxes {
		add(name)
	}

	return options
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
