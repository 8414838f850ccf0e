package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/example/rideflow/internal/fare"
	"github.com/example/rideflow/internal/validate"
)

func (s *Server) riderRoutes(r *mux.Router) {
	r.HandleFunc("/rider", s.riderDashboard).Methods(http.MethodGet)
	r.HandleFunc("/rider/add-ride", s.rideOptions).Methods(http.MethodGet)
	r.HandleFunc("/rider/add-ride", s.requestRide).Methods(http.MethodPost)
	r.HandleFunc("/rider/add-ride/quote", s.quoteRide).Methods(http.MethodPost)
	r.HandleFunc("/rider/add-ride/nearby", s.nearbyDrivers).Methods(http.MethodGet)
	r.HandleFunc("/rider/ride-history", s.rideHistory).Methods(http.MethodGet)
	r.HandleFunc("/rider/ride-details/{id}", s.rideDetails).Methods(http.MethodGet)
	r.HandleFunc("/rider/ride-details/{id}/cancel", s.cancelOwnRide).Methods(http.MethodPost)
	r.HandleFunc("/rider/profile", s.accountProfile).Methods(http.MethodGet)
	r.HandleFunc("/rider/profile", s.riderUpdateProfile).Methods(http.MethodPut)
	r.HandleFunc("/rider/profile/password", s.riderChangePassword).Methods(http.MethodPost)
}

type pointBody struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Lat     string `json:"lat"`
	Lng     string `json:"lng"`
}

func (p pointBody) form() validate.PointForm {
	return validate.PointForm{Name: p.Name, Address: p.Address, Lat: p.Lat, Lng: p.Lng}
}

type rideBody struct {
	Pickup      pointBody `json:"pickup"`
	Destination pointBody `json:"destination"`
	Option      string    `json:"option,omitempty"`
	Promo       string    `json:"promo,omitempty"`
}

func (b rideBody) form() validate.RideForm {
	return validate.RideForm{Pickup: b.Pickup.form(), Destination: b.Destination.form()}
}

func (s *Server) riderDashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := s.current().rider.Summary(r.Context())
	if err != nil {
		fail(w, err, "Failed to fetch ride history")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) rideOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fare.Catalog)
}

func (s *Server) requestRide(w http.ResponseWriter, r *http.Request) {
	var b rideBody
	if !decode(w, r, &b) {
		return
	}
	ride, err := s.current().rider.RequestRide(r.Context(), b.form())
	if err != nil {
		fail(w, err, "Ride request failed. Please try again.")
		return
	}
	writeJSON(w, http.StatusCreated, ride)
}

func (s *Server) quoteRide(w http.ResponseWriter, r *http.Request) {
	var b rideBody
	if !decode(w, r, &b) {
		return
	}
	if b.Option == "" {
		b.Option = strconv.Itoa(fare.Catalog[0].ID)
	}
	q, err := s.current().rider.Quote(r.Context(), b.form(), b.Option, b.Promo)
	if err != nil {
		fail(w, err, "Failed to estimate fare")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) nearbyDrivers(w http.ResponseWriter, r *http.Request) {
	lat, okLat := queryFloat(r, "lat")
	lng, okLng := queryFloat(r, "lng")
	if !okLat || !okLng {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}
	drivers, err := s.current().rider.NearbyDrivers(r.Context(), lat, lng, queryInt(r, "limit", 5))
	if err != nil {
		fail(w, err, "Failed to fetch nearby drivers")
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

// rideHistory answers with the view even when loading failed; the view
// carries the error text the screen shows in place of the list.
func (s *Server) rideHistory(w http.ResponseWriter, r *http.Request) {
	hv, err := s.current().rider.History(r.Context(), r.URL.Query().Get("status"), queryInt(r, "page", 1))
	if err != nil && hv.Error == "" {
		fail(w, err, "Failed to fetch ride history")
		return
	}
	writeJSON(w, http.StatusOK, hv)
}

func (s *Server) rideDetails(w http.ResponseWriter, r *http.Request) {
	dv, err := s.current().rider.Details(r.Context(), mux.Vars(r)["id"])
	if err != nil && dv.Error == "" {
		fail(w, err, "Failed to fetch ride")
		return
	}
	writeJSON(w, http.StatusOK, dv)
}

func (s *Server) cancelOwnRide(w http.ResponseWriter, r *http.Request) {
	rider := s.current().rider
	dv, err := rider.Details(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, err, "Failed to cancel ride")
		return
	}
	ride, err := rider.Cancel(r.Context(), dv.Ride)
	if err != nil {
		fail(w, err, "Failed to cancel ride")
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

func (s *Server) accountProfile(w http.ResponseWriter, r *http.Request) {
	id, err := s.session.Identity()
	if err != nil {
		fail(w, err, "Failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, id)
}

type profileBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type passwordBody struct {
	Current string `json:"currentPassword"`
	New     string `json:"newPassword"`
	Confirm string `json:"confirmPassword"`
}

func (s *Server) riderUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var b profileBody
	if !decode(w, r, &b) {
		return
	}
	id, err := s.current().rider.UpdateProfile(r.Context(), validate.ProfileForm{Name: b.Name, Email: b.Email, Phone: b.Phone})
	if err != nil {
		fail(w, err, "Server error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) riderChangePassword(w http.ResponseWriter, r *http.Request) {
	var b passwordBody
	if !decode(w, r, &b) {
		return
	}
	if err := s.current().rider.ChangePassword(r.Context(), validate.PasswordForm{Current: b.Current, New: b.New, Confirm: b.Confirm}); err != nil {
		fail(w, err, "Server error occurred.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
