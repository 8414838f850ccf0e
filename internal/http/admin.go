package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/rideflow/internal/listing"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/validate"
)

func (s *Server) adminRoutes(r *mux.Router) {
	r.HandleFunc("/admin", s.adminStats).Methods(http.MethodGet)
	r.HandleFunc("/admin/users", s.adminUsers).Methods(http.MethodGet)
	r.HandleFunc("/admin/users/{id}", s.adminSetUserStatus).Methods(http.MethodPatch)
	r.HandleFunc("/admin/rides", s.adminRides).Methods(http.MethodGet)
	r.HandleFunc("/admin/rides/{id}/cancel", s.adminCancelRide).Methods(http.MethodPost)
	r.HandleFunc("/admin/profile", s.accountProfile).Methods(http.MethodGet)
	r.HandleFunc("/admin/profile", s.adminUpdateProfile).Methods(http.MethodPut)
	r.HandleFunc("/admin/profile/password", s.adminChangePassword).Methods(http.MethodPost)
}

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	sv, err := s.current().admin.Stats(r.Context())
	if err != nil {
		fail(w, err, "Failed to fetch admin stats")
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

func (s *Server) adminUsers(w http.ResponseWriter, r *http.Request) {
	page, err := s.current().admin.Users(r.Context(), r.URL.Query().Get("q"), queryInt(r, "page", 1))
	if err != nil {
		fail(w, err, "Failed to fetch users")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type userStatusBody struct {
	Status models.UserStatus `json:"status"`
}

func (s *Server) adminSetUserStatus(w http.ResponseWriter, r *http.Request) {
	var b userStatusBody
	if !decode(w, r, &b) {
		return
	}
	if !b.Status.Known() {
		fail(w, &validate.Errors{Fields: []validate.FieldError{{Field: "status", Message: "Unknown status " + string(b.Status)}}}, "")
		return
	}
	if err := s.current().admin.SetUserStatus(r.Context(), mux.Vars(r)["id"], b.Status); err != nil {
		fail(w, err, "Failed to update status")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func oversightFilter(r *http.Request) listing.OversightFilter {
	q := r.URL.Query()
	return listing.OversightFilter{Status: q.Get("status"), Driver: q.Get("driver"), Rider: q.Get("rider")}
}

func (s *Server) adminRides(w http.ResponseWriter, r *http.Request) {
	rows, err := s.current().admin.Rides(r.Context(), oversightFilter(r))
	if err != nil {
		fail(w, err, "Failed to fetch rides")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) adminCancelRide(w http.ResponseWriter, r *http.Request) {
	admin := s.current().admin
	id := mux.Vars(r)["id"]
	rows, err := admin.Rides(r.Context(), listing.OversightFilter{})
	if err != nil {
		fail(w, err, "Failed to cancel ride")
		return
	}
	for _, row := range rows {
		if row.Ride.ID != id {
			continue
		}
		ride, err := admin.CancelRide(r.Context(), row.Ride)
		if err != nil {
			fail(w, err, "Failed to cancel ride")
			return
		}
		writeJSON(w, http.StatusOK, ride)
		return
	}
	writeError(w, http.StatusNotFound, "Ride not found.")
}

func (s *Server) adminUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var b profileBody
	if !decode(w, r, &b) {
		return
	}
	id, err := s.current().admin.UpdateProfile(r.Context(), validate.ProfileForm{Name: b.Name, Email: b.Email, Phone: b.Phone})
	if err != nil {
		fail(w, err, "Server error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) adminChangePassword(w http.ResponseWriter, r *http.Request) {
	var b passwordBody
	if !decode(w, r, &b) {
		return
	}
	if err := s.current().admin.ChangePassword(r.Context(), validate.PasswordForm{Current: b.Current, New: b.New, Confirm: b.Confirm}); err != nil {
		fail(w, err, "Server error occurred.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
