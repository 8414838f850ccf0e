package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/validate"
)

func (s *Server) driverRoutes(r *mux.Router) {
	r.HandleFunc("/driver", s.driverAvailability).Methods(http.MethodGet)
	r.HandleFunc("/driver/availability", s.driverAvailability).Methods(http.MethodGet)
	r.HandleFunc("/driver/availability", s.setAvailability).Methods(http.MethodPost)
	r.HandleFunc("/driver/availability/requests/{id}/accept", s.acceptRide).Methods(http.MethodPost)
	r.HandleFunc("/driver/active-ride", s.activeRide).Methods(http.MethodGet)
	r.HandleFunc("/driver/active-ride", s.advanceRide).Methods(http.MethodPost)
	r.HandleFunc("/driver/earnings", s.earnings).Methods(http.MethodGet)
	r.HandleFunc("/driver/profile", s.driverProfile).Methods(http.MethodGet)
	r.HandleFunc("/driver/profile", s.driverUpdateProfile).Methods(http.MethodPut)
	r.HandleFunc("/driver/profile/password", s.driverChangePassword).Methods(http.MethodPost)
}

func (s *Server) driverAvailability(w http.ResponseWriter, r *http.Request) {
	av, err := s.current().driver.Availability(r.Context())
	if err != nil {
		fail(w, err, "Failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, av)
}

type availabilityBody struct {
	Online bool `json:"online"`
}

func (s *Server) setAvailability(w http.ResponseWriter, r *http.Request) {
	var b availabilityBody
	if !decode(w, r, &b) {
		return
	}
	online, err := s.current().driver.SetAvailability(r.Context(), b.Online)
	if err != nil {
		fail(w, err, "Failed to update availability")
		return
	}
	writeJSON(w, http.StatusOK, availabilityBody{Online: online})
}

func (s *Server) acceptRide(w http.ResponseWriter, r *http.Request) {
	driver := s.current().driver
	id := mux.Vars(r)["id"]
	reqs, err := driver.Requests(r.Context())
	if err != nil {
		fail(w, err, "Failed to accept ride")
		return
	}
	for _, row := range reqs {
		if row.Ride.ID != id {
			continue
		}
		ride, err := driver.Accept(r.Context(), row.Ride)
		if err != nil {
			fail(w, err, "Failed to accept ride")
			return
		}
		writeJSON(w, http.StatusOK, ride)
		return
	}
	writeError(w, http.StatusNotFound, "Ride request is no longer available.")
}

func (s *Server) activeRide(w http.ResponseWriter, r *http.Request) {
	av, err := s.current().driver.ActiveRide(r.Context())
	if err != nil {
		fail(w, err, "Failed to fetch active ride")
		return
	}
	writeJSON(w, http.StatusOK, av)
}

type advanceBody struct {
	Target models.RideStatus `json:"target"`
}

func (s *Server) advanceRide(w http.ResponseWriter, r *http.Request) {
	var b advanceBody
	if !decode(w, r, &b) {
		return
	}
	driver := s.current().driver
	if !driver.ActiveState().Loaded {
		if _, err := driver.ActiveRide(r.Context()); err != nil {
			fail(w, err, "Failed to fetch active ride")
			return
		}
	}
	ride, err := driver.Advance(r.Context(), b.Target)
	if err != nil {
		fail(w, err, "Failed to update ride")
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

func (s *Server) earnings(w http.ResponseWriter, r *http.Request) {
	ev, err := s.current().driver.Earnings(r.Context(), r.URL.Query().Get("q"), queryInt(r, "page", 1))
	if err != nil {
		fail(w, err, "Failed to fetch earnings")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) driverProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.current().driver.Profile(r.Context())
	if err != nil {
		fail(w, err, "Failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) driverUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p models.DriverProfile
	if !decode(w, r, &p) {
		return
	}
	driver := s.current().driver
	if err := driver.UpdateProfile(r.Context(), p); err != nil {
		fail(w, err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) driverChangePassword(w http.ResponseWriter, r *http.Request) {
	var b passwordBody
	if !decode(w, r, &b) {
		return
	}
	if b.Confirm == "" {
		b.Confirm = b.New
	}
	if err := s.current().driver.ChangePassword(r.Context(), validate.NewPasswordForm{New: b.New, Confirm: b.Confirm}); err != nil {
		fail(w, err, "Failed to update password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
