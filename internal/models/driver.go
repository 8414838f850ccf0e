package models

const (
	AvailabilityOnline  = "online"
	AvailabilityOffline = "offline"
)

// DriverProfile is the driver's own record. The availability status decides
// whether the driver receives ride offers.
type DriverProfile struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Vehicle            string `json:"vehicle"`
	Phone              string `json:"phone"`
	AvailabilityStatus string `json:"availabilityStatus,omitempty"`
}

func (p DriverProfile) Online() bool { return p.AvailabilityStatus == AvailabilityOnline }

// AvailabilityFor maps the online flag to the API's wire value.
func AvailabilityFor(online bool) string {
	if online {
		return AvailabilityOnline
	}
	return AvailabilityOffline
}

type NearbyDriver struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location Location `json:"location"`
	Rating   float64  `json:"rating"` // 0..5
}

type FareEstimate struct {
	Fare            float64 `json:"fare"`
	DistanceKm      float64 `json:"distanceKm,omitempty"`
	DurationMinutes float64 `json:"durationMinutes,omitempty"`
}

type AdminStats struct {
	TotalRides     int     `json:"totalRides"`
	CompletedRides int     `json:"completedRides"`
	ActiveDrivers  int     `json:"activeDrivers"`
	TotalEarnings  float64 `json:"totalEarnings"`
}
