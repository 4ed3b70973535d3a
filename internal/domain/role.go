package domain

import "strings"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCashier Role = "CASHIER"
	RoleKitchen Role = "KITCHEN"
	RoleBarista Role = "BARISTA"
)

var Roles = []Role{RoleAdmin, RoleCashier, RoleKitchen, RoleBarista}

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleCashier, RoleKitchen, RoleBarista:
		return r, nil
	}
	return "", NewValidationError("role", "unknown role "+s)
}

type Station string

const (
	StationKitchen Station = "KITCHEN"
	StationBarista Station = "BARISTA"
	StationCashier Station = "CASHIER"
	StationAdmin   Station = "ADMIN"
)

// PrepStations are the stations that receive tickets.
var PrepStations = []Station{StationKitchen, StationBarista}

func ParseStation(s string) (Station, error) {
	switch st := Station(strings.ToUpper(strings.TrimSpace(s))); st {
	case StationKitchen, StationBarista, StationCashier, StationAdmin:
		return st, nil
	}
	return "", NewValidationError("station", "unknown station "+s)
}

// CategoryType maps a preparing station to the category type it handles.
func (s Station) CategoryType() (CategoryType, bool) {
	switch s {
	case StationKitchen:
		return CategoryFood, true
	case StationBarista:
		return CategoryDrink, true
	case StationCashier, StationAdmin:
		return "", false
	}
	return "", false
}

// Stations is the single routing table from role to the stations it may view.
func (r Role) Stations() []Station {
	switch r {
	case RoleAdmin:
		return []Station{StationAdmin, StationCashier, StationKitchen, StationBarista}
	case RoleCashier:
		return []Station{StationCashier}
	case RoleKitchen:
		return []Station{StationKitchen}
	case RoleBarista:
		return []Station{StationBarista}
	}
	return nil
}

func (r Role) CanView(s Station) bool {
	for _, st := range r.Stations() {
		if st == s {
			return true
		}
	}
	return false
}
