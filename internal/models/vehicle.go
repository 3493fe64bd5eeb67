package models

import "strings"

// VehicleEnergyType selects which amenity filters a station search uses
type VehicleEnergyType string

const (
	VehicleElectric    VehicleEnergyType = "electric"
	VehiclePetrol      VehicleEnergyType = "petrol"
	VehicleHybrid      VehicleEnergyType = "hybrid"
	VehicleGas         VehicleEnergyType = "gas"
	VehicleUnspecified VehicleEnergyType = "unspecified"
)

// ParseVehicleEnergyType maps a vehicle-profile value to an energy type.
// Unknown or empty values search broadly.
func ParseVehicleEnergyType(s string) VehicleEnergyType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ev", "electric":
		return VehicleElectric
	case "petrol":
		return VehiclePetrol
	case "hybrid":
		return VehicleHybrid
	case "cnc", "cng", "gas":
		return VehicleGas
	default:
		return VehicleUnspecified
	}
}
