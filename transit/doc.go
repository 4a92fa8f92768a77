// Package transit adds buses and other transit vehicles to street demand.
//
// A GTFS-Realtime VehiclePositions feed gives one snapshot of where transit
// vehicles are. Each vehicle is snapped to the nearest street within a
// tolerance, and the vehicles on a street are turned into an hourly flow with
// the fundamental relation q = k·v. The flow is weighted by a passenger car
// equivalent and added to the street's demand before simulation.
package transit
