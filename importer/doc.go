// Package importer builds Street values from outside sources.
//
// Two sources are supported:
//   - A Nominatim search for a street name. Only the centre of the best match
//     is known, so a short diagonal segment is synthesized around it.
//   - An OSM XML extract, from which drivable highway ways are read with their
//     full geometry and their lanes/maxspeed tags.
//
// Imported streets are inputs to the simulation; the simulation itself never
// consults the geocoder.
package importer
