// Package calculator estimates shipment volume, pallet stacking and container fit
// for uniform cartons. All inputs are in millimeters and kilograms; see package
// units for conversion. Every function is pure and safe for concurrent use.
package calculator
