// Package units converts user-supplied lengths, weights and volumes between metric
// and imperial units. Internally the calculator works in millimeters, kilograms and
// cubic millimeters; conversion factors are exact decimal constants.
package units
