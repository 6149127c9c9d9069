// Package domain holds the core entities and error taxonomy of the customizer
// action engine. Subpackages model each mutation target: action (the persisted
// unit of work and its lifecycle), merchant (per-product configuration and
// print-area layers), design (the ordered side/page sequence), and asset (the
// shop asset library with fuzzy name resolution).
//
// Domain packages depend on nothing outside the standard library; all I/O goes
// through the port interfaces in internal/ports.
package domain
