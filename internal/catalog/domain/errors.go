package catalog

import "errors"

var (
	// ErrEmptyCountryName is returned when a country has no display name.
	ErrEmptyCountryName = errors.New("catalog: empty country name")
	// ErrEmptyCity is returned when a location has no city.
	ErrEmptyCity = errors.New("catalog: empty city")
	// ErrMissingCountryRef is returned when a location lacks a resolved country.
	ErrMissingCountryRef = errors.New("catalog: location missing country reference")
	// ErrEmptyBotanistKey is returned when a botanist lacks both name and email.
	ErrEmptyBotanistKey = errors.New("catalog: empty botanist natural key")
	// ErrInvalidPlantID is returned when a plant carries a non-positive external id.
	ErrInvalidPlantID = errors.New("catalog: invalid plant id")
	// ErrMissingLocationRef is returned when a plant lacks a resolved location.
	ErrMissingLocationRef = errors.New("catalog: plant missing location reference")
	// ErrCountryNotFound is returned when a country lookup misses.
	ErrCountryNotFound = errors.New("catalog: country not found")
	// ErrLocationNotFound is returned when a location lookup misses.
	ErrLocationNotFound = errors.New("catalog: location not found")
	// ErrBotanistNotFound is returned when a botanist lookup misses.
	ErrBotanistNotFound = errors.New("catalog: botanist not found")
	// ErrPlantNotFound is returned when a plant lookup misses.
	ErrPlantNotFound = errors.New("catalog: plant not found")
)
