// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package validation validates API and event payloads with
// go-playground/validator.
//
// A single validator instance caches struct metadata for the life of the
// process. Field names in errors use the JSON tag so messages match the wire
// format clients send, and decimal.Decimal values validate as numbers.
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
