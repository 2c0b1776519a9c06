// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package models defines request, response, and domain types for the API,
// along with the status constants shared by every layer.
package models
