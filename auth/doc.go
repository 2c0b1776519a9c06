// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the host secret check and small random helpers.

# Host Dashboard

The host dashboard and every mutating admin endpoint are gated by a single
shared secret carried in the admin_token cookie:

	err := auth.ValidateAdminToken(cookie.Value, cfg.AdminToken)

Comparison is constant time. This is a convenience gate for one host, not
an access-control system.

# Device IDs

Voters are identified only by a UUID their browser generates and keeps:

	err := auth.ValidateDeviceID(deviceID)

Anyone can mint a new one, so the per-device vote cap is best effort.

# Slug Suffixes

Session slugs default to episode-<week>. When that is taken a random
4-character base36 suffix is appended:

	suffix, err := auth.GenerateSlugSuffix() // e.g. "k3x9"
*/
package auth
