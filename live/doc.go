// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package live pushes session changes to connected screens over websockets.
//
// Each session has its own set of watchers. Handlers call Broadcast after a
// change has been committed:
//
//	session_status  the session and its participants after a transition
//	vote_cast       total votes so far (never per-participant counts)
//
// A vote_cast event deliberately carries only a total, so the audience can
// see momentum without learning who is in danger before results.
package live
