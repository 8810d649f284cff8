// Package models contains the plain value types shared across the tracker:
// persisted entities (Track, Artist, Playlist, Listening), the playback
// snapshot DTOs returned by the music service, and the derived Report
// aggregate.
//
// Entities carry their identity as an opaque string ID assigned by the
// repositories on first resolution. Values are immutable once created, with
// one exception: a playlist's display name follows the latest observed value.
package models
