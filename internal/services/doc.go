// Package services holds the implementations of the tracker's external
// collaborators.
//
// SpotifyService talks to the Spotify Web API: token refresh through oauth2,
// currently-playing snapshots, track credits, and the user's playlist list.
// DiscordService posts now-playing and report messages to Discord webhooks.
//
// The tasks package consumes both through the narrow Player and Notifier
// interfaces so tests can substitute fakes.
package services
