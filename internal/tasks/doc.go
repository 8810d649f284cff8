// Package tasks orchestrates the tracker's two recurring jobs.
//
// Tracker runs one poll tick: refresh credentials, fetch the currently
// playing item, resolve identities, record the listening event, notify.
// Reporter aggregates listening figures over calendar windows and sends the
// reports that are due. Scheduler drives both on independent timelines: the
// poll job on a fixed short interval, the report job once a day at a fixed
// hour.
//
// Every tick is independent; a failed tick downgrades to the nothing-playing
// notification and never stops the scheduler.
package tasks
