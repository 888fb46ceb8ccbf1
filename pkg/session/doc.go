/*
Package session implements form session management and persistence orchestration.

A session is a persisted form snapshot. The Manager serializes access per
session ID (local ref-counted mutexes plus an optional distributed lock) and
offers read-modify-write through Apply, so concurrent requests against the same
form never lose updates.
*/
package session
