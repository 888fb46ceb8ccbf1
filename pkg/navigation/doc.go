// Package navigation builds redirect intents for the pages around a form
// (list, create, show, edit) and for admin-section resources.
package navigation
