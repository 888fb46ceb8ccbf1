package formstate

// Version is the library release, overridden at build time with
// -ldflags "-X github.com/aretw0/formstate.Version=...".
var Version = "0.1.0-dev"
