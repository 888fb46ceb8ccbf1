/*
Package ports defines the driven ports (interfaces) of formstate's host layer.

These interfaces decouple sessions and navigation from concrete backends, so
the same form can be kept in memory, on disk, in Redis or in SQLite.

# Key Interfaces

  - StateStore: persists and loads form sessions.
  - DistributedLocker: serializes session access across replicas.
  - RedirectDispatcher: receives navigation intents.
*/
package ports
