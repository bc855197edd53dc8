/*
Package sandbox runs scripts against a browsing context.

Each Runtime is a goja VM with Node-style globals removed and timers
disabled. When executed against a navigation.Window the script sees:

  - URL and URLSearchParams, backed by the weburl package
  - location and history, backed by the window's controller
  - document with title, URL and querySelector over the current markup
  - addEventListener / on<type> handlers for hashchange, popstate and load
  - structuredClone with the same rules as history state

Navigation calls made by the script complete before they return. Events
they raise are queued and delivered to script listeners after the script
body finishes, in commit order, the way a task queue would run them.
Listeners may navigate again; delivery stops after Config.MaxEventRounds.

A Pool hands out reset runtimes so concurrent requests never share a VM.
*/
package sandbox
