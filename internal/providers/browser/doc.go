/*
Package browser provides headless browsing contexts as a registry service.

# Overview

Each window is a navigation.Window: a controller owning the active document,
a location object and a session history shared with its nested windows.
Documents are loaded by the fetch package over http(s), data:, about: and
(when enabled) file: URLs.

# Architecture

	weburl      URL records, parser, serializer and search params
	history     session history entries and cursor
	clone       structured serialization of history state
	navigation  controller, location, history API, events, windows
	document    decoding and HTML extraction
	fetch       the loader behind full navigations
	sandbox     goja runtimes exposing URL, location, history and document

The WindowManager tracks every open window, reaps idle ones and keeps a
window of navigation latencies for Stats.

# Tools

  - browser.open, browser.close, browser.windows
  - browser.navigate, browser.replace, browser.reload
  - browser.back, browser.forward, browser.go
  - browser.push_state, browser.replace_state
  - browser.location, browser.set_location, browser.history
  - browser.execute_script, browser.query

# Usage Example

	result, _ := registry.Execute(ctx, "browser.navigate", map[string]any{
		"window_id": winID,
		"url":       "/search",
		"params":    map[string]any{"q": "go"},
	}, nil)

	url := result.Data["url"]
*/
package browser
