/*
Package weburl implements the URL model used by browsing contexts.

It parses and serializes absolute URLs according to the WHATWG URL
grammar, including relative resolution against a base, host parsing
(domain, IPv4, IPv6, opaque), percent-encoding, and the per-component
setters exposed to scripts.

Types:
  - Record: the parsed URL value (scheme, credentials, host, port, path, query, fragment)
  - URL: a mutable URL object with component setters and a live SearchParams view
  - SearchParams: ordered name/value pairs bound to a URL's query

Parsing is pure and deterministic. A URL and its SearchParams are not safe
for concurrent use; callers serialize access per browsing context.
*/
package weburl
