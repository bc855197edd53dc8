/*
Package fetch implements the navigation Loader: it fetches the target of a
full navigation and turns the response into a document.

Supported schemes:
  - http, https: resty over a go-retryablehttp transport, rate limited with
    x/time/rate and guarded by a circuit breaker per origin
  - about: about:blank only
  - data: inline bodies, base64 or percent-encoded
  - file: local files and directory listings, when enabled

Responses are decompressed, sniffed, converted to UTF-8 and scanned for the
title and <base href>. Cache-Control: no-store is reported to the
controller so history traversal knows not to restore the entry in place.
*/
package fetch
