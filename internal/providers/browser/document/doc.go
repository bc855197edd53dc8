// Package document turns raw response bodies into the pieces navigation
// needs: decoded UTF-8 markup, the media type, the document title, the
// <base href> and any meta refresh.
//
// Decoding handles gzip, deflate and zstd content codings, sniffs the media
// type when the server omits it and detects the character encoding from
// the Content-Type parameter, a BOM, a <meta charset> prescan or, failing
// all of those, statistical detection.
package document
