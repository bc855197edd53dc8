// Command urlctl parses and resolves URLs with the navigator's URL parser.
//
// Usage:
//
//	urlctl parse "https://user@example.com:8080/a/../b?x=1#top"
//	urlctl parse --base https://example.com/dir/ "../up?q"
//	urlctl resolve http://a/b/c/d;p?q ../g
//	urlctl params --sort "z=1&a=b+c"
//	urlctl can-parse "http://[::1"
package main
