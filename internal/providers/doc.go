// Package providers holds the tool families served through the registry:
// browser (windows, session history, location, scripting) and urltools
// (parsing, resolution, query strings). Each implements service.Provider.
package providers
