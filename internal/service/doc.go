// Package service routes tool calls to providers.
//
// A tool id such as "browser.navigate" or "url.parse" is dispatched to the
// provider registered under the part before the first dot, and only if that
// provider declared the tool in its Definition.
//
// Discover ranks services for a free-text intent by whole-word matches.
// Id or name hits weigh most, then description words, capabilities and tool
// names. A category match adds a small bonus.
//
//	registry := service.NewRegistry()
//	if err := registry.Register(browserProvider); err != nil { ... }
//	services := registry.Discover("go back in history", 5)
//	result, err := registry.Execute(ctx, "browser.back", params, appCtx)
package service
